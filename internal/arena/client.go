package arena

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RemoteResponse carries the status code and raw body of a successful
// (2xx) upstream call.
type RemoteResponse struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the response body into out.
func (r *RemoteResponse) Decode(out any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, out)
}

// Client makes single-attempt HTTP calls to the Vorld Arena Arcade API and
// the Vorld auth API. It never retries; retry policy belongs to the caller.
type Client struct {
	http        *http.Client
	gameBaseURL string
	authBaseURL string
	appID       string
	arenaGameID string

	mu    sync.RWMutex
	token string
}

func NewClient(gameBaseURL, authBaseURL, appID, arenaGameID, token string) *Client {
	return &Client{
		http:        &http.Client{Timeout: 30 * time.Second},
		gameBaseURL: gameBaseURL,
		authBaseURL: authBaseURL,
		appID:       appID,
		arenaGameID: arenaGameID,
		token:       token,
	}
}

// SetToken replaces the bearer token used for game API calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the currently configured bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// joinURL joins a base URL and path with exactly one slash, regardless of
// trailing/leading slashes on either side.
func joinURL(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

// gameHeaders builds the header set required by the Arena Arcade API. Fails
// before any network I/O if a required credential is absent.
func (c *Client) gameHeaders() (http.Header, error) {
	token := c.Token()
	if token == "" {
		return nil, &ConfigurationError{Field: "USER_TOKEN"}
	}
	if c.arenaGameID == "" {
		return nil, &ConfigurationError{Field: "ARENA_GAME_ID"}
	}
	if c.appID == "" {
		return nil, &ConfigurationError{Field: "VORLD_APP_ID"}
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	h.Set("X-Arena-Arcade-Game-ID", c.arenaGameID)
	h.Set("X-Vorld-App-ID", c.appID)
	h.Set("Content-Type", "application/json")
	return h, nil
}

func (c *Client) authHeaders() (http.Header, error) {
	if c.appID == "" {
		return nil, &ConfigurationError{Field: "VORLD_APP_ID"}
	}
	h := http.Header{}
	h.Set("X-Vorld-App-ID", c.appID)
	h.Set("Content-Type", "application/json")
	return h, nil
}

// Call executes an authorized request against the game API.
func (c *Client) Call(ctx context.Context, method, path string, body any) (*RemoteResponse, error) {
	if c.gameBaseURL == "" {
		return nil, &ConfigurationError{Field: "GAME_API_URL"}
	}
	headers, err := c.gameHeaders()
	if err != nil {
		return nil, err
	}
	return c.do(ctx, method, joinURL(c.gameBaseURL, path), headers, body)
}

// CallAuth executes a request against the auth API. Only the app ID header
// is attached; no bearer token is required.
func (c *Client) CallAuth(ctx context.Context, method, path string, body any) (*RemoteResponse, error) {
	if c.authBaseURL == "" {
		return nil, &ConfigurationError{Field: "AUTH_API_URL"}
	}
	headers, err := c.authHeaders()
	if err != nil {
		return nil, err
	}
	return c.do(ctx, method, joinURL(c.authBaseURL, path), headers, body)
}

func (c *Client) do(ctx context.Context, method, url string, headers http.Header, body any) (*RemoteResponse, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header = headers

	resp, err := c.http.Do(req)
	if err != nil {
		// Request was sent but no usable response came back.
		return nil, &NormalizedError{
			Message: "No response received from Vorld API",
			Status:  http.StatusServiceUnavailable,
			Details: map[string]string{"message": err.Error()},
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NormalizedError{
			Message: "No response received from Vorld API",
			Status:  http.StatusServiceUnavailable,
			Details: map[string]string{"message": err.Error()},
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, normalizeRemoteError(resp.StatusCode, respBody)
	}

	return &RemoteResponse{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// normalizeRemoteError converts a non-2xx response into a NormalizedError,
// preferring the remote-provided error or message field.
func normalizeRemoteError(status int, body []byte) *NormalizedError {
	message := "Vorld API request failed"
	var details any

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		details = payload
		if s, ok := payload["error"].(string); ok && s != "" {
			message = s
		} else if s, ok := payload["message"].(string); ok && s != "" {
			message = s
		}
	} else if len(body) > 0 {
		details = string(body)
	}

	return &NormalizedError{Message: message, Status: status, Details: details}
}
