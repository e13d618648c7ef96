package arena

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{"https://api.example.com", "games/init", "https://api.example.com/games/init"},
		{"https://api.example.com/", "games/init", "https://api.example.com/games/init"},
		{"https://api.example.com", "/games/init", "https://api.example.com/games/init"},
		{"https://api.example.com/", "/games/init", "https://api.example.com/games/init"},
		{"https://api.example.com/v1", "profile", "https://api.example.com/v1/profile"},
		{"https://api.example.com/v1/", "/profile", "https://api.example.com/v1/profile"},
	}

	for _, tt := range tests {
		if got := joinURL(tt.base, tt.path); got != tt.want {
			t.Errorf("joinURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestCallFailsFastWithoutCredentials(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	tests := []struct {
		name   string
		client *Client
	}{
		{"NoToken", NewClient(srv.URL, srv.URL, "app-1", "arena-1", "")},
		{"NoArenaGameID", NewClient(srv.URL, srv.URL, "app-1", "", "tok")},
		{"NoAppID", NewClient(srv.URL, srv.URL, "", "arena-1", "tok")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.client.Call(context.Background(), http.MethodGet, "profile", nil)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
		})
	}

	if n := calls.Load(); n != 0 {
		t.Errorf("expected zero network calls, got %d", n)
	}
}

func TestCallAttachesRequiredHeaders(t *testing.T) {
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, "app-1", "arena-1", "tok-123")
	if _, err := c.Call(context.Background(), http.MethodGet, "profile", nil); err != nil {
		t.Fatalf("Call: %v", err)
	}

	want := map[string]string{
		"Authorization":          "Bearer tok-123",
		"X-Arena-Arcade-Game-ID": "arena-1",
		"X-Vorld-App-ID":         "app-1",
		"Content-Type":           "application/json",
	}
	for header, expected := range want {
		if got := gotHeaders.Get(header); got != expected {
			t.Errorf("header %s = %q, want %q", header, got, expected)
		}
	}
}

func TestCallAuthOmitsBearerToken(t *testing.T) {
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	// No user token at all: auth calls must still succeed.
	c := NewClient(srv.URL, srv.URL, "app-1", "arena-1", "")
	if _, err := c.CallAuth(context.Background(), http.MethodPost, "auth/login", map[string]string{}); err != nil {
		t.Fatalf("CallAuth: %v", err)
	}

	if got := gotHeaders.Get("Authorization"); got != "" {
		t.Errorf("auth call sent Authorization header %q", got)
	}
	if got := gotHeaders.Get("X-Vorld-App-ID"); got != "app-1" {
		t.Errorf("X-Vorld-App-ID = %q, want app-1", got)
	}
}

func TestCallNormalizesRemoteRejection(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{"ErrorField", http.StatusConflict, `{"error":"exists"}`, "exists"},
		{"MessageField", http.StatusBadRequest, `{"message":"bad stream URL"}`, "bad stream URL"},
		{"NoUsableField", http.StatusInternalServerError, `{"oops":true}`, "Vorld API request failed"},
		{"NonJSONBody", http.StatusBadGateway, `upstream exploded`, "Vorld API request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, srv.URL, "app-1", "arena-1", "tok")
			_, err := c.Call(context.Background(), http.MethodGet, "profile", nil)

			var norm *NormalizedError
			if !errors.As(err, &norm) {
				t.Fatalf("expected NormalizedError, got %v", err)
			}
			if norm.Status != tt.status {
				t.Errorf("status = %d, want %d", norm.Status, tt.status)
			}
			if norm.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", norm.Message, tt.wantMessage)
			}
			if norm.Details == nil {
				t.Error("details should carry the remote payload")
			}
		})
	}
}

func TestCallNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listening anymore

	c := NewClient(url, url, "app-1", "arena-1", "tok")
	_, err := c.Call(context.Background(), http.MethodGet, "profile", nil)

	var norm *NormalizedError
	if !errors.As(err, &norm) {
		t.Fatalf("expected NormalizedError, got %v", err)
	}
	if norm.Status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", norm.Status)
	}
	if norm.Message != "No response received from Vorld API" {
		t.Errorf("message = %q", norm.Message)
	}
}

func TestSetTokenReplacesBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.URL, "app-1", "arena-1", "old-token")
	c.SetToken("new-token")
	if _, err := c.Call(context.Background(), http.MethodGet, "profile", nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if gotAuth != "Bearer new-token" {
		t.Errorf("Authorization = %q, want Bearer new-token", gotAuth)
	}
}
