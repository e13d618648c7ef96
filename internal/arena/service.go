package arena

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"sync"
)

// remoteEnvelope is the {success, data, error} wrapper the Arena Arcade API
// puts around its payloads.
type remoteEnvelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// BoostPayload is the body for faction and player boosts.
type BoostPayload struct {
	Amount   int    `json:"amount"`
	Username string `json:"username"`
}

// StreamURLUpdate is the body for PUT games/{id}/stream-url.
type StreamURLUpdate struct {
	StreamURL    string `json:"streamUrl"`
	OldStreamURL string `json:"oldStreamUrl,omitempty"`
}

// DropPayload is the body for POST items/drop/{id}.
type DropPayload struct {
	ItemID       string `json:"itemId"`
	TargetPlayer string `json:"targetPlayer"`
}

// TriggerPayload is the body for POST events/trigger/{id}.
type TriggerPayload struct {
	EventID      string `json:"eventId"`
	TargetPlayer string `json:"targetPlayer,omitempty"`
}

// Service owns the single active game session and every request/response
// operation against the Vorld APIs. It holds no realtime connection; the
// channel is managed separately and wired up by the bridge.
type Service struct {
	client *Client

	mu        sync.RWMutex
	streamURL string
	session   *GameSession
}

func NewService(client *Client, streamURL string) *Service {
	return &Service{client: client, streamURL: streamURL}
}

// SetUserToken replaces the bearer token used for game API calls.
func (s *Service) SetUserToken(token string) {
	s.client.SetToken(token)
}

// Token returns the currently configured bearer token.
func (s *Service) Token() string {
	return s.client.Token()
}

// HasToken reports whether a bearer token is currently configured.
func (s *Service) HasToken() bool {
	return s.client.Token() != ""
}

// Session returns a copy of the stored game session, or nil if none.
func (s *Service) Session() *GameSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	gs := *s.session
	return &gs
}

// ClearSession drops the stored game session.
func (s *Service) ClearSession() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
}

// StreamURL returns the stream URL most recently used or configured.
func (s *Service) StreamURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streamURL
}

// gameID resolves an explicit game ID or falls back to the stored session.
func (s *Service) gameID(explicit, op string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session != nil && s.session.GameID != "" {
		return s.session.GameID, nil
	}
	return "", &MissingIdentifierError{Op: op}
}

// InitializeGame creates a new session with the Arena Arcade. On success the
// returned session is stored, replacing any previous one. The call is not
// retried; a remote failure is returned unchanged.
func (s *Service) InitializeGame(ctx context.Context, streamURL string) Result {
	s.mu.Lock()
	if streamURL == "" {
		streamURL = s.streamURL
	}
	if streamURL == "" {
		s.mu.Unlock()
		return failure(&ConfigurationError{Field: "STREAM_URL"}, "Failed to initialize game")
	}
	// Persist the latest stream URL so subsequent calls reuse it.
	s.streamURL = streamURL
	s.mu.Unlock()

	if !s.HasToken() {
		return failure(&ConfigurationError{Field: "USER_TOKEN"}, "Failed to initialize game")
	}

	log.Println("Initializing game with Vorld Arena Arcade...")

	resp, err := s.client.Call(ctx, http.MethodPost, "games/init", map[string]string{
		"streamUrl": streamURL,
	})
	if err != nil {
		log.Printf("Failed to initialize game: %v", err)
		return failure(err, "Failed to initialize game")
	}

	var envelope remoteEnvelope
	if err := resp.Decode(&envelope); err != nil {
		return failure(err, "Failed to initialize game")
	}

	if envelope.Success == nil || !*envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = "Failed to initialize game"
		}
		return Result{Success: false, Error: msg, Status: resp.StatusCode, Details: json.RawMessage(resp.Body)}
	}

	gs, err := parseGameSession(envelope.Data)
	if err != nil {
		return failure(err, "Failed to initialize game")
	}

	s.mu.Lock()
	s.session = gs
	s.mu.Unlock()

	log.Printf("Game initialized: id=%s status=%s ws=%s", gs.GameID, gs.Status, gs.WebsocketURL)
	return successResult(gs)
}

// GameDetails fetches details for the given game, falling back to the
// stored session's ID.
func (s *Service) GameDetails(ctx context.Context, gameID string) Result {
	id, err := s.gameID(gameID, "fetch details")
	if err != nil {
		return failure(err, "Failed to retrieve game details")
	}

	resp, err := s.client.Call(ctx, http.MethodGet, "games/"+id, nil)
	if err != nil {
		return failure(err, "Failed to retrieve game details")
	}

	var envelope remoteEnvelope
	if err := resp.Decode(&envelope); err != nil {
		return failure(err, "Failed to retrieve game details")
	}
	if envelope.Success != nil && !*envelope.Success {
		msg := envelope.Error
		if msg == "" {
			msg = "Failed to retrieve game details"
		}
		return Result{Success: false, Error: msg, Status: resp.StatusCode, Details: json.RawMessage(resp.Body)}
	}
	if len(envelope.Data) > 0 {
		return successResult(envelope.Data)
	}
	return successResult(json.RawMessage(resp.Body))
}

// StopGame stops an active game session.
func (s *Service) StopGame(ctx context.Context, gameID string) Result {
	id, err := s.gameID(gameID, "stop game")
	if err != nil {
		return failure(err, "Failed to stop game")
	}

	resp, err := s.client.Call(ctx, http.MethodPost, "games/"+id+"/stop", nil)
	if err != nil {
		return failure(err, "Failed to stop game")
	}
	return successResult(json.RawMessage(resp.Body))
}

// UpdateStreamURL changes the stream URL of an active game. On success the
// new URL is remembered for later re-initialization.
func (s *Service) UpdateStreamURL(ctx context.Context, gameID string, update StreamURLUpdate) Result {
	id, err := s.gameID(gameID, "update stream URL")
	if err != nil {
		return failure(err, "Failed to update stream URL")
	}

	resp, err := s.client.Call(ctx, http.MethodPut, "games/"+id+"/stream-url", update)
	if err != nil {
		return failure(err, "Failed to update stream URL")
	}

	if update.StreamURL != "" {
		s.mu.Lock()
		s.streamURL = update.StreamURL
		s.mu.Unlock()
	}
	return successResult(json.RawMessage(resp.Body))
}

// BoostFaction applies a faction-wide boost. Both identifiers are required
// explicitly; there is no session fallback for the faction route.
func (s *Service) BoostFaction(ctx context.Context, gameID, faction string, payload BoostPayload) Result {
	if gameID == "" || faction == "" {
		return failure(&MissingIdentifierError{Op: "boost faction"}, "Failed to boost faction")
	}

	resp, err := s.client.Call(ctx, http.MethodPost, "games/boost/"+faction+"/"+gameID, payload)
	if err != nil {
		return failure(err, "Failed to boost faction")
	}
	return successResult(json.RawMessage(resp.Body))
}

// BoostPlayer applies a boost to an individual player.
func (s *Service) BoostPlayer(ctx context.Context, gameID, playerID string, payload BoostPayload) Result {
	if gameID == "" || playerID == "" {
		return failure(&MissingIdentifierError{Op: "boost player"}, "Failed to boost player")
	}

	resp, err := s.client.Call(ctx, http.MethodPost, "games/boost/player/"+gameID+"/"+playerID, payload)
	if err != nil {
		return failure(err, "Failed to boost player")
	}
	return successResult(json.RawMessage(resp.Body))
}

// PlayerBoostStats retrieves per-player boost statistics.
func (s *Service) PlayerBoostStats(ctx context.Context, gameID string) Result {
	id, err := s.gameID(gameID, "fetch boost stats")
	if err != nil {
		return failure(err, "Failed to fetch player boost stats")
	}

	resp, err := s.client.Call(ctx, http.MethodGet, "games/boost/players/stats/"+id, nil)
	if err != nil {
		return failure(err, "Failed to fetch player boost stats")
	}
	return successResult(json.RawMessage(resp.Body))
}

// DropItem drops an item on behalf of a viewer.
func (s *Service) DropItem(ctx context.Context, gameID string, payload DropPayload) Result {
	id, err := s.gameID(gameID, "drop item")
	if err != nil {
		return failure(err, "Failed to drop item")
	}

	resp, err := s.client.Call(ctx, http.MethodPost, "items/drop/"+id, payload)
	if err != nil {
		return failure(err, "Failed to drop item")
	}
	return successResult(json.RawMessage(resp.Body))
}

// TriggerEvent fires a custom game event.
func (s *Service) TriggerEvent(ctx context.Context, gameID string, payload TriggerPayload) Result {
	id, err := s.gameID(gameID, "trigger event")
	if err != nil {
		return failure(err, "Failed to trigger event")
	}

	resp, err := s.client.Call(ctx, http.MethodPost, "events/trigger/"+id, payload)
	if err != nil {
		return failure(err, "Failed to trigger event")
	}
	return successResult(json.RawMessage(resp.Body))
}

// Profile fetches the authenticated user's profile.
func (s *Service) Profile(ctx context.Context) Result {
	resp, err := s.client.Call(ctx, http.MethodGet, "profile", nil)
	if err != nil {
		return failure(err, "Failed to fetch profile")
	}
	return successResult(json.RawMessage(resp.Body))
}

// hashPassword produces the SHA-256 hex digest sent in place of plaintext
// passwords. The plaintext never goes over the wire.
func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// RequestOTP registers the account and triggers an OTP email.
func (s *Service) RequestOTP(ctx context.Context, email, password string) Result {
	if email == "" || password == "" {
		return Result{Success: false, Error: "email and password are required", Status: http.StatusBadRequest}
	}

	resp, err := s.client.CallAuth(ctx, http.MethodPost, "auth/register", map[string]string{
		"email":    email,
		"password": hashPassword(password),
	})
	if err != nil {
		return failure(err, "Failed to request OTP")
	}
	return successResult(json.RawMessage(resp.Body))
}

// VerifyOTP confirms the emailed one-time password.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) Result {
	if email == "" || otp == "" {
		return Result{Success: false, Error: "email and otp are required", Status: http.StatusBadRequest}
	}

	resp, err := s.client.CallAuth(ctx, http.MethodPost, "auth/verify-otp", map[string]string{
		"email": email,
		"otp":   otp,
	})
	if err != nil {
		return failure(err, "Failed to verify OTP")
	}
	return successResult(json.RawMessage(resp.Body))
}

// Login authenticates and returns the remote token payload.
func (s *Service) Login(ctx context.Context, email, password string) Result {
	if email == "" || password == "" {
		return Result{Success: false, Error: "email and password are required", Status: http.StatusBadRequest}
	}

	resp, err := s.client.CallAuth(ctx, http.MethodPost, "auth/login", map[string]string{
		"email":    email,
		"password": hashPassword(password),
	})
	if err != nil {
		return failure(err, "Failed to login")
	}
	return successResult(json.RawMessage(resp.Body))
}
