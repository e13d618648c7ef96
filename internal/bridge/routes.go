package bridge

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/vorld-bridge/backend/internal/arena"
)

// SetupRoutes registers the command surface under /api/. Handlers validate
// inputs, call into the core, and map the result envelope onto a transport
// status. Internal errors are never exposed as stack traces.
func (b *Bridge) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/status", b.handleStatus)
	mux.HandleFunc("/api/games", b.handleGames)
	mux.HandleFunc("/api/games/", b.handleGameRoutes)
	mux.HandleFunc("/api/items/drop/", b.handleDropItem)
	mux.HandleFunc("/api/events/trigger/", b.handleTriggerEvent)
	mux.HandleFunc("/api/profile", b.handleProfile)
	mux.HandleFunc("/api/config/user-token", b.handleUserToken)
	mux.HandleFunc("/api/auth/request-otp", b.handleRequestOTP)
	mux.HandleFunc("/api/auth/verify-otp", b.handleVerifyOTP)
	mux.HandleFunc("/api/auth/login", b.handleLogin)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, arena.Result{Success: false, Error: msg})
}

// writeResult maps a service result onto the HTTP response. successStatus
// lets creation endpoints answer 201.
func writeResult(w http.ResponseWriter, result arena.Result, successStatus int) {
	if result.Success {
		writeJSON(w, successStatus, result)
		return
	}
	status := result.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}

// decodeBody parses a JSON request body; an empty body is treated the same
// as an empty object so optional-body endpoints stay lenient.
func decodeBody(r *http.Request, out any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (b *Bridge) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, arena.Result{
		Success: true,
		Data: map[string]any{
			"state":     b.State(),
			"connected": b.Connected(),
			"gameState": b.svc.Session(),
		},
	})
}

func (b *Bridge) handleGames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		StreamURL string `json:"streamUrl"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result := b.Initialize(r.Context(), body.StreamURL)
	writeResult(w, result, http.StatusCreated)
}

// handleGameRoutes dispatches the /api/games/ subtree:
//
//	GET  /api/games/{id}
//	PUT  /api/games/{id}/stream-url
//	POST /api/games/{id}/stop
//	GET  /api/games/boost/players/stats/{id}
//	POST /api/games/boost/player/{id}/{playerId}
//	POST /api/games/boost/{faction}/{id}
func (b *Bridge) handleGameRoutes(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/games/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if parts[0] == "boost" {
		b.handleBoostRoutes(w, r, parts[1:])
		return
	}

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeResult(w, b.svc.GameDetails(r.Context(), parts[0]), http.StatusOK)

	case len(parts) == 2 && parts[1] == "stream-url":
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var body arena.StreamURLUpdate
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if body.StreamURL == "" {
			writeError(w, http.StatusBadRequest, "streamUrl is required")
			return
		}
		writeResult(w, b.svc.UpdateStreamURL(r.Context(), parts[0], body), http.StatusOK)

	case len(parts) == 2 && parts[1] == "stop":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeResult(w, b.svc.StopGame(r.Context(), parts[0]), http.StatusOK)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (b *Bridge) handleBoostRoutes(w http.ResponseWriter, r *http.Request, parts []string) {
	// GET /api/games/boost/players/stats/{id}
	if len(parts) == 3 && parts[0] == "players" && parts[1] == "stats" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeResult(w, b.svc.PlayerBoostStats(r.Context(), parts[2]), http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Amount   json.Number `json:"amount"`
		Username string      `json:"username"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	amount, err := body.Amount.Int64()
	if body.Username == "" || err != nil {
		writeError(w, http.StatusBadRequest, "username and numeric amount are required")
		return
	}
	payload := arena.BoostPayload{Amount: int(amount), Username: body.Username}

	switch {
	// POST /api/games/boost/player/{gameId}/{playerId}
	case len(parts) == 3 && parts[0] == "player":
		writeResult(w, b.svc.BoostPlayer(r.Context(), parts[1], parts[2], payload), http.StatusOK)

	// POST /api/games/boost/{faction}/{gameId}
	case len(parts) == 2:
		writeResult(w, b.svc.BoostFaction(r.Context(), parts[1], parts[0], payload), http.StatusOK)

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (b *Bridge) handleDropItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	gameID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/items/drop/"), "/")
	var body arena.DropPayload
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.ItemID == "" || body.TargetPlayer == "" {
		writeError(w, http.StatusBadRequest, "itemId and targetPlayer are required")
		return
	}
	writeResult(w, b.svc.DropItem(r.Context(), gameID, body), http.StatusOK)
}

func (b *Bridge) handleTriggerEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	gameID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/events/trigger/"), "/")
	var body arena.TriggerPayload
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.EventID == "" {
		writeError(w, http.StatusBadRequest, "eventId is required")
		return
	}
	writeResult(w, b.svc.TriggerEvent(r.Context(), gameID, body), http.StatusOK)
}

func (b *Bridge) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeResult(w, b.svc.Profile(r.Context()), http.StatusOK)
}

// maskToken shortens a token for log output; short tokens are not echoed.
func maskToken(token string) string {
	if len(token) > 12 {
		return token[:6] + "..." + token[len(token)-6:]
	}
	return "[token updated]"
}

func (b *Bridge) handleUserToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	token := strings.TrimSpace(body.Token)
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	b.svc.SetUserToken(token)
	masked := maskToken(token)
	log.Printf("USER_TOKEN updated via API (%s)", masked)

	writeJSON(w, http.StatusOK, arena.Result{
		Success: true,
		Data: map[string]any{
			"userTokenUpdated": true,
			"maskedToken":      masked,
		},
	})
}

func (b *Bridge) handleRequestOTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	writeResult(w, b.svc.RequestOTP(r.Context(), body.Email, body.Password), http.StatusOK)
}

func (b *Bridge) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Email == "" || body.OTP == "" {
		writeError(w, http.StatusBadRequest, "email and otp are required")
		return
	}
	writeResult(w, b.svc.VerifyOTP(r.Context(), body.Email, body.OTP), http.StatusOK)
}

func (b *Bridge) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	writeResult(w, b.svc.Login(r.Context(), body.Email, body.Password), http.StatusOK)
}
