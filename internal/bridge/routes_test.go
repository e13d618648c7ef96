package bridge

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func newRequest(t *testing.T, method, url string, body any) *http.Request {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

func doRequest(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func decodeResponse(resp *http.Response, out any) error {
	return json.NewDecoder(resp.Body).Decode(out)
}

func TestRouteValidation(t *testing.T) {
	rig := newTestRig(t, "tok")

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantError  string
	}{
		{
			name: "BoostMissingUsername", method: http.MethodPost,
			path: "/api/games/boost/astrokidz/g1", body: map[string]any{"amount": 5},
			wantStatus: http.StatusBadRequest, wantError: "username and numeric amount are required",
		},
		{
			name: "BoostNonNumericAmount", method: http.MethodPost,
			path: "/api/games/boost/player/g1/p1", body: map[string]any{"amount": "lots", "username": "u"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "StreamURLMissing", method: http.MethodPut,
			path: "/api/games/g1/stream-url", body: map[string]any{"oldStreamUrl": "https://old"},
			wantStatus: http.StatusBadRequest, wantError: "streamUrl is required",
		},
		{
			name: "DropMissingTarget", method: http.MethodPost,
			path: "/api/items/drop/g1", body: map[string]any{"itemId": "i1"},
			wantStatus: http.StatusBadRequest, wantError: "itemId and targetPlayer are required",
		},
		{
			name: "TriggerMissingEventID", method: http.MethodPost,
			path: "/api/events/trigger/g1", body: map[string]any{"targetPlayer": "p"},
			wantStatus: http.StatusBadRequest, wantError: "eventId is required",
		},
		{
			name: "TokenMissing", method: http.MethodPost,
			path: "/api/config/user-token", body: map[string]any{"token": "   "},
			wantStatus: http.StatusBadRequest, wantError: "token is required",
		},
		{
			name: "OTPMissingEmail", method: http.MethodPost,
			path: "/api/auth/request-otp", body: map[string]any{"password": "pw"},
			wantStatus: http.StatusBadRequest, wantError: "email and password are required",
		},
		{
			name: "LoginWrongMethod", method: http.MethodGet,
			path: "/api/auth/login", body: nil,
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name: "UnknownGameSubRoute", method: http.MethodPost,
			path: "/api/games/g1/explode", body: nil,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			var body map[string]any
			if tt.method == http.MethodPost {
				resp, body = postJSON(t, rig.srv.URL+tt.path, tt.body)
			} else {
				req := newRequest(t, tt.method, rig.srv.URL+tt.path, tt.body)
				resp, body = doRequest(t, req)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %v)", resp.StatusCode, tt.wantStatus, body)
			}
			if tt.wantError != "" && body["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", body["error"], tt.wantError)
			}
			if success, ok := body["success"].(bool); ok && success {
				t.Error("validation failure must not report success")
			}
		})
	}

	if rig.apiCalls.Load() != 0 {
		t.Errorf("validation failures reached upstream %d times", rig.apiCalls.Load())
	}
}

func TestUserTokenUpdate(t *testing.T) {
	rig := newTestRig(t, "")

	resp, body := postJSON(t, rig.srv.URL+"/api/config/user-token", map[string]string{
		"token": "abcdef-very-secret-123456",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %v", resp.StatusCode, body)
	}

	data := body["data"].(map[string]any)
	if data["userTokenUpdated"] != true {
		t.Errorf("data = %v", data)
	}
	masked, _ := data["maskedToken"].(string)
	if masked == "" || strings.Contains(masked, "very-secret") {
		t.Errorf("maskedToken = %q leaks the token", masked)
	}
	if !rig.bridge.Service().HasToken() {
		t.Error("token not applied to the service")
	}
}

func TestStatusEndpoint(t *testing.T) {
	rig := newTestRig(t, "tok")

	resp, err := http.Get(rig.srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			State     string `json:"state"`
			Connected bool   `json:"connected"`
			GameState any    `json:"gameState"`
		} `json:"data"`
	}
	if err := decodeResponse(resp, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success {
		t.Error("success = false")
	}
	if body.Data.State != "uninitialized" {
		t.Errorf("state = %q, want uninitialized", body.Data.State)
	}
	if body.Data.Connected {
		t.Error("connected = true before any init")
	}
	if body.Data.GameState != nil {
		t.Errorf("gameState = %v, want null", body.Data.GameState)
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"abcdef-very-secret-123456", "abcdef...123456"},
		{"short", "[token updated]"},
		{"exactly12chr", "[token updated]"},
	}
	for _, tt := range tests {
		if got := maskToken(tt.token); got != tt.want {
			t.Errorf("maskToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}
