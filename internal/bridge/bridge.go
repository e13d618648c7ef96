package bridge

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/vorld-bridge/backend/internal/arena"
	"github.com/vorld-bridge/backend/internal/channel"
	"github.com/vorld-bridge/backend/internal/config"
	"github.com/vorld-bridge/backend/internal/relay"
)

// State is the bridge's session lifecycle position.
type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
	ChannelConnecting
	Active
	Disconnected
	Errored
)

var stateNames = map[State]string{
	Uninitialized:     "uninitialized",
	Initializing:      "initializing",
	Ready:             "ready",
	ChannelConnecting: "channel_connecting",
	Active:            "active",
	Disconnected:      "disconnected",
	Errored:           "error",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Bridge sequences the session lifecycle: start the relay, wire channel
// events to relay pushes, and on demand run init -> connect against the
// Vorld APIs. Lifecycle sequences are serialized by seqMu; inbound realtime
// events flow independently of commands in flight.
type Bridge struct {
	cfg   *config.Config
	svc   *arena.Service
	ch    *channel.Channel
	relay *relay.Relay

	seqMu sync.Mutex // serializes initialize/connect/disconnect sequences

	mu    sync.RWMutex
	state State
}

func New(cfg *config.Config, svc *arena.Service, ch *channel.Channel, rl *relay.Relay) *Bridge {
	b := &Bridge{
		cfg:   cfg,
		svc:   svc,
		ch:    ch,
		relay: rl,
		state: Uninitialized,
	}
	b.wireEvents()
	return b
}

// wireEvents subscribes the forwarded event vocabulary, shaping each payload
// before the push. Boost cycle and game_stopped events are logged by the
// channel but never forwarded, so they get no subscription.
func (b *Bridge) wireEvents() {
	forwarded := []channel.EventType{
		channel.EventCountdownStarted,
		channel.EventCountdownUpdate,
		channel.EventArenaBegins,
		channel.EventPlayerBoostActivated,
		channel.EventPackageDrop,
		channel.EventImmediateItemDrop,
		channel.EventTriggered,
		channel.EventGameCompleted,
	}
	for _, ev := range forwarded {
		ev := ev
		b.ch.On(ev, func(data json.RawMessage) {
			name, payload, ok := relay.ShapeEvent(ev, data)
			if !ok {
				return
			}
			b.relay.Push(name, payload)
		})
	}

	b.ch.OnDisconnect(func(err error) {
		b.setState(Disconnected)
	})
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *Bridge) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

// Connected reports whether the upstream realtime channel is open.
func (b *Bridge) Connected() bool {
	return b.ch.Connected()
}

// Service exposes the underlying arena service to the routing layer.
func (b *Bridge) Service() *arena.Service {
	return b.svc
}

// Relay exposes the downstream relay to the routing layer.
func (b *Bridge) Relay() *relay.Relay {
	return b.relay
}

// Initialize runs the full session sequence: tear down any existing channel,
// create a session with the arena, then open the realtime channel to the
// returned websocket URL. Re-initialization while active is permitted; the
// old channel and session are discarded first.
func (b *Bridge) Initialize(ctx context.Context, streamURL string) arena.Result {
	b.seqMu.Lock()
	defer b.seqMu.Unlock()

	if !b.svc.HasToken() {
		return arena.Result{
			Success: false,
			Error:   "USER_TOKEN not configured. Use POST /api/config/user-token to set it before initializing.",
			Status:  http.StatusBadRequest,
		}
	}

	if b.ch.Connected() {
		log.Println("Existing Vorld WebSocket connection detected. Disconnecting...")
		b.ch.Close()
		b.svc.ClearSession()
	}

	b.setState(Initializing)
	initResult := b.svc.InitializeGame(ctx, streamURL)
	if !initResult.Success {
		b.setState(Errored)
		return initResult
	}
	b.setState(Ready)

	session := b.svc.Session()
	if session == nil || session.WebsocketURL == "" {
		b.setState(Errored)
		return arena.Result{
			Success: false,
			Error:   "Initialization did not return a WebSocket URL",
			Status:  http.StatusInternalServerError,
			Details: initResult.Data,
		}
	}

	if err := b.connectChannel(ctx, session.WebsocketURL); err != nil {
		b.setState(Errored)
		return arena.Result{
			Success: false,
			Error:   "Failed to connect to Vorld WebSocket",
			Status:  http.StatusBadGateway,
			Details: map[string]string{"message": err.Error()},
		}
	}

	log.Printf("System ready: game %s live, relaying events", session.GameID)
	return initResult
}

// ConnectChannel opens the realtime channel without re-initializing the
// session. An empty URL falls back to the stored session's websocket URL.
func (b *Bridge) ConnectChannel(ctx context.Context, url string) arena.Result {
	b.seqMu.Lock()
	defer b.seqMu.Unlock()

	if url == "" {
		if session := b.svc.Session(); session != nil {
			url = session.WebsocketURL
		}
	}
	if url == "" {
		return arena.Result{
			Success: false,
			Error:   "WebSocket URL is not available. Initialize the game first.",
			Status:  http.StatusBadRequest,
		}
	}

	if err := b.connectChannel(ctx, url); err != nil {
		b.setState(Errored)
		return arena.Result{
			Success: false,
			Error:   "Failed to connect to Vorld WebSocket",
			Status:  http.StatusBadGateway,
			Details: map[string]string{"message": err.Error()},
		}
	}
	return arena.Result{Success: true, Data: map[string]bool{"connected": true}}
}

func (b *Bridge) connectChannel(ctx context.Context, url string) error {
	b.setState(ChannelConnecting)
	err := b.ch.Open(ctx, url, channel.Credentials{
		Token: b.svc.Token(),
		AppID: b.cfg.Vorld.AppID,
	})
	if err != nil {
		return err
	}
	b.setState(Active)
	return nil
}

// Disconnect tears down the channel and clears the stored session.
// Idempotent: disconnecting with nothing open is a no-op.
func (b *Bridge) Disconnect() {
	b.seqMu.Lock()
	defer b.seqMu.Unlock()

	b.ch.Close()
	b.svc.ClearSession()
	b.setState(Uninitialized)
}
