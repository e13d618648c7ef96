package channel

import (
	"context"
	"encoding/json"
	"log"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// Credentials are presented to the upstream service at connection time.
type Credentials struct {
	Token string
	AppID string
}

// Channel owns the single outbound realtime connection to the Vorld arena.
// At most one connection is alive at any time; Open tears down an existing
// connection before dialing. Reconnection is never automatic: when the
// connection drops, the disconnect hook fires and the channel stays closed
// until the next explicit Open.
type Channel struct {
	dialer *websocket.Dialer

	mu           sync.Mutex
	conn         *websocket.Conn
	handlers     map[EventType]Handler
	onDisconnect func(error)
}

func New() *Channel {
	return &Channel{
		dialer:   websocket.DefaultDialer,
		handlers: make(map[EventType]Handler),
	}
}

// On subscribes a handler for one event type, replacing any previous
// subscription. Events with no subscriber are dropped silently; that is the
// delivery policy, not an error.
func (c *Channel) On(event EventType, h Handler) {
	c.mu.Lock()
	c.handlers[event] = h
	c.mu.Unlock()
}

// OnDisconnect sets the hook invoked when an established connection is lost
// for any reason other than an explicit Close.
func (c *Channel) OnDisconnect(f func(error)) {
	c.mu.Lock()
	c.onDisconnect = f
	c.mu.Unlock()
}

// Connected reports whether a connection is currently established.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Open establishes the realtime connection. Credentials travel as query
// parameters on the dial URL. A connection already open is closed first, so
// the single-connection invariant holds even on repeated calls. A dial
// failure is returned directly; no listener is registered until the
// transport reports success.
func (c *Channel) Open(ctx context.Context, rawURL string, creds Credentials) error {
	c.Close()

	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("token", creds.Token)
	q.Set("appId", creds.AppID)
	u.RawQuery = q.Encode()

	log.Println("Connecting to Vorld WebSocket...")
	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		log.Printf("WebSocket connection error: %v", err)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	log.Println("Connected to Vorld Arena WebSocket")
	go c.readLoop(conn)
	return nil
}

// Close tears down the connection, if any. Idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
		log.Println("Disconnected from Vorld WebSocket")
	}
}

// readLoop consumes frames until the connection dies. Listener dispatch is
// scoped to this connection instance; a reconnect starts a fresh loop.
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			current := c.conn == conn
			if current {
				c.conn = nil
			}
			hook := c.onDisconnect
			c.mu.Unlock()

			conn.Close()
			// Only report losses of the live connection; an explicit
			// Close already cleared the handle.
			if current {
				log.Printf("Vorld WebSocket connection lost: %v", err)
				if hook != nil {
					hook(err)
				}
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			continue
		}
		c.dispatch(f)
	}
}

func (c *Channel) dispatch(f frame) {
	if !knownEvents[f.Event] {
		return
	}

	logEvent(f)

	c.mu.Lock()
	h := c.handlers[f.Event]
	c.mu.Unlock()

	if h != nil {
		h(f.Data)
	}
}

// logEvent mirrors the per-event console lines the bridge operators rely on.
func logEvent(f frame) {
	switch f.Event {
	case EventCountdownStarted:
		var p struct {
			Countdown int `json:"countdown"`
		}
		json.Unmarshal(f.Data, &p)
		log.Printf("Arena countdown started: %d seconds", p.Countdown)
	case EventCountdownUpdate:
		var p struct {
			SecondsRemaining int `json:"secondsRemaining"`
		}
		json.Unmarshal(f.Data, &p)
		log.Printf("Countdown: %d seconds remaining", p.SecondsRemaining)
	case EventArenaBegins:
		log.Println("Arena is LIVE! Viewers can now interact")
	case EventPlayerBoostActivated:
		var p struct {
			BoosterUsername string `json:"boosterUsername"`
			PlayerName      string `json:"playerName"`
			BoostAmount     int    `json:"boostAmount"`
			ArenaCoinsSpent int    `json:"arenaCoinsSpent"`
		}
		json.Unmarshal(f.Data, &p)
		log.Printf("%s boosted %s with %d points (%d coins)",
			p.BoosterUsername, p.PlayerName, p.BoostAmount, p.ArenaCoinsSpent)
	case EventBoostCycleUpdate:
		log.Println("Boost cycle update")
	case EventBoostCycleComplete:
		log.Println("Boost cycle complete")
	case EventPackageDrop:
		var p struct {
			CurrentCycle int `json:"currentCycle"`
		}
		json.Unmarshal(f.Data, &p)
		log.Printf("Package drop, cycle %d", p.CurrentCycle)
	case EventImmediateItemDrop:
		log.Println("Immediate item drop")
	case EventTriggered:
		log.Println("Custom event triggered")
	case EventGameCompleted:
		log.Println("Game completed")
	case EventGameStopped:
		log.Println("Game stopped")
	}
}
