package relay

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shirou/gopsutil/v3/process"
)

// consumer is the single downstream game connection. Writes go through a
// buffered send channel drained by writePump, so Push never blocks on a
// slow consumer.
type consumer struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func newConsumer(conn *websocket.Conn) *consumer {
	c := &consumer{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 64),
		done: make(chan struct{}),
	}
	go c.writePump()
	return c
}

func (c *consumer) writePump() {
	defer c.conn.Close()
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// eventFrame is the wire format pushed to the downstream consumer.
type eventFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Relay accepts at most one downstream consumer connection and forwards
// named events to it. Delivery is best effort: no queueing while no consumer
// is attached, no replay, no back-pressure.
type Relay struct {
	mu        sync.Mutex
	consumer  *consumer
	startedAt time.Time
}

func New() *Relay {
	return &Relay{startedAt: time.Now()}
}

// SetupRoutes registers the websocket endpoint and the plain HTTP probes.
func (r *Relay) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", r.handleWS)
	mux.HandleFunc("/health", r.handleHealth)
	mux.HandleFunc("/status", r.handleStatus)
}

func (r *Relay) handleWS(w http.ResponseWriter, req *http.Request) {
	upgrader := websocket.Upgrader{
		// The game client connects from an arbitrary local origin.
		CheckOrigin: func(*http.Request) bool { return true },
	}

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	c := newConsumer(conn)
	log.Printf("Game client connected: %s (%s)", c.id, req.RemoteAddr)

	// Last connect wins: the previous consumer, if any, is simply orphaned.
	// Its connection stays open but stops receiving pushes.
	r.mu.Lock()
	prev := r.consumer
	r.consumer = c
	r.mu.Unlock()
	if prev != nil {
		log.Printf("Game client superseded: %s", prev.id)
	}

	go r.readLoop(c)
}

// readLoop services liveness pings and detects consumer departure.
func (r *Relay) readLoop(c *consumer) {
	defer func() {
		r.mu.Lock()
		if r.consumer == c {
			r.consumer = nil
			log.Printf("Game client disconnected: %s", c.id)
		}
		r.mu.Unlock()
		close(c.done)
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var f eventFrame
		if err := json.Unmarshal(data, &f); err != nil {
			continue
		}
		switch f.Event {
		case "ping":
			pong, _ := json.Marshal(eventFrame{Event: "pong"})
			select {
			case c.send <- pong:
			default:
			}
		case "game_event":
			log.Printf("Received event from game client: %s", string(data))
		}
	}
}

// Push forwards a named event to the current consumer. Returns false, after
// a warning, when no consumer is attached; the event is dropped, never
// buffered.
func (r *Relay) Push(event string, payload any) bool {
	r.mu.Lock()
	c := r.consumer
	r.mu.Unlock()

	if c == nil {
		log.Printf("No game client connected, event not sent: %s", event)
		return false
	}

	data, err := json.Marshal(eventFrame{Event: event, Data: payload})
	if err != nil {
		log.Printf("push marshal error: %v", err)
		return false
	}

	select {
	case c.send <- data:
	default:
		// Consumer can't keep up; drop the event rather than block.
		log.Printf("game client too slow, dropping event: %s", event)
	}
	return true
}

// ConsumerConnected reports whether a downstream consumer is attached.
func (r *Relay) ConsumerConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.consumer != nil
}

// ConsumerID returns the current consumer's connection ID, or "".
func (r *Relay) ConsumerID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.consumer == nil {
		return ""
	}
	return r.consumer.id
}

type processHealth struct {
	PID           int     `json:"pid"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
	RSSBytes      uint64  `json:"rssBytes"`
	CPUPercent    float64 `json:"cpuPercent"`
}

func (r *Relay) handleHealth(w http.ResponseWriter, req *http.Request) {
	resp := map[string]any{
		"status":            "ok",
		"consumerConnected": r.ConsumerConnected(),
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
	}

	ph := processHealth{
		PID:           os.Getpid(),
		UptimeSeconds: time.Since(r.startedAt).Seconds(),
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			ph.RSSBytes = mem.RSS
		}
		if cpu, err := proc.CPUPercent(); err == nil {
			ph.CPUPercent = cpu
		}
	}
	resp["process"] = ph

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (r *Relay) handleStatus(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"consumerConnected": r.ConsumerConnected(),
		"consumerId":        r.ConsumerID(),
	})
}

// ListenAndServe starts the relay's HTTP server. It binds all interfaces so
// hosted deployments accept external connections.
func ListenAndServe(host string, port int, mux *http.ServeMux) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("Bridge listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
