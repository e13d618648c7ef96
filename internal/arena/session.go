package arena

import "encoding/json"

// Status is the lifecycle state of a remote game session as reported by the
// Arena Arcade API.
type Status int

const (
	StatusUnknown Status = iota
	StatusCreated
	StatusLive
	StatusStopped
	StatusCompleted
	StatusError
)

var statusNames = map[Status]string{
	StatusCreated:   "created",
	StatusLive:      "live",
	StatusStopped:   "stopped",
	StatusCompleted: "completed",
	StatusError:     "error",
}

var statusFromName = map[string]Status{
	"created":   StatusCreated,
	"live":      StatusLive,
	"stopped":   StatusStopped,
	"completed": StatusCompleted,
	"error":     StatusError,
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if v, ok := statusFromName[name]; ok {
		*s = v
	} else {
		*s = StatusUnknown
	}
	return nil
}

// GameSession is the single active arena session. It is created only from a
// successful session-init response, replaced wholesale on re-init, and
// cleared on disconnect.
type GameSession struct {
	GameID       string          `json:"gameId"`
	Status       Status          `json:"status"`
	WebsocketURL string          `json:"websocketUrl"`
	Raw          json.RawMessage `json:"-"`
}

func parseGameSession(data json.RawMessage) (*GameSession, error) {
	var gs GameSession
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, err
	}
	gs.Raw = data
	return &gs, nil
}
