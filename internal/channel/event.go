package channel

import "encoding/json"

// EventType names an inbound realtime event from the Vorld arena. The
// vocabulary is fixed; frames with any other event name are ignored.
type EventType string

const (
	EventCountdownStarted     EventType = "arena_countdown_started"
	EventCountdownUpdate      EventType = "countdown_update"
	EventArenaBegins          EventType = "arena_begins"
	EventPlayerBoostActivated EventType = "player_boost_activated"
	EventBoostCycleUpdate     EventType = "boost_cycle_update"
	EventBoostCycleComplete   EventType = "boost_cycle_complete"
	EventPackageDrop          EventType = "package_drop"
	EventImmediateItemDrop    EventType = "immediate_item_drop"
	EventTriggered            EventType = "event_triggered"
	EventGameCompleted        EventType = "game_completed"
	EventGameStopped          EventType = "game_stopped"
)

// knownEvents is the full recognized vocabulary.
var knownEvents = map[EventType]bool{
	EventCountdownStarted:     true,
	EventCountdownUpdate:      true,
	EventArenaBegins:          true,
	EventPlayerBoostActivated: true,
	EventBoostCycleUpdate:     true,
	EventBoostCycleComplete:   true,
	EventPackageDrop:          true,
	EventImmediateItemDrop:    true,
	EventTriggered:            true,
	EventGameCompleted:        true,
	EventGameStopped:          true,
}

// frame is the wire format of a single realtime message.
type frame struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Handler receives the raw payload of a subscribed event.
type Handler func(data json.RawMessage)
