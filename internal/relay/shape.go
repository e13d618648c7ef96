package relay

import (
	"encoding/json"

	"github.com/vorld-bridge/backend/internal/channel"
)

// Downstream event names. Most upstream events keep their name; boosts and
// custom triggers are renamed for the game client.
const (
	DownCountdownStarted  = "arena_countdown_started"
	DownCountdownUpdate   = "countdown_update"
	DownArenaBegins       = "arena_begins"
	DownPlayerBoost       = "player_boost"
	DownPackageDrop       = "package_drop"
	DownImmediateItemDrop = "immediate_item_drop"
	DownCustomEvent       = "custom_event"
	DownGameCompleted     = "game_completed"
)

// CountdownStarted is the shaped arena_countdown_started payload.
type CountdownStarted struct {
	Countdown int    `json:"countdown"`
	GameID    string `json:"gameId"`
}

// CountdownUpdate is the shaped countdown_update payload.
type CountdownUpdate struct {
	SecondsRemaining int `json:"secondsRemaining"`
}

// ArenaBegins is the shaped arena_begins payload.
type ArenaBegins struct {
	Message     string `json:"message"`
	ArenaActive bool   `json:"arenaActive"`
}

// PlayerBoost is the shaped player_boost payload. Upstream fields outside
// this subset are dropped.
type PlayerBoost struct {
	PlayerName      string `json:"playerName"`
	BoosterUsername string `json:"boosterUsername"`
	BoostAmount     int    `json:"boostAmount"`
	CoinsSpent      int    `json:"coinsSpent"`
	TotalPoints     int    `json:"totalPoints"`
}

// PackageDrop is the shaped package_drop payload. Items defaults to an
// empty list when the upstream carries neither faction's items.
type PackageDrop struct {
	CurrentCycle int              `json:"currentCycle"`
	Items        []any            `json:"items"`
	AllItems     PackageDropItems `json:"allItems"`
}

type PackageDropItems struct {
	AstrokidzItems  []any `json:"astrokidzItems"`
	AquaticansItems []any `json:"aquaticansItems"`
}

// ImmediateItemDrop is the shaped immediate_item_drop payload.
type ImmediateItemDrop struct {
	ItemID       string         `json:"itemId"`
	ItemName     string         `json:"itemName"`
	TargetPlayer string         `json:"targetPlayer"`
	Metadata     map[string]any `json:"metadata"`
}

// CustomEvent is the shaped custom_event payload. Data keeps the full
// upstream payload for game-specific handling.
type CustomEvent struct {
	EventName string          `json:"eventName"`
	IsFinal   bool            `json:"isFinal"`
	Data      json.RawMessage `json:"data"`
}

// ShapeEvent maps an upstream event and raw payload to the downstream event
// name and shaped payload. Returns ok=false for events that are logged
// upstream but never forwarded (boost cycles, game_stopped).
func ShapeEvent(event channel.EventType, raw json.RawMessage) (name string, payload any, ok bool) {
	switch event {
	case channel.EventCountdownStarted:
		var in CountdownStarted
		json.Unmarshal(raw, &in)
		return DownCountdownStarted, in, true

	case channel.EventCountdownUpdate:
		var in CountdownUpdate
		json.Unmarshal(raw, &in)
		return DownCountdownUpdate, in, true

	case channel.EventArenaBegins:
		var in struct {
			ArenaActive bool `json:"arenaActive"`
		}
		json.Unmarshal(raw, &in)
		return DownArenaBegins, ArenaBegins{
			Message:     "Arena is LIVE! Viewers can now interact",
			ArenaActive: in.ArenaActive,
		}, true

	case channel.EventPlayerBoostActivated:
		var in struct {
			PlayerName        string `json:"playerName"`
			BoosterUsername   string `json:"boosterUsername"`
			BoostAmount       int    `json:"boostAmount"`
			ArenaCoinsSpent   int    `json:"arenaCoinsSpent"`
			PlayerTotalPoints int    `json:"playerTotalPoints"`
		}
		json.Unmarshal(raw, &in)
		return DownPlayerBoost, PlayerBoost{
			PlayerName:      in.PlayerName,
			BoosterUsername: in.BoosterUsername,
			BoostAmount:     in.BoostAmount,
			CoinsSpent:      in.ArenaCoinsSpent,
			TotalPoints:     in.PlayerTotalPoints,
		}, true

	case channel.EventPackageDrop:
		var in struct {
			CurrentCycle    int   `json:"currentCycle"`
			AstrokidzItems  []any `json:"astrokidzItems"`
			AquaticansItems []any `json:"aquaticansItems"`
		}
		json.Unmarshal(raw, &in)
		items := in.AstrokidzItems
		if len(items) == 0 {
			items = in.AquaticansItems
		}
		if items == nil {
			items = []any{}
		}
		out := PackageDrop{
			CurrentCycle: in.CurrentCycle,
			Items:        items,
			AllItems: PackageDropItems{
				AstrokidzItems:  in.AstrokidzItems,
				AquaticansItems: in.AquaticansItems,
			},
		}
		if out.AllItems.AstrokidzItems == nil {
			out.AllItems.AstrokidzItems = []any{}
		}
		if out.AllItems.AquaticansItems == nil {
			out.AllItems.AquaticansItems = []any{}
		}
		return DownPackageDrop, out, true

	case channel.EventImmediateItemDrop:
		var in struct {
			ItemID       string         `json:"itemId"`
			ID           string         `json:"id"`
			ItemName     string         `json:"itemName"`
			Name         string         `json:"name"`
			TargetPlayer string         `json:"targetPlayer"`
			Metadata     map[string]any `json:"metadata"`
		}
		json.Unmarshal(raw, &in)
		out := ImmediateItemDrop{
			ItemID:       in.ItemID,
			ItemName:     in.ItemName,
			TargetPlayer: in.TargetPlayer,
			Metadata:     in.Metadata,
		}
		if out.ItemID == "" {
			out.ItemID = in.ID
		}
		if out.ItemName == "" {
			out.ItemName = in.Name
		}
		if out.Metadata == nil {
			out.Metadata = map[string]any{}
		}
		return DownImmediateItemDrop, out, true

	case channel.EventTriggered:
		var in struct {
			Event struct {
				EventName string `json:"eventName"`
				IsFinal   bool   `json:"isFinal"`
			} `json:"event"`
			EventName string `json:"eventName"`
		}
		json.Unmarshal(raw, &in)
		out := CustomEvent{
			EventName: in.Event.EventName,
			IsFinal:   in.Event.IsFinal,
			Data:      raw,
		}
		if out.EventName == "" {
			out.EventName = in.EventName
		}
		return DownCustomEvent, out, true

	case channel.EventGameCompleted:
		// Forwarded unshaped.
		return DownGameCompleted, raw, true
	}

	return "", nil, false
}
