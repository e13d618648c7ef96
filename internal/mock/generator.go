package mock

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	"github.com/vorld-bridge/backend/internal/channel"
	"github.com/vorld-bridge/backend/internal/relay"
)

var mockViewers = []string{"astro_fan_42", "coral_queen", "nebula_nick", "tide_turner", "kid_cosmos"}
var mockPlayers = []string{"Blaze", "Marina", "Orbit", "Finn"}
var mockItems = []string{"health_pack", "shield_bubble", "meteor_strike", "speed_surge"}

// Generator feeds synthetic arena events through the relay so the game
// client can be developed without a live Vorld session. Events are built in
// the upstream wire shape and run through the same shaping path as real
// traffic.
type Generator struct {
	relay *relay.Relay
}

func NewGenerator(rl *relay.Relay) *Generator {
	return &Generator{relay: rl}
}

// Start launches the scripted event loop: a countdown, arena start, then a
// steady mix of boosts and drops until the mock game completes.
func (g *Generator) Start(ctx context.Context) {
	go g.run(ctx)
}

func (g *Generator) run(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	const countdownFrom = 10
	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick++
			g.emit(tick, countdownFrom)
		}
	}
}

func (g *Generator) emit(tick, countdownFrom int) {
	switch {
	case tick == 1:
		g.push(channel.EventCountdownStarted, map[string]any{
			"countdown": countdownFrom,
			"gameId":    "mock-game",
		})

	case tick <= countdownFrom:
		g.push(channel.EventCountdownUpdate, map[string]any{
			"secondsRemaining": countdownFrom - tick + 1,
		})

	case tick == countdownFrom+1:
		g.push(channel.EventArenaBegins, map[string]any{"arenaActive": true})

	case tick%7 == 0:
		g.push(channel.EventPackageDrop, map[string]any{
			"currentCycle":   tick / 7,
			"astrokidzItems": []string{pick(mockItems), pick(mockItems)},
		})

	case tick%5 == 0:
		g.push(channel.EventImmediateItemDrop, map[string]any{
			"itemId":       pick(mockItems),
			"itemName":     pick(mockItems),
			"targetPlayer": pick(mockPlayers),
		})

	default:
		amount := 1 + rand.Intn(10)
		g.push(channel.EventPlayerBoostActivated, map[string]any{
			"playerName":        pick(mockPlayers),
			"boosterUsername":   pick(mockViewers),
			"boostAmount":       amount,
			"arenaCoinsSpent":   amount * 2,
			"playerTotalPoints": 50 + rand.Intn(500),
		})
	}
}

func (g *Generator) push(event channel.EventType, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("mock marshal error: %v", err)
		return
	}
	name, payload, ok := relay.ShapeEvent(event, json.RawMessage(raw))
	if !ok {
		return
	}
	g.relay.Push(name, payload)
}

func pick(options []string) string {
	return options[rand.Intn(len(options))]
}
