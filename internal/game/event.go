package game

import (
	"encoding/json"

	"sectorclash/internal/game/nav"
)

// EventType classifies a delta event.
type EventType uint8

const (
	EventUnknown EventType = iota
	EventPickupConsumed
	EventPickupRegenerated
	EventPowerConsumed
	EventPowerRegenerated
	EventParticipantDown
	EventParticipantRevived
	EventSectorCaptured
	EventSectorLost
	EventFruitSpawned
	EventFruitConsumed
	EventEliteSpawned
	EventEliteDamaged
	EventNarration
)

// EventVersion guards replay compatibility of the audit stream.
const EventVersion uint8 = 1

// Event is one entry of the per-tick delta log. The session layer
// drains these at snapshot time; an optional audit sink mirrors them
// to disk.
type Event struct {
	Version  uint8     `json:"version"`
	Type     EventType `json:"type"`
	Sequence uint64    `json:"sequence"` // monotonic, assigned on emit
	Tick     int64     `json:"tick"`
	Payload  []byte    `json:"payload,omitempty"` // JSON-encoded, type-specific
}

// String returns the wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventPickupConsumed:
		return "pickup_consumed"
	case EventPickupRegenerated:
		return "pickup_regenerated"
	case EventPowerConsumed:
		return "power_consumed"
	case EventPowerRegenerated:
		return "power_regenerated"
	case EventParticipantDown:
		return "participant_down"
	case EventParticipantRevived:
		return "participant_revived"
	case EventSectorCaptured:
		return "sector_captured"
	case EventSectorLost:
		return "sector_lost"
	case EventFruitSpawned:
		return "fruit_spawned"
	case EventFruitConsumed:
		return "fruit_consumed"
	case EventEliteSpawned:
		return "elite_spawned"
	case EventEliteDamaged:
		return "elite_damaged"
	case EventNarration:
		return "narration"
	default:
		return "unknown"
	}
}

// MarshalJSON emits the string name so external caches never see raw
// enum ordinals.
func (t EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON restores a type from its wire name; unknown names
// decode as EventUnknown so old readers survive new event types.
func (t *EventType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for v := EventPickupConsumed; v <= EventNarration; v++ {
		if v.String() == name {
			*t = v
			return nil
		}
	}
	*t = EventUnknown
	return nil
}

// Typed payloads. One struct per event type that carries data; the
// session layer switches on Event.Type to decode.

// PickupPayload covers pickup_consumed and pickup_regenerated.
// ParticipantID is empty for regeneration.
type PickupPayload struct {
	Cell          nav.Point `json:"cell"`
	SectorID      int       `json:"sectorId"`
	ParticipantID string    `json:"participantId,omitempty"`
}

// PowerPayload covers power_consumed and power_regenerated.
type PowerPayload struct {
	Cell          nav.Point `json:"cell"`
	ParticipantID string    `json:"participantId,omitempty"`
}

// DownPayload marks a participant entering the down state.
type DownPayload struct {
	ParticipantID string    `json:"participantId"`
	Cell          nav.Point `json:"cell"`
}

// RevivePayload marks a participant returning to play. Automatic is
// true for the timed self-respawn, false for teammate or item revives.
type RevivePayload struct {
	ParticipantID string    `json:"participantId"`
	RescuerID     string    `json:"rescuerId,omitempty"`
	Cell          nav.Point `json:"cell"`
	Automatic     bool      `json:"automatic"`
}

// SectorPayload covers sector_captured and sector_lost.
type SectorPayload struct {
	SectorID int     `json:"sectorId"`
	Progress float64 `json:"progress"` // overall progress after the flip
}

// FruitPayload covers fruit_spawned and fruit_consumed.
type FruitPayload struct {
	FruitID       int       `json:"fruitId"`
	FruitType     string    `json:"fruitType"`
	Cell          nav.Point `json:"cell"`
	ParticipantID string    `json:"participantId,omitempty"`
}

// ElitePayload covers elite_spawned and elite_damaged. HPLeft is zero
// on the final hit.
type ElitePayload struct {
	AdversaryID   int       `json:"adversaryId"`
	HPLeft        int       `json:"hpLeft"`
	Cell          nav.Point `json:"cell"`
	ParticipantID string    `json:"participantId,omitempty"`
}

// NarrationPayload is free-text color commentary.
type NarrationPayload struct {
	Text string `json:"text"`
}

// EncodePayload marshals a payload to JSON bytes.
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}
