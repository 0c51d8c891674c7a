package kinetic

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/flowfield/mpm/internal/core"
)

// EventType enumerates the sequence recorder's event kinds (spec §4.H.6).
type EventType string

const (
	EventGestureTrigger    EventType = "GestureTrigger"
	EventMacroChange       EventType = "MacroChange"
	EventPersonalityChange EventType = "PersonalityChange"
	EventFormationChange   EventType = "FormationChange"
)

// Event is one recorded occurrence, timestamped relative to the sequence's
// recordStart (spec §4.H.6).
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp float32         `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Sequence is the persisted shape from spec §6.3.
type Sequence struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Duration  float32 `json:"duration"`
	Events    []Event `json:"events"`
	CreatedAt int64   `json:"createdAt"`
	Tags      []string `json:"tags"`
}

// Recorder captures events during a live session and replays them on
// demand. Not safe for concurrent Record/Advance calls from different
// goroutines; the orchestrator owns it like every other kinetic component
// (spec §5 "stateful but each owned by exactly one caller").
type Recorder struct {
	recording  bool
	recordStart float32
	clock      float32
	seq        Sequence

	playing  bool
	cursor   float32
	speed    float32
	loop     bool
}

func NewRecorder() *Recorder {
	return &Recorder{speed: 1}
}

// StartRecording begins a new sequence, discarding any unsaved one.
func (r *Recorder) StartRecording(name string) {
	r.recording = true
	r.recordStart = r.clock
	r.seq = Sequence{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UnixMilli(),
	}
}

func (r *Recorder) StopRecording() Sequence {
	r.recording = false
	r.seq.Duration = r.clock - r.recordStart
	return r.seq
}

// Record appends an event at the current clock time, if recording.
func (r *Recorder) Record(t EventType, payload any) {
	if !r.recording {
		return
	}
	raw, _ := json.Marshal(payload)
	r.seq.Events = append(r.seq.Events, Event{
		Type:      t,
		Timestamp: r.clock - r.recordStart,
		Payload:   raw,
	})
}

// Advance moves the recorder's own clock forward (always) and, while
// playing, advances the playback cursor at speed*dt, returning the events
// whose timestamp has just been crossed (spec §4.H.6 "applied at the top of
// the frame in which their timestamp is crossed").
func (r *Recorder) Advance(dt float32) []Event {
	r.clock += dt
	if !r.playing {
		return nil
	}
	prevCursor := r.cursor
	r.cursor += dt * r.speed

	var fired []Event
	for _, e := range r.seq.Events {
		if e.Timestamp > prevCursor && e.Timestamp <= r.cursor {
			fired = append(fired, e)
		}
	}

	if r.cursor >= r.seq.Duration {
		if r.loop {
			r.cursor -= r.seq.Duration
		} else {
			r.playing = false
		}
	}
	return fired
}

func (r *Recorder) Play(seq Sequence, loop bool, speed float32) {
	r.seq = seq
	r.playing = true
	r.cursor = 0
	r.loop = loop
	if speed <= 0 {
		speed = 1
	}
	r.speed = speed
}

func (r *Recorder) Pause()  { r.playing = false }
func (r *Recorder) Resume() { r.playing = true }

// Export/Import round-trip a Sequence as JSON (spec §6.3).
func Export(seq Sequence) ([]byte, error) { return json.Marshal(seq) }

func Import(data []byte) (Sequence, error) {
	var seq Sequence
	err := json.Unmarshal(data, &seq)
	return seq, err
}

// GestureTriggerPayload/MacroChangePayload etc. are the payload shapes
// recorded alongside each EventType; kept as plain structs so callers don't
// need to hand-build json.RawMessage.
type GestureTriggerPayload struct {
	Kind      core.GestureKind `json:"kind"`
	Intensity float32          `json:"intensity"`
}

type MacroChangePayload struct {
	Macro core.MacroState `json:"macro"`
}

type PersonalityChangePayload struct {
	Kind core.PersonalityKind `json:"kind"`
}

type FormationChangePayload struct {
	Formation core.Formation `json:"formation"`
}
