package kinetic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfield/mpm/internal/core"
)

func TestRecorder_RecordsEventsRelativeToStart(t *testing.T) {
	r := NewRecorder()
	r.StartRecording("test-take")
	r.Advance(1.0)
	r.Record(EventGestureTrigger, GestureTriggerPayload{Kind: core.GestureAttack, Intensity: 0.9})
	r.Advance(1.0)
	seq := r.StopRecording()

	require.Len(t, seq.Events, 1)
	assert.InDelta(t, 1.0, seq.Events[0].Timestamp, 0.01)
	assert.InDelta(t, 2.0, seq.Duration, 0.01)
	assert.NotEmpty(t, seq.ID)
}

func TestRecorder_ExportImportRoundTrips(t *testing.T) {
	r := NewRecorder()
	r.StartRecording("roundtrip")
	r.Record(EventMacroChange, MacroChangePayload{Macro: core.MacroState{Energy: 0.5}})
	r.Advance(0.5)
	seq := r.StopRecording()

	data, err := Export(seq)
	require.NoError(t, err)

	decoded, err := Import(data)
	require.NoError(t, err)
	assert.Equal(t, seq.ID, decoded.ID)
	assert.Equal(t, seq.Name, decoded.Name)
	assert.Len(t, decoded.Events, 1)
}

func TestRecorder_PlaybackFiresEventsWhenCursorCrossesTimestamp(t *testing.T) {
	r := NewRecorder()
	seq := Sequence{
		ID:       "seq-1",
		Duration: 2.0,
		Events: []Event{
			{Type: EventGestureTrigger, Timestamp: 0.5},
			{Type: EventGestureTrigger, Timestamp: 1.5},
		},
	}
	r.Play(seq, false, 1.0)

	fired := r.Advance(0.6)
	require.Len(t, fired, 1)

	fired = r.Advance(0.6)
	assert.Empty(t, fired)

	fired = r.Advance(0.6)
	require.Len(t, fired, 1)
}

func TestRecorder_LoopWrapsCursorAtDuration(t *testing.T) {
	r := NewRecorder()
	seq := Sequence{ID: "loop-1", Duration: 1.0}
	r.Play(seq, true, 1.0)
	r.Advance(1.5)
	assert.True(t, r.playing)
	assert.InDelta(t, 0.5, r.cursor, 0.01)
}
