package timetravel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntentQueueConsumesOnce(t *testing.T) {
	var q IntentQueue
	q.Push(Intent{Cube: 0, Kind: IntentRecord})
	q.Push(Intent{Cube: 0, Kind: IntentRecord})

	assert.True(t, q.Has(0, IntentRecord))
	assert.True(t, q.Take(0, IntentRecord))
	assert.False(t, q.Take(0, IntentRecord), "duplicates collapse")
	assert.Empty(t, q.Drain())
}

func TestIntentQueueDrainReturnsUnconsumed(t *testing.T) {
	var q IntentQueue
	q.Push(Intent{Cube: 0, Kind: IntentRewind})
	q.Push(Intent{Cube: 1, Kind: IntentRewind})
	q.Take(0, IntentRewind)

	assert.Equal(t, []Intent{{Cube: 1, Kind: IntentRewind}}, q.Drain())
	assert.False(t, q.AnyPending(IntentRewind))
	assert.Empty(t, q.Drain())
}

func TestIntentQueueRemoveCubeShiftsIndices(t *testing.T) {
	var q IntentQueue
	q.Push(Intent{Cube: 0, Kind: IntentRecord})
	q.Push(Intent{Cube: 1, Kind: IntentRecord})
	q.Push(Intent{Cube: 2, Kind: IntentReplay})

	q.removeCube(1)

	assert.True(t, q.Has(0, IntentRecord))
	assert.False(t, q.Has(1, IntentRecord))
	assert.True(t, q.Has(1, IntentReplay))
}

func TestIntentKindString(t *testing.T) {
	assert.Equal(t, "record", IntentRecord.String())
	assert.Equal(t, "rewind", IntentRewind.String())
	assert.Equal(t, "replay", IntentReplay.String())
}
