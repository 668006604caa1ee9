package dtnsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueueOrdersByTime(t *testing.T) {
	q := NewEventQueue()
	q.Push(&Event{Time: 3})
	q.Push(&Event{Time: 1})
	q.Push(&Event{Time: 2})

	times := []float64{}
	for q.Len() > 0 {
		ev, ok := q.Pop()
		require.True(t, ok)
		times = append(times, ev.Time)
	}
	assert.Equal(t, []float64{1, 2, 3}, times)
}

func TestEventQueueFIFOTieBreak(t *testing.T) {
	q := NewEventQueue()
	q.Push(&Event{Time: 1, From: 10})
	q.Push(&Event{Time: 1, From: 20})
	q.Push(&Event{Time: 1, From: 30})

	var order []HostID
	for q.Len() > 0 {
		ev, _ := q.Pop()
		order = append(order, ev.From)
	}
	assert.Equal(t, []HostID{10, 20, 30}, order, "equal-time events must pop in insertion order")
}

func TestEventQueuePeekDoesNotRemove(t *testing.T) {
	q := NewEventQueue()
	q.Push(&Event{Time: 5})
	ev, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 5.0, ev.Time)
	assert.Equal(t, 1, q.Len())
}
