package dtnsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoHostWorld builds two hosts within radio range of each other, each with
// one interface and no cluster restriction, ready to tick.
func twoHostWorld(t *testing.T, r0, r1 *Router) (*World, *Host, *Host) {
	t.Helper()
	w := newTestWorld()
	h0 := NewHost(0, Coordinate{X: 1, Y: 1}, 1<<20, r0)
	h1 := NewHost(1, Coordinate{X: 2, Y: 1}, 1<<20, r1)
	w.AddHost(h0)
	w.AddHost(h1)

	i0 := NewInterface(1, 0, 10, 0, ModeNone, 0)
	i1 := NewInterface(2, 1, 10, 0, ModeNone, 0)
	w.AddInterface(i0)
	w.AddInterface(i1)
	h0.AddInterface(1)
	h1.AddInterface(2)
	return w, h0, h1
}

func TestEpidemicRouterReplicatesToInRangePeer(t *testing.T) {
	w, h0, h1 := twoHostWorld(t, NewEpidemicRouter(true), NewEpidemicRouter(true))

	m := NewMessage(w.nextMessageID(), 0, 1, 50, 0, 0)
	h0.Buf.Admit(m)

	// First tick: interfaces connect, router starts the transfer (which
	// admits into the destination buffer immediately).
	h0.Update(w, 1.0)

	assert.True(t, h1.Buf.Has(m.ID), "peer must receive the replicated message")
	assert.True(t, h0.Buf.Has(m.ID), "epidemic routing never removes the sender's own copy")
}

func TestEpidemicRouterDoesNotReplicateWhatPeerAlreadyHas(t *testing.T) {
	w, h0, h1 := twoHostWorld(t, NewEpidemicRouter(true), NewEpidemicRouter(true))

	m := NewMessage(w.nextMessageID(), 0, 1, 50, 0, 0)
	h0.Buf.Admit(m)
	h1.Buf.Admit(m) // peer already holds it

	h0.Update(w, 1.0)

	// No connection should have been used for a retransmit; the connection
	// stays idle since forEachOpenConnection's only candidate message is
	// already held by the peer.
	intf := w.Interfaces[1]
	connID, ok := intf.ConnectedTo(1)
	require.True(t, ok)
	assert.False(t, w.Connections[connID].Busy())
}

func TestSprayAndWaitHalvesCopyBudget(t *testing.T) {
	rtr := NewSprayAndWaitRouter(4, true)
	w, h0, h1 := twoHostWorld(t, rtr, NewSprayAndWaitRouter(4, true))

	m := NewMessage(w.nextMessageID(), 0, 1, 50, 0, 0)
	m.CopiesLeft = 4
	h0.Buf.Admit(m)

	h0.Update(w, 1.0)

	got, ok := h0.Buf.Get(m.ID)
	require.True(t, ok, "sender keeps its half of the copy budget")
	assert.Equal(t, 2, got.CopiesLeft, "4 copies split 2/2")

	assert.True(t, h1.Buf.Has(m.ID))
	peerCopy, _ := h1.Buf.Get(m.ID)
	assert.Equal(t, 2, peerCopy.CopiesLeft)
}

func TestSprayAndWaitLastCopyGoesOnlyToDestination(t *testing.T) {
	rtr := NewSprayAndWaitRouter(4, true)
	w, h0, _ := twoHostWorld(t, rtr, NewSprayAndWaitRouter(4, true))

	// A third, non-destination host should never receive the last copy.
	h2 := NewHost(2, Coordinate{X: 1.5, Y: 1}, 1<<20, NewSprayAndWaitRouter(4, true))
	w.AddHost(h2)
	i2 := NewInterface(3, 2, 10, 0, ModeNone, 0)
	w.AddInterface(i2)
	h2.AddInterface(3)

	m := NewMessage(w.nextMessageID(), 0, 1, 50, 0, 0)
	m.CopiesLeft = 1
	h0.Buf.Admit(m)

	h0.Update(w, 1.0)

	assert.False(t, h2.Buf.Has(m.ID), "last copy must not be handed to a non-destination peer")
}

func TestRouterReceiveReportsDenialsToReporterHook(t *testing.T) {
	rtr := NewEpidemicRouter(true)
	var drops []AdmitCode
	rtr.OnEvents(nil, nil, func(w *World, m Message, host HostID, code AdmitCode, now float64) {
		drops = append(drops, code)
	})

	w := newTestWorld()
	h := NewHost(5, Coordinate{X: 0, Y: 0}, 10, rtr)
	w.AddHost(h)

	m := NewMessage(1, 0, 5, 100, 0, 0) // bigger than the 10-byte buffer
	code := h.ReceiveMessage(w, m, 0)

	assert.Equal(t, DeniedNoSpace, code)
	require.Len(t, drops, 1)
	assert.Equal(t, DeniedNoSpace, drops[0])
}
