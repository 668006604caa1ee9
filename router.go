package dtnsim

// router.go implements the forwarding policy (component G): epidemic
// flooding and binary spray-and-wait, dispatched from a single tagged
// Router value rather than through a Go interface -- the "static
// polymorphism over routers" design note calls for a switch on a Kind
// discriminant on the scheduler's hot per-tick path, not a vtable call.

// RouterKind selects a Router's forwarding policy.
type RouterKind int

const (
	RouterEpidemic RouterKind = iota
	RouterSprayAndWait
)

// Router holds one host's forwarding policy plus the bookkeeping that
// policy needs. RetainAfterDelivery controls whether a delivered message is
// evicted from the destination's buffer; the original left this as a TODO
// and always retained, causing buffer bloat under epidemic routing -- here
// it is an explicit, defaulted-to-retain setting instead of dead code.
type Router struct {
	Kind               RouterKind
	InitialCopies      int // spray-and-wait initial L, ignored by epidemic
	RetainAfterDelivery bool

	onDeliver func(w *World, m Message, now float64)
	onForward func(w *World, m Message, from, to HostID, now float64)
	onDrop    func(w *World, m Message, host HostID, code AdmitCode, now float64)
}

// NewEpidemicRouter builds an epidemic router. retain controls whether
// delivered messages stay in the destination buffer (the "retain" default
// matches the original's observed, if undocumented, behavior).
func NewEpidemicRouter(retain bool) *Router {
	return &Router{Kind: RouterEpidemic, RetainAfterDelivery: retain}
}

// NewSprayAndWaitRouter builds a binary spray-and-wait router with an
// initial copy budget L.
func NewSprayAndWaitRouter(initialCopies int, retain bool) *Router {
	return &Router{Kind: RouterSprayAndWait, InitialCopies: initialCopies, RetainAfterDelivery: retain}
}

// OnEvents registers the reporter callbacks a Router invokes on delivery,
// forward, and drop. Any of the three may be nil.
func (r *Router) OnEvents(onDeliver func(*World, Message, float64),
	onForward func(*World, Message, HostID, HostID, float64),
	onDrop func(*World, Message, HostID, AdmitCode, float64)) {
	r.onDeliver = onDeliver
	r.onForward = onForward
	r.onDrop = onDrop
}

// receive is Host.ReceiveMessage's delegate: admit m into host's buffer if
// there is room and it isn't already held.
func (r *Router) receive(w *World, host *Host, m Message, from HostID) AdmitCode {
	code := host.Buf.Admit(m)
	if code != RcvOK && r.onDrop != nil {
		r.onDrop(w, m, host.ID, code, w.Now)
	}
	return code
}

// finalizeDelivery is called by Connection once a byte transfer completes.
// If the message reached its final destination it is counted as delivered
// (and, unless RetainAfterDelivery is false, kept in the buffer regardless
// -- eviction happens only through the normal FIFO admission pressure).
func (r *Router) finalizeDelivery(w *World, m Message, now float64) {
	if r.onForward != nil {
		hop := m.HopPath()
		r.onForward(w, m, hop[len(hop)-2], hop[len(hop)-1], now)
	}
	if m.Delivered() {
		if r.onDeliver != nil {
			r.onDeliver(w, m, now)
		}
		if !r.RetainAfterDelivery {
			w.Hosts[m.To].Buf.Evict(m.ID)
		}
	}
}

// Tick drives one round of forwarding decisions for host.
func (r *Router) Tick(w *World, host *Host, now float64) {
	switch r.Kind {
	case RouterSprayAndWait:
		r.tickSprayAndWait(w, host, now)
	default:
		r.tickEpidemic(w, host, now)
	}
}

// forEachOpenConnection calls fn once per (peer, connection) pair currently
// open on any of host's interfaces, skipping connections already busy with
// a transfer.
func forEachOpenConnection(w *World, host *Host, fn func(peer HostID, conn *Connection)) {
	for _, intfID := range host.Intfs {
		intf := w.Interfaces[intfID]
		for _, peer := range intf.Peers() {
			connID, ok := intf.ConnectedTo(peer)
			if !ok {
				continue
			}
			conn := w.Connections[connID]
			if conn.Busy() {
				continue
			}
			fn(peer, conn)
		}
	}
}

// tickEpidemic replicates every buffered message not already held by the
// peer, one new transfer per idle connection per tick.
func (r *Router) tickEpidemic(w *World, host *Host, now float64) {
	forEachOpenConnection(w, host, func(peer HostID, conn *Connection) {
		peerBuf := w.Hosts[peer].Buf
		for _, m := range host.Buf.All() {
			if peerBuf.Has(m.ID) {
				continue
			}
			code, err := conn.StartTransfer(w, now, m)
			if err != nil {
				panic(err) // ScenarioError: precondition violated, fatal
			}
			if code == RcvOK {
				return
			}
		}
	})
}

// tickSprayAndWait forwards binary-halved copy budgets: while a message
// still carries more than one copy, half goes to the peer (rounded down)
// and half stays home (rounded up); once a message is down to its last
// copy it is only ever handed directly to its destination.
func (r *Router) tickSprayAndWait(w *World, host *Host, now float64) {
	forEachOpenConnection(w, host, func(peer HostID, conn *Connection) {
		for _, m := range host.Buf.All() {
			if w.Hosts[peer].Buf.Has(m.ID) {
				continue
			}
			copies := m.CopiesLeft
			if copies <= 0 {
				copies = r.InitialCopies
			}
			if copies <= 1 && peer != m.To {
				continue
			}

			keep := (copies + 1) / 2
			give := copies / 2
			if copies <= 1 {
				keep, give = 0, 1 // last copy, handed straight to the destination
			}

			outgoing := m
			outgoing.CopiesLeft = give
			code, err := conn.StartTransfer(w, now, outgoing)
			if err != nil {
				panic(err)
			}
			if code != RcvOK {
				continue
			}
			if keep > 0 {
				host.Buf.updateCopies(m.ID, keep)
			} else {
				host.Buf.Evict(m.ID)
			}
			return
		}
	})
}
