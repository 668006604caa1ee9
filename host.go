package dtnsim

// host.go is the passive aggregate (component F): a host owns an address,
// a location, its interfaces, its router and its message buffer. Host
// itself does no forwarding logic -- Update calls Interface.Update then
// Router.Tick in that fixed order, because the router must see this
// tick's freshly recomputed connection set before it decides what to
// forward on.

// Buffer is a host's bounded message store. Admission is FIFO-eviction:
// when a new message would push the byte sum over capacity, the oldest
// messages are evicted (oldest by insertion order) until it fits; a
// message whose own size exceeds capacity is refused outright.
type Buffer struct {
	Capacity int
	order    []MessageID
	byID     map[MessageID]Message
	bytes    int
}

// NewBuffer constructs an empty buffer of the given byte capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{Capacity: capacity, byID: make(map[MessageID]Message)}
}

// Has reports whether the buffer already holds a message with this id.
func (b *Buffer) Has(id MessageID) bool {
	_, ok := b.byID[id]
	return ok
}

// Get returns the stored message by id.
func (b *Buffer) Get(id MessageID) (Message, bool) {
	m, ok := b.byID[id]
	return m, ok
}

// All returns every stored message, oldest first.
func (b *Buffer) All() []Message {
	out := make([]Message, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.byID[id])
	}
	return out
}

// Admit stores m, evicting the oldest messages (FIFO) as needed to make
// room. Returns DeniedNoSpace if m's own size exceeds capacity outright, or
// DeniedOld if the buffer already holds this message id.
func (b *Buffer) Admit(m Message) AdmitCode {
	if b.Has(m.ID) {
		return DeniedOld
	}
	if m.Size > b.Capacity {
		return DeniedNoSpace
	}
	for b.bytes+m.Size > b.Capacity && len(b.order) > 0 {
		oldest := b.order[0]
		b.order = b.order[1:]
		b.bytes -= b.byID[oldest].Size
		delete(b.byID, oldest)
	}
	b.order = append(b.order, m.ID)
	b.byID[m.ID] = m
	b.bytes += m.Size
	return RcvOK
}

// updateCopies overwrites the stored copy's spray-and-wait budget in place.
func (b *Buffer) updateCopies(id MessageID, copies int) {
	m, ok := b.byID[id]
	if !ok {
		return
	}
	m.CopiesLeft = copies
	b.byID[id] = m
}

// Evict removes a message from the buffer, if present.
func (b *Buffer) Evict(id MessageID) {
	m, ok := b.byID[id]
	if !ok {
		return
	}
	delete(b.byID, id)
	b.bytes -= m.Size
	for i, other := range b.order {
		if other == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Host is the passive aggregate owning an address, a location, one or more
// interfaces, a router and a buffer.
type Host struct {
	ID       HostID
	Location Coordinate
	Intfs    []InterfaceID
	Buf      *Buffer

	cluster   ClusterID
	hasCluster bool

	rtr *Router
}

// NewHost constructs a host at loc, backed by a buffer of bufCapacity
// bytes and routed by rtr.
func NewHost(id HostID, loc Coordinate, bufCapacity int, rtr *Router) *Host {
	return &Host{ID: id, Location: loc, Buf: NewBuffer(bufCapacity), rtr: rtr}
}

// SetCluster records the cluster cell this host is confined to.
func (h *Host) SetCluster(c ClusterID) {
	h.cluster = c
	h.hasCluster = true
}

// Cluster returns the host's cluster assignment, if any.
func (h *Host) Cluster() (ClusterID, bool) {
	return h.cluster, h.hasCluster
}

// AddInterface attaches an interface to this host.
func (h *Host) AddInterface(id InterfaceID) {
	h.Intfs = append(h.Intfs, id)
}

func (h *Host) router() *Router {
	return h.rtr
}

// Update advances one tick: interfaces first (so their connection sets are
// current), then the router (so it can act on those connections).
func (h *Host) Update(w *World, now float64) {
	for _, id := range h.Intfs {
		w.Interfaces[id].Update(w, now)
	}
	h.rtr.Tick(w, h, now)
}

// ReceiveMessage delegates admission to the host's router, returning one of
// RcvOK, DeniedOld, DeniedNoSpace, DeniedUnreachable, TryLater.
func (h *Host) ReceiveMessage(w *World, m Message, from HostID) AdmitCode {
	return h.rtr.receive(w, h, m, from)
}
