package dtnsim

// connection.go is the chunked byte transfer (component E): a PDU-capped
// transfer between two interfaces, driven by per-tick speed updates. It
// plays the same role the teacher's flow-rate bookkeeping (flow.go's
// ChangeRate/bgfPcktArrivals, net.go's availBndwdth) plays for a wired
// flow, but the rate here comes from the wireless path-loss model instead
// of a configured link capacity, and bytes move in discrete PATH_MTU chunks
// rather than as a continuous rate.

// Connection is one oriented, transient link between two interfaces. Two
// Connection records represent one physical radio link, one per direction;
// they are created together and torn down together by the owning World.
type Connection struct {
	ID       ConnectionID
	FromIntf InterfaceID
	ToIntf   InterfaceID

	opened     float64
	lastUpdate float64

	msg        *Message // in-flight message, nil when idle
	msgSize    int
	msgSent    int
	fullChunks int
	tailBytes  int
	chunksSent int
}

func newConnection(id ConnectionID, from, to InterfaceID, now float64) *Connection {
	return &Connection{ID: id, FromIntf: from, ToIntf: to, opened: now, lastUpdate: now}
}

// Busy reports whether a transfer is currently in flight.
func (c *Connection) Busy() bool {
	return c.msg != nil
}

// StartTransfer replicates m (full-size copy, per the copy-on-forward
// rule), offers it for admission to the destination host's router, and if
// accepted, splits m's size into full PATH_MTU chunks plus an optional
// tail chunk and arms the connection for progress accounting.
//
// Exactly one in-flight message per connection is allowed: calling
// StartTransfer while one is already in flight is a ScenarioError, not a
// normal admission failure.
func (c *Connection) StartTransfer(w *World, now float64, m Message) (AdmitCode, error) {
	if c.Busy() {
		return TryLater, NewScenarioError("Connection.StartTransfer", "msgOnFly must be nil")
	}

	toHost := w.Interfaces[c.ToIntf].Host
	fromHost := w.Interfaces[c.FromIntf].Host
	clone := m.Clone(toHost)

	code := w.Hosts[toHost].ReceiveMessage(w, clone, fromHost)
	if code != RcvOK {
		return code, nil
	}

	c.msg = &clone
	c.msgSize = clone.Size
	c.msgSent = 0
	c.chunksSent = 0
	c.fullChunks, c.tailBytes = chunkPlan(clone.Size)
	c.lastUpdate = now
	return RcvOK, nil
}

// Update recomputes the instantaneous link rate as the minimum of what
// each side's radio would quote for the current distance, spends the
// resulting time*rate byte budget on whole PATH_MTU chunks (and, once they
// are exhausted, on the tail chunk if one remains and fits), and finalizes
// delivery with the destination router once msgSent reaches msgSize.
func (c *Connection) Update(w *World, now float64) {
	dt := now - c.lastUpdate
	c.lastUpdate = now
	if !c.Busy() || dt <= 0 {
		return
	}

	rate := c.Speed(w)
	budget := rate * dt

	for budget >= float64(PathMTU) && c.chunksSent < c.fullChunks {
		budget -= float64(PathMTU)
		c.msgSent += PathMTU
		c.chunksSent++
	}
	if c.chunksSent == c.fullChunks && c.tailBytes > 0 && budget >= float64(c.tailBytes) && c.msgSent < c.msgSize {
		c.msgSent += c.tailBytes
	}

	if c.msgSent >= c.msgSize {
		c.finishTransfer(w, now)
	}
}

func (c *Connection) finishTransfer(w *World, now float64) {
	toHost := w.Interfaces[c.ToIntf].Host
	m := *c.msg
	c.msg = nil
	c.msgSize = 0
	c.msgSent = 0
	c.fullChunks = 0
	c.tailBytes = 0
	c.chunksSent = 0
	w.Hosts[toHost].router().finalizeDelivery(w, m, now)
}

// Speed returns the currently computed link rate: the minimum of the two
// endpoints' quoted bitrate for the current distance.
func (c *Connection) Speed(w *World) float64 {
	from := w.Interfaces[c.FromIntf]
	to := w.Interfaces[c.ToIntf]
	d := w.Distance(from.Host, to.Host)
	fromRate := Bitrate(d, from.Range)
	toRate := Bitrate(d, to.Range)
	if fromRate < toRate {
		return fromRate
	}
	return toRate
}

// RemainingBytes returns max(0, msgSize - msgSent).
func (c *Connection) RemainingBytes() int {
	rem := c.msgSize - c.msgSent
	if rem < 0 {
		return 0
	}
	return rem
}
