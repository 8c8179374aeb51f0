package wire

// Resource caps from spec.md §5.
const (
	ReliableQueueSize     = 16
	ReliableMaxPayload    = 512
	ReliableRetransmitMS  = 2000
	ReliableMaxRetries    = 8
	OutboxCapacity        = 512
)

// ReliableEntry tracks one outbound reliable message awaiting ACK.
type ReliableEntry struct {
	Payload  []byte
	Seq      uint16
	SendTime int64
	Retries  int
	Active   bool
}

// ReliableQueue is a fixed ring of up to ReliableQueueSize in-flight
// reliable messages for one peer. An entry is freed only by a matching ACK
// or by exceeding ReliableMaxRetries (which the caller treats as a
// peer-teardown signal).
type ReliableQueue struct {
	entries [ReliableQueueSize]ReliableEntry
	count   int
}

// Add records a newly sent reliable message. Returns false if the queue is
// full.
func (q *ReliableQueue) Add(payload []byte, seq uint16, nowMS int64) bool {
	for i := range q.entries {
		e := &q.entries[i]
		if e.Active {
			continue
		}
		e.Payload = append(e.Payload[:0], payload...)
		e.Seq = seq
		e.SendTime = nowMS
		e.Retries = 0
		e.Active = true
		q.count++
		return true
	}
	return false
}

// Ack removes the entry matching seq, if any.
func (q *ReliableQueue) Ack(seq uint16) bool {
	for i := range q.entries {
		e := &q.entries[i]
		if e.Active && e.Seq == seq {
			e.Active = false
			q.count--
			return true
		}
	}
	return false
}

// CheckRetransmit scans for the first entry older than ReliableRetransmitMS
// since its last send, bumps its retry counter and timestamp, and returns
// its index. Returns -1 if nothing is due.
func (q *ReliableQueue) CheckRetransmit(nowMS int64) int {
	for i := range q.entries {
		e := &q.entries[i]
		if !e.Active {
			continue
		}
		if nowMS-e.SendTime >= ReliableRetransmitMS {
			e.Retries++
			e.SendTime = nowMS
			return i
		}
	}
	return -1
}

// Entry exposes the entry at idx (as returned by CheckRetransmit).
func (q *ReliableQueue) Entry(idx int) *ReliableEntry { return &q.entries[idx] }

// TimedOut reports whether any active entry has exceeded ReliableMaxRetries,
// meaning the owning peer should be torn down.
func (q *ReliableQueue) TimedOut() bool {
	for i := range q.entries {
		if q.entries[i].Active && q.entries[i].Retries >= ReliableMaxRetries {
			return true
		}
	}
	return false
}

// Count returns the number of active (unacknowledged) entries.
func (q *ReliableQueue) Count() int { return q.count }

// Outbox accumulates multiple encoded messages (each already framed with
// its own type/length header, no envelope) destined for a single peer, and
// coalesces them into one datagram on Flush.
type Outbox struct {
	buf   []byte
	count int
}

// Queue appends a pre-encoded message body to the outbox.
func (o *Outbox) Queue(msg []byte) {
	o.buf = append(o.buf, msg...)
	o.count++
}

// Empty reports whether there is nothing queued.
func (o *Outbox) Empty() bool { return o.count == 0 }

// Flush returns one complete datagram (with envelope header) containing
// every queued message, then clears the outbox.
func (o *Outbox) Flush(direction byte) []byte {
	if o.count == 0 {
		return nil
	}
	out := WrapDatagram(direction, o.count, o.buf)
	o.buf = o.buf[:0]
	o.count = 0
	return out
}
