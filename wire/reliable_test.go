package wire

import "testing"

func TestReliableQueueAddAndAck(t *testing.T) {
	var q ReliableQueue
	if !q.Add([]byte{1, 2, 3}, 42, 1000) {
		t.Fatal("expected Add to succeed on an empty queue")
	}
	if q.Count() != 1 {
		t.Fatalf("expected count 1, got %d", q.Count())
	}
	if !q.Ack(42) {
		t.Fatal("expected Ack to find the matching entry")
	}
	if q.Count() != 0 {
		t.Fatalf("expected count 0 after ack, got %d", q.Count())
	}
}

func TestReliableQueueAckIgnoresUnknownSeq(t *testing.T) {
	var q ReliableQueue
	q.Add([]byte{1}, 1, 1000)
	if q.Ack(999) {
		t.Fatal("ack of an unknown sequence should report false")
	}
	if q.Count() != 1 {
		t.Fatalf("unmatched ack must not remove the pending entry")
	}
}

func TestReliableQueueFillsUpToCapacity(t *testing.T) {
	var q ReliableQueue
	for i := 0; i < ReliableQueueSize; i++ {
		if !q.Add([]byte{byte(i)}, uint16(i), 1000) {
			t.Fatalf("Add %d should have succeeded within capacity", i)
		}
	}
	if q.Add([]byte{0xFF}, 999, 1000) {
		t.Fatal("Add should fail once the queue is full")
	}
}

func TestReliableQueueCheckRetransmitRespectsInterval(t *testing.T) {
	var q ReliableQueue
	q.Add([]byte{1}, 7, 1000)

	if idx := q.CheckRetransmit(1000 + ReliableRetransmitMS - 1); idx != -1 {
		t.Fatalf("expected no retransmit due yet, got index %d", idx)
	}
	idx := q.CheckRetransmit(1000 + ReliableRetransmitMS)
	if idx < 0 {
		t.Fatal("expected a retransmit to be due")
	}
	if q.Entry(idx).Retries != 1 {
		t.Fatalf("expected retry counter to increment, got %d", q.Entry(idx).Retries)
	}
}

func TestReliableQueueTimedOutAtMaxRetries(t *testing.T) {
	var q ReliableQueue
	q.Add([]byte{1}, 1, 0)
	now := int64(0)
	for i := 0; i < ReliableMaxRetries; i++ {
		now += ReliableRetransmitMS
		q.CheckRetransmit(now)
	}
	if !q.TimedOut() {
		t.Fatal("expected the queue to report a timed-out entry")
	}
}

func TestOutboxFlushCoalescesQueuedMessagesIntoOneDatagram(t *testing.T) {
	var o Outbox
	if !o.Empty() {
		t.Fatal("a fresh outbox should be empty")
	}
	o.Queue(AppendUnreliable(nil, []byte{0xAA}))
	o.Queue(AppendUnreliable(nil, []byte{0xBB, 0xCC}))

	datagram := o.Flush(1)
	if !o.Empty() {
		t.Fatal("Flush should clear the outbox")
	}

	pkt, err := ParsePacket(datagram)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if pkt.Direction != 1 {
		t.Fatalf("expected direction byte 1, got %d", pkt.Direction)
	}
	if len(pkt.Messages) != 2 {
		t.Fatalf("expected 2 coalesced messages, got %d", len(pkt.Messages))
	}
}

func TestOutboxFlushOnEmptyReturnsNil(t *testing.T) {
	var o Outbox
	if out := o.Flush(0); out != nil {
		t.Fatalf("expected nil from flushing an empty outbox, got %v", out)
	}
}
