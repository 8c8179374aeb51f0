package wire

import "errors"

// Transport message type bytes (the first byte of each message inside a
// decrypted datagram's envelope).
const (
	MsgKeepalive = 0x00
	MsgAck       = 0x01
	MsgConnect   = 0x03
	MsgConnData  = 0x04
	MsgConnAck   = 0x05
	MsgDisconnect = 0x06
	MsgReliable  = 0x32
)

// Reliable message flag bits (the "flags" byte of a MsgReliable message).
const (
	ReliableFlagNeedsAck = 0x80
	ReliableFlagFragment = 0x20
)

// Direction bytes: 0x01 is server->client; 0x01+slot is client->server (so
// wire slot 1 sends 0x02); 0xFF is the initial handshake pre-assignment.
const (
	DirServer       = 0x01
	DirHandshake    = 0xFF
)

// ClientDirection returns the direction byte a client at the given wire
// slot (1..6) uses on outbound datagrams.
func ClientDirection(wireSlot int) byte { return byte(DirServer + wireSlot) }

var (
	ErrTruncated    = errors.New("wire: truncated envelope")
	ErrBadMessage   = errors.New("wire: malformed message")
)

// Message is one parsed entry from a datagram's envelope.
type Message struct {
	Type    byte
	Seq     uint16
	Flags   byte
	Payload []byte
}

// Packet is a fully parsed datagram: direction byte plus its messages.
type Packet struct {
	Direction byte
	Messages  []Message
}

// ParsePacket splits a decrypted datagram into its envelope header and
// constituent messages: [direction:1][count:1][msg]{count}. A malformed
// message anywhere in the stream stops parsing and discards only the
// remainder — messages already parsed are returned alongside the error.
func ParsePacket(data []byte) (Packet, error) {
	if len(data) < 2 {
		return Packet{}, ErrTruncated
	}
	pkt := Packet{Direction: data[0]}
	count := int(data[1])
	pos := 2

	for i := 0; i < count && pos < len(data); i++ {
		msgType := data[pos]
		switch msgType {
		case MsgAck:
			if pos+4 > len(data) {
				return pkt, ErrTruncated
			}
			pkt.Messages = append(pkt.Messages, Message{
				Type:  MsgAck,
				Seq:   uint16(data[pos+1]),
				Flags: data[pos+3],
			})
			pos += 4
		case MsgReliable:
			if pos+2 > len(data) {
				return pkt, ErrTruncated
			}
			totalLen := int(data[pos+1])
			if totalLen < 5 || pos+totalLen > len(data) {
				return pkt, ErrBadMessage
			}
			pkt.Messages = append(pkt.Messages, Message{
				Type:    MsgReliable,
				Flags:   data[pos+2],
				Seq:     uint16(data[pos+3])<<8 | uint16(data[pos+4]),
				Payload: data[pos+5 : pos+totalLen],
			})
			pos += totalLen
		default:
			if pos+2 > len(data) {
				return pkt, ErrTruncated
			}
			totalLen := int(data[pos+1])
			if totalLen < 2 || pos+totalLen > len(data) {
				return pkt, ErrBadMessage
			}
			pkt.Messages = append(pkt.Messages, Message{
				Type:    msgType,
				Payload: data[pos+2 : pos+totalLen],
			})
			pos += totalLen
		}
	}
	return pkt, nil
}

// BuildUnreliable wraps payload as a single unreliable (KEEPALIVE-typed,
// i.e. plain game-data) message in its own datagram.
func BuildUnreliable(direction byte, payload []byte) []byte {
	totalMsgLen := 2 + len(payload)
	out := make([]byte, 2+totalMsgLen)
	out[0] = direction
	out[1] = 1
	out[2] = 0x00
	out[3] = byte(totalMsgLen)
	copy(out[4:], payload)
	return out
}

// BuildReliable wraps payload as a single reliable message (flags=0x80,
// needs ack) in its own datagram.
func BuildReliable(direction byte, payload []byte, seq uint16) []byte {
	totalMsgLen := 5 + len(payload)
	out := make([]byte, 2+totalMsgLen)
	out[0] = direction
	out[1] = 1
	out[2] = MsgReliable
	out[3] = byte(totalMsgLen)
	out[4] = ReliableFlagNeedsAck
	out[5] = byte(seq >> 8)
	out[6] = byte(seq)
	copy(out[7:], payload)
	return out
}

// BuildAck wraps a single ACK message in its own datagram. counter is the
// high byte of the acknowledged sequence number.
func BuildAck(direction byte, counter byte, flags byte) []byte {
	return []byte{direction, 1, MsgAck, counter, 0x00, flags}
}

// AppendReliable appends the encoded bytes of a single reliable message (no
// envelope header) to dst, for use by an outbox that coalesces several
// messages into one datagram.
func AppendReliable(dst []byte, payload []byte, seq uint16, flags byte) []byte {
	dst = append(dst, MsgReliable, byte(5+len(payload)), flags, byte(seq>>8), byte(seq))
	return append(dst, payload...)
}

// AppendUnreliable appends one unreliable message (no envelope header) to
// dst.
func AppendUnreliable(dst []byte, payload []byte) []byte {
	dst = append(dst, 0x00, byte(2+len(payload)))
	return append(dst, payload...)
}

// AppendTyped appends one message of an arbitrary type byte (no envelope
// header) to dst, using the generic [type][totalLen][payload] layout. Used
// for message types outside the ACK/RELIABLE special cases, such as the
// CONNECT response during the handshake.
func AppendTyped(dst []byte, msgType byte, payload []byte) []byte {
	dst = append(dst, msgType, byte(2+len(payload)))
	return append(dst, payload...)
}

// AppendAck appends one ACK message (no envelope header) to dst.
func AppendAck(dst []byte, counter byte, flags byte) []byte {
	return append(dst, MsgAck, counter, 0x00, flags)
}

// WrapDatagram prefixes a run of already-appended messages with the
// envelope header [direction][count].
func WrapDatagram(direction byte, count int, messages []byte) []byte {
	out := make([]byte, 0, 2+len(messages))
	out = append(out, direction, byte(count))
	return append(out, messages...)
}

// FragmentBufSize is the reassembly scratch region's capacity per peer
// (spec.md §5 resource caps).
const FragmentBufSize = 2048

// FragmentBuffer reassembles a fragmented reliable message. The first
// fragment's payload byte 0 holds the total fragment count; subsequent
// fragments' byte 0 is unused for ordering (fragments are trusted to
// arrive in sequence) and the rest of each payload is appended.
type FragmentBuffer struct {
	active        bool
	buf           []byte
	fragsExpected int
	fragsReceived int
}

// Receive folds one fragment's payload into the buffer. It returns
// (reassembled, true) once the final fragment arrives, (nil, false) while
// more are expected, and resets the buffer on any malformed input.
func (f *FragmentBuffer) Receive(payload []byte) ([]byte, bool, error) {
	if len(payload) < 1 {
		return nil, false, ErrBadMessage
	}

	if !f.active {
		f.active = true
		f.fragsExpected = int(payload[0])
		f.fragsReceived = 1
		f.buf = f.buf[:0]

		if f.fragsExpected < 2 {
			f.Reset()
			return nil, false, ErrBadMessage
		}
		data := payload[1:]
		if len(f.buf)+len(data) > FragmentBufSize {
			f.Reset()
			return nil, false, ErrBadMessage
		}
		f.buf = append(f.buf, data...)
	} else {
		data := payload[1:]
		if len(f.buf)+len(data) > FragmentBufSize {
			f.Reset()
			return nil, false, ErrBadMessage
		}
		f.buf = append(f.buf, data...)
		f.fragsReceived++
	}

	if f.fragsReceived >= f.fragsExpected {
		out := make([]byte, len(f.buf))
		copy(out, f.buf)
		f.Reset()
		return out, true, nil
	}
	return nil, false, nil
}

// Reset discards any in-progress reassembly. Fragment sequences may not
// span a peer reset; this is called on peer creation, on any reassembly
// error, and after a completed message.
func (f *FragmentBuffer) Reset() {
	f.active = false
	f.buf = f.buf[:0]
	f.fragsExpected = 0
	f.fragsReceived = 0
}
