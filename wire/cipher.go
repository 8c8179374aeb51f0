package wire

// cipherKey is the fixed ten-byte secret the stream cipher is keyed with.
// Byte 0 of every packet (the direction flag) is never run through this
// cipher; it is excluded by the caller before Encrypt/Decrypt is invoked.
var cipherKey = [10]byte{'A', 'l', 'b', 'y', 'R', 'u', 'l', 'e', 's', '!'}

// cipherState holds the per-packet working state of the stream cipher. It
// is reset from scratch for every packet — there is no cross-packet state.
type cipherState struct {
	keyString    [10]byte
	keyWord      [5]int32
	roundCounter int32
	runningSum   int32
	stateA       int32
	accumulator  uint32
}

func newCipherState() *cipherState {
	return &cipherState{keyString: cipherKey}
}

// prngStep runs one round of the LCG-variant PRNG: multipliers 0x4E35 and
// 0x15A cross-multiplied against the current key word and the running sum.
func (s *cipherState) prngStep() {
	round := s.roundCounter
	kw := s.keyWord[round]
	mix := s.runningSum + round
	cross1 := mix * 0x4E35
	cross2 := kw * 0x15A
	newRSum := s.stateA + cross1 + cross2
	newKW := kw*0x4E35 + 1

	s.runningSum = newRSum
	s.stateA = cross2
	s.keyWord[round] = newKW
	s.accumulator = uint32(newRSum) ^ uint32(newKW)
	s.roundCounter = round + 1
}

// keySchedule derives the five key words from the key string and
// accumulates the XOR of all five PRNG outputs into s.accumulator.
func (s *cipherState) keySchedule() {
	k := s.keyString

	s.keyWord[0] = int32(uint32(k[0])*256 + uint32(k[1]))
	s.prngStep()
	s.accumulator = s.prngOut()

	s.keyWord[1] = int32((uint32(k[2])*256 + uint32(k[3])) ^ uint32(s.keyWord[0]))
	s.prngStep()
	s.accumulator ^= s.prngOut()

	s.keyWord[2] = int32((uint32(k[4])*256 + uint32(k[5])) ^ uint32(s.keyWord[1]))
	s.prngStep()
	s.accumulator ^= s.prngOut()

	s.keyWord[3] = int32((uint32(k[6])*256 + uint32(k[7])) ^ uint32(s.keyWord[2]))
	s.prngStep()
	s.accumulator ^= s.prngOut()

	s.keyWord[4] = int32((uint32(k[8])*256 + uint32(k[9])) ^ uint32(s.keyWord[3]))
	s.prngStep()
	s.roundCounter = 0
	s.accumulator ^= s.prngOut()
}

// prngOut returns the last computed PRNG output; kept as a method only to
// keep keySchedule's accumulator lines readable.
func (s *cipherState) prngOut() uint32 { return s.accumulator }

// Encrypt scrambles payload in place. Byte 0 of a packet must be excluded
// by the caller — Encrypt/Decrypt operate on bytes 1..len-1 of a datagram.
func Encrypt(payload []byte) {
	s := newCipherState()
	for i := range payload {
		plain := payload[i]
		s.keySchedule()
		cipher := plain ^ byte(s.accumulator) ^ byte(s.accumulator>>8)
		payload[i] = cipher
		for j := range s.keyString {
			s.keyString[j] ^= plain
		}
	}
}

// Decrypt reverses Encrypt. The feedback variable is the *recovered*
// plaintext (computed after the XOR step), which is what makes Encrypt and
// Decrypt symmetric despite both feeding back plaintext.
func Decrypt(payload []byte) {
	s := newCipherState()
	for i := range payload {
		s.keySchedule()
		plain := payload[i] ^ byte(s.accumulator) ^ byte(s.accumulator>>8)
		payload[i] = plain
		for j := range s.keyString {
			s.keyString[j] ^= plain
		}
	}
}

// EncryptPacket encrypts a full datagram, leaving byte 0 (the direction
// flag) untouched.
func EncryptPacket(packet []byte) {
	if len(packet) <= 1 {
		return
	}
	Encrypt(packet[1:])
}

// DecryptPacket decrypts a full datagram, leaving byte 0 untouched.
func DecryptPacket(packet []byte) {
	if len(packet) <= 1 {
		return
	}
	Decrypt(packet[1:])
}
