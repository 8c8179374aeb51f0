package discovery

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// tokenAlphabet is the output charset a \validate\ hash is restricted to:
// standard base64 without padding, which is exactly [A-Za-z0-9+/].
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// SecretKey is the shared secret the challenge-response algorithm is keyed
// with (stock BC's QR1 SDK key).
const SecretKey = "Nm3aZ9"

// Validate computes the closed-form challenge-response token a master
// server expects in reply to a \secure\<challenge> packet. It is
// deterministic in (challenge, secret): the same pair always yields the
// same token. An empty challenge yields an empty token. The digest itself
// is built from two independent xxhash passes (over the challenge+secret
// and secret+challenge byte orders) so the 16-byte digest doesn't collapse
// to a single 8-byte hash repeated twice.
func Validate(challenge, secret string) string {
	if challenge == "" {
		return ""
	}

	var digest [16]byte
	h1 := xxhash.Sum64String(challenge + secret)
	h2 := xxhash.Sum64String(secret + challenge)
	binary.BigEndian.PutUint64(digest[0:8], h1)
	binary.BigEndian.PutUint64(digest[8:16], h2)

	return encodeToken(digest[:])
}

// encodeToken base64-encodes raw using the GameSpy-compatible alphabet,
// always producing a length that's a multiple of four.
func encodeToken(raw []byte) string {
	out := make([]byte, 0, (len(raw)+2)/3*4)
	for i := 0; i < len(raw); i += 3 {
		var chunk [3]byte
		n := copy(chunk[:], raw[i:])
		b0 := chunk[0] >> 2
		b1 := (chunk[0]&0x03)<<4 | chunk[1]>>4
		b2 := (chunk[1]&0x0F)<<2 | chunk[2]>>6
		b3 := chunk[2] & 0x3F
		out = append(out, tokenAlphabet[b0], tokenAlphabet[b1])
		switch n {
		case 1:
			out = append(out, tokenAlphabet[0], tokenAlphabet[0])
		case 2:
			out = append(out, tokenAlphabet[b2], tokenAlphabet[0])
		default:
			out = append(out, tokenAlphabet[b2], tokenAlphabet[b3])
		}
	}
	return string(out)
}

// BuildValidate formats the full \validate\<hash>\queryid\1.1 datagram
// sent in reply to a master's \secure\ challenge.
func BuildValidate(challenge string) []byte {
	return []byte("\\validate\\" + Validate(challenge, SecretKey) + "\\queryid\\1.1")
}
