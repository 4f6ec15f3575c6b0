package uniuri

import (
	"crypto/rand"
	"math"
)

// NonceLen is the length of New strings, about 95 bits with StdChars.
const NonceLen = 16

var (
	// StdChars are alphanumerics.
	StdChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

	// URLChars is the base64url alphabet, safe in cookies and query strings.
	URLChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_")
)

// New returns a random alphanumeric string of NonceLen characters.
func New() string {
	return NewLenChars(NonceLen, StdChars)
}

// NewLen returns a random alphanumeric string of the given length.
func NewLen(length int) string {
	return NewLenChars(length, StdChars)
}

// NewLenChars returns a random string of length characters drawn from chars
// (2 to 256 distinct bytes). It panics if the system random source fails.
func NewLenChars(length int, chars []byte) string {
	return string(newBytes(length, chars))
}

const (
	maxBufLen = 2048
	byteRange = 256
)

func newBytes(length int, chars []byte) []byte {
	if length <= 0 {
		return nil
	}

	clen := len(chars)
	if clen < 2 || clen > byteRange {
		panic("uniuri: charset must hold 2 to 256 characters")
	}

	// bytes above limit are rejected so every char is equally likely
	limit := byteRange - (byteRange % clen)
	out := make([]byte, 0, length)

	for len(out) < length {
		want := int(math.Ceil(float64(length-len(out)) * byteRange / float64(limit)))
		buf := make([]byte, min(max(want, 16), maxBufLen))

		if _, err := rand.Read(buf); err != nil {
			panic("uniuri: reading random bytes: " + err.Error())
		}

		for _, rb := range buf {
			if int(rb) >= limit {
				continue
			}

			out = append(out, chars[int(rb)%clen])
			if len(out) == length {
				break
			}
		}
	}

	return out
}
