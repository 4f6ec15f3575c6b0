package baseoauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/castboard/castboard/internal/uniuri"
)

const (
	// StateTTL is how long an issued state is accepted.
	StateTTL = 10 * time.Minute

	// ClockSkew tolerates states stamped slightly in the future.
	ClockSkew = time.Minute

	minSecretLen = 16
)

// State is the decoded OAuth state.
type State struct {
	StoreID   uint   `json:"store_id"`
	Timestamp int64  `json:"timestamp"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

// IssuedAt returns the timestamp as time.
func (s State) IssuedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

func (s State) payload() []byte {
	return []byte(strconv.FormatUint(uint64(s.StoreID), 10) + "|" +
		strconv.FormatInt(s.Timestamp, 10) + "|" + s.Nonce)
}

// Signer issues and verifies states.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner returns a Signer keyed with secret.
func NewSigner(secret string) (*Signer, error) {
	if len(secret) < minSecretLen {
		return nil, ErrSecretTooShort
	}

	return &Signer{secret: []byte(secret), now: time.Now}, nil
}

// WithClock replaces the time source of s and returns s.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now

	return s
}

func (s *Signer) sign(st State) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(st.payload())

	return hex.EncodeToString(mac.Sum(nil))
}

// Issue creates a signed state for storeID and returns its encoded form.
func (s *Signer) Issue(storeID uint) (string, error) {
	st := State{
		StoreID:   storeID,
		Timestamp: s.now().UnixMilli(),
		Nonce:     uniuri.New(),
	}
	st.Signature = s.sign(st)

	raw, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("encoding oauth state: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode parses an encoded state without checking it.
func Decode(encoded string) (State, error) {
	var st State

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return st, fmt.Errorf("%w: %w", ErrStateMalformed, err)
	}

	if err = json.Unmarshal(raw, &st); err != nil {
		return st, fmt.Errorf("%w: %w", ErrStateMalformed, err)
	}

	if st.StoreID == 0 || st.Timestamp == 0 || st.Nonce == "" {
		return st, ErrStateMalformed
	}

	return st, nil
}

// Verify decodes encoded and checks its signature and age.
func (s *Signer) Verify(encoded string) (State, error) {
	st, err := Decode(encoded)
	if err != nil {
		return st, err
	}

	want := s.sign(st)
	if !hmac.Equal([]byte(want), []byte(st.Signature)) {
		return st, ErrStateSignature
	}

	age := s.now().Sub(st.IssuedAt())
	if age > StateTTL || age < -ClockSkew {
		return st, ErrStateExpired
	}

	return st, nil
}

// VerifyPair checks that the cookie holds the same state as the query and verifies it.
func (s *Signer) VerifyPair(cookie, query string) (State, error) {
	if cookie == "" || query == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(query)) != 1 {
		return State{}, ErrStateMismatch
	}

	return s.Verify(query)
}
