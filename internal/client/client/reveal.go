package client

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/lifedesk/internal/common"
)

// Clock schedules the re-mask of revealed secrets.
type Clock interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// RevealedSecret holds a decrypted vault secret until the timeout fires or
// Mask is called, whichever comes first. The bytes are wiped on mask.
type RevealedSecret struct {
	mu     sync.Mutex
	value  []byte
	stop   func() bool
	masked bool
}

func newRevealedSecret(plaintext string, ttl time.Duration, clock Clock) *RevealedSecret {
	r := &RevealedSecret{value: []byte(plaintext)}
	r.mu.Lock()
	r.stop = clock.AfterFunc(ttl, r.Mask)
	r.mu.Unlock()
	return r
}

// Value returns the plaintext while the secret is still revealed.
func (r *RevealedSecret) Value() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.masked {
		return "", false
	}
	return string(r.value), true
}

func (r *RevealedSecret) Masked() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.masked
}

// Mask wipes the plaintext. It is safe to call more than once.
func (r *RevealedSecret) Mask() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.masked {
		return
	}
	r.masked = true
	common.WipeByteArray(r.value)
	r.value = nil
	if r.stop != nil {
		r.stop()
	}
}

// String never exposes the plaintext.
func (r *RevealedSecret) String() string {
	return common.MaskedSecret
}
