package services

import (
	"sync/atomic"

	apperrors "github.com/amaumene/streambox/internal/errors"
	"github.com/amaumene/streambox/pkg/security"
)

// CredentialPool is the process-wide set of upstream API keys with a shared
// cursor. Concurrent rotations may skip or repeat a key; the cursor itself is
// always a valid index because every update is a compare-and-swap.
type CredentialPool struct {
	keys   []string
	cursor atomic.Uint64
}

// NewCredentialPool sanitizes keys, drops empty ones and keeps their order.
func NewCredentialPool(keys []string) (*CredentialPool, error) {
	clean := security.NewAPIKeyValidator().SanitizeAll(keys)
	if len(clean) == 0 {
		return nil, apperrors.NewConfigurationError("credential pool needs at least one key", nil)
	}
	return &CredentialPool{keys: clean}, nil
}

// Current returns the key at the cursor.
func (p *CredentialPool) Current() string {
	return p.keys[p.cursor.Load()]
}

// Rotate advances the cursor to the next key, wrapping, and returns the new index.
func (p *CredentialPool) Rotate() int {
	size := uint64(len(p.keys))
	for {
		old := p.cursor.Load()
		next := (old + 1) % size
		if p.cursor.CompareAndSwap(old, next) {
			return int(next)
		}
	}
}

// Index returns the cursor position.
func (p *CredentialPool) Index() int {
	return int(p.cursor.Load())
}

// Size returns the number of keys in the pool.
func (p *CredentialPool) Size() int {
	return len(p.keys)
}
