// Package directory resolves contract addresses by name, the way an
// on-chain storage directory does: each contract is registered under
// keccak256("contract.address" + name).
package directory

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/stakevault/libstakevault-go/ledger"
)

const keyPrefix = "contract.address"

// Key returns the directory key a contract name is registered under.
func Key(name string) [32]byte {
	var k [32]byte
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(keyPrefix))
	h.Write([]byte(name))
	copy(k[:], h.Sum(nil))
	return k
}

// KeyHex returns Key(name) as lowercase hex without a prefix.
func KeyHex(name string) string {
	k := Key(name)
	return hex.EncodeToString(k[:])
}

// Memory is an in-process directory.
type Memory struct {
	mu      sync.RWMutex
	entries map[[32]byte]ledger.Address
}

// NewMemory returns an empty directory.
func NewMemory() *Memory {
	return &Memory{entries: make(map[[32]byte]ledger.Address)}
}

// Register records addr under name.
func (m *Memory) Register(name string, addr ledger.Address) {
	m.Set(Key(name), addr)
}

// Set records addr under key. A zero address removes the entry.
func (m *Memory) Set(key [32]byte, addr ledger.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if addr.IsZero() {
		delete(m.entries, key)
		return
	}
	m.entries[key] = addr
}

// GetAddress returns the address registered under key.
func (m *Memory) GetAddress(_ context.Context, key [32]byte) (ledger.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	addr, ok := m.entries[key]
	if !ok {
		return ledger.ZeroAddress, fmt.Errorf("%w: %x", ErrNotFound, key)
	}
	return addr, nil
}

// Resolver is anything that maps directory keys to addresses.
type Resolver interface {
	GetAddress(ctx context.Context, key [32]byte) (ledger.Address, error)
}

// Chain consults resolvers in order. A resolver answering ErrNotFound or
// the zero address passes the lookup on; any other error stops it.
type Chain []Resolver

// GetAddress returns the first non-zero address found for key.
func (c Chain) GetAddress(ctx context.Context, key [32]byte) (ledger.Address, error) {
	for _, r := range c {
		addr, err := r.GetAddress(ctx, key)
		switch {
		case errors.Is(err, ErrNotFound):
			continue
		case err != nil:
			return ledger.ZeroAddress, err
		case !addr.IsZero():
			return addr, nil
		}
	}
	return ledger.ZeroAddress, fmt.Errorf("%w: %x", ErrNotFound, key)
}
