package registry

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotTracked is returned when a user has never registered a wallet.
var ErrNotTracked = errors.New("wallet not tracked")

// Registry maps a Telegram user to their single tracked wallet address.
// SetWallet is last-write-wins; entries live until the process (or the
// backing store) goes away.
type Registry interface {
	SetWallet(userID int64, address string) error
	GetWallet(userID int64) (string, error)
}

// Memory is the default process-scoped registry.
type Memory struct {
	mu      sync.RWMutex
	wallets map[int64]string
}

func NewMemory() *Memory {
	return &Memory{wallets: make(map[int64]string)}
}

func (m *Memory) SetWallet(userID int64, address string) error {
	if address == "" {
		return fmt.Errorf("empty wallet address")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[userID] = address
	return nil
}

func (m *Memory) GetWallet(userID int64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	addr, ok := m.wallets[userID]
	if !ok {
		return "", ErrNotTracked
	}
	return addr, nil
}

func (m *Memory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.wallets)
}
