package session

import (
	"context"
	"sync"
)

// Memory: хранилище в памяти процесса; состояние теряется при рестарте.
type Memory struct {
	mu   sync.RWMutex
	data map[int64][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[int64][]byte)}
}

func (m *Memory) Load(_ context.Context, chatID int64) (State, error) {
	m.mu.RLock()
	raw, ok := m.data[chatID]
	m.mu.RUnlock()
	if !ok {
		return State{}, nil
	}
	return Unmarshal(raw)
}

func (m *Memory) Save(_ context.Context, chatID int64, s State) error {
	if !s.Active() {
		m.mu.Lock()
		delete(m.data, chatID)
		m.mu.Unlock()
		return nil
	}
	raw, err := Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[chatID] = raw
	m.mu.Unlock()
	return nil
}
