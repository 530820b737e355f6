package logging

import (
	"sync"

	"parley/internal/buffer"
)

// LogBuffer retains the most recent log entries for REST inspection.
type LogBuffer struct {
	mu      sync.Mutex
	entries *buffer.Ring[Entry]
}

func NewLogBuffer(size int) *LogBuffer {
	return &LogBuffer{entries: buffer.NewRing[Entry](size)}
}

func (b *LogBuffer) Add(entry Entry) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries.Add(entry)
}

func (b *LogBuffer) List() []Entry {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entries.List()
}
