package negotiation

import "sync"

// Thread is the append-only conversation log for one supplier.
// During a round only the goroutine working that supplier appends to
// it; the lock covers reads from other goroutines (tests, snapshots).
type Thread struct {
	supplierID int
	mu         sync.RWMutex
	turns      []Turn
}

func (t *Thread) SupplierID() int {
	return t.supplierID
}

func (t *Thread) Append(role Role, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, Turn{Role: role, Content: content})
}

// Turns returns a copy of the log, oldest first.
func (t *Thread) Turns() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

func (t *Thread) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Store owns exactly one Thread per supplier id. Threads are created
// once at session start and never merged; cross-supplier leakage only
// happens through the disclosure policy, never through raw access.
type Store struct {
	threads map[int]*Thread
}

func NewStore(supplierIDs []int) *Store {
	threads := make(map[int]*Thread, len(supplierIDs))
	for _, id := range supplierIDs {
		threads[id] = &Thread{supplierID: id}
	}
	return &Store{threads: threads}
}

// Thread returns the supplier's log, or nil for an unknown id.
func (s *Store) Thread(supplierID int) *Thread {
	if s == nil {
		return nil
	}
	return s.threads[supplierID]
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.threads)
}
