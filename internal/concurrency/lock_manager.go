package concurrency

import (
	"sync"
)

// LockManager hands out named mutexes. The planning engine uses it to
// serialize the contended paths the storage layer alone cannot order:
// one in-flight deduction per lot, one advancement per batch, one merge
// per aggregation group key.
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns a mutex for the given key
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Lock key prefixes
const (
	KeyLot       = "lot:"
	KeyBatch     = "batch:"
	KeyGroup     = "group:"
)

// LotKey returns the lock key serializing deductions for a lot number
func LotKey(lotNumber string) string { return KeyLot + lotNumber }

// BatchKey returns the lock key serializing advancement of a batch
func BatchKey(batchID string) string { return KeyBatch + batchID }

// GroupKey returns the lock key serializing merges for an aggregation group
func GroupKey(groupKey string) string { return KeyGroup + groupKey }
