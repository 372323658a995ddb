package services

import (
	"fmt"
	"sort"
	"sync"
)

// KeyedLocker hands out one mutex per key so that work on the same table or product
// runs one caller at a time while unrelated keys proceed in parallel.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyedLock)}
}

// Lock acquires every key in sorted order and returns the matching unlock func.
// Duplicate keys are collapsed.
func (l *KeyedLocker) Lock(keys ...string) func() {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	sort.Strings(uniq)

	held := make([]*keyedLock, 0, len(uniq))
	for _, k := range uniq {
		lk := l.acquire(k)
		lk.mu.Lock()
		held = append(held, lk)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(uniq[i])
		}
	}
}

func (l *KeyedLocker) acquire(key string) *keyedLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk, ok := l.locks[key]
	if !ok {
		lk = &keyedLock{}
		l.locks[key] = lk
	}
	lk.refs++
	return lk
}

func (l *KeyedLocker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk := l.locks[key]
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, key)
	}
}

func tableKey(id uint) string   { return fmt.Sprintf("table:%d", id) }
func productKey(id uint) string { return fmt.Sprintf("product:%d", id) }

// orderScopeKey serializes merges into one table's order list (or the standalone bucket).
func orderScopeKey(tableID *uint) string {
	if tableID == nil {
		return "orders:standalone"
	}
	return fmt.Sprintf("orders:%d", *tableID)
}

func comboKey(id uint) string { return fmt.Sprintf("combo:%d", id) }

// catalogKey guards name uniqueness checks across product writes.
const catalogKey = "catalog"
