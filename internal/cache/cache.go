package cache

import (
    "sync"
)

// Responses maps a normalized lookup key to a finalized rendered payload.
// Insert-only: once written, an entry is never overwritten or expired for the
// lifetime of the process. Single-source and broadcast paths use disjoint key
// namespaces ("<command>:<key>" vs "<key>"), so they cannot collide.
type Responses struct {
    mu      sync.RWMutex
    entries map[string]string
}

func New() *Responses {
    return &Responses{entries: make(map[string]string)}
}

func (c *Responses) Get(key string) (string, bool) {
    c.mu.RLock()
    payload, ok := c.entries[key]
    c.mu.RUnlock()
    return payload, ok
}

// PutIfAbsent stores payload under key unless an entry already exists.
// Reports whether the write happened.
func (c *Responses) PutIfAbsent(key, payload string) bool {
    c.mu.Lock()
    defer c.mu.Unlock()
    if _, ok := c.entries[key]; ok {
        return false
    }
    c.entries[key] = payload
    return true
}

func (c *Responses) Len() int {
    c.mu.RLock()
    defer c.mu.RUnlock()
    return len(c.entries)
}
