package keylock

import (
	"sync"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain"
)

type entry struct {
	sem  chan struct{}
	refs int
}

type localImpl struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewLocal serializes keys inside one process. Entries are dropped once nobody waits on them.
func NewLocal() domain.Locker {
	return &localImpl{
		entries: map[string]*entry{},
	}
}

func (im *localImpl) acquireEntry(key string) *entry {
	im.mu.Lock()
	defer im.mu.Unlock()
	e, ok := im.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		im.entries[key] = e
	}
	e.refs++
	return e
}

func (im *localImpl) releaseEntry(key string, e *entry) {
	im.mu.Lock()
	defer im.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(im.entries, key)
	}
}

func (im *localImpl) Lock(c ctx.Ctx, key string) (func(), error) {
	e := im.acquireEntry(key)

	select {
	case e.sem <- struct{}{}:
	case <-c.Done():
		im.releaseEntry(key, e)
		return nil, c.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			im.releaseEntry(key, e)
		})
	}, nil
}

// size is the number of keys currently held or waited on
func (im *localImpl) size() int {
	im.mu.Lock()
	defer im.mu.Unlock()
	return len(im.entries)
}
