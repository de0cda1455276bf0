package service

import (
	"fmt"
	"sync"

	appErrors "github.com/frenillazo/acainfo-portal-api/pkg/errors"
)

// InflightGuard rejects a second submission of the same logical mutation
// while the first is outstanding. Keys combine actor, action and entity, so
// mutations on different entities never serialize against each other.
type InflightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewInflightGuard constructs an empty guard.
func NewInflightGuard() *InflightGuard {
	return &InflightGuard{active: make(map[string]struct{})}
}

// Acquire claims the slot for (actor, action, entity). The returned release
// must be called once the mutation settles, success or failure.
func (g *InflightGuard) Acquire(actorID, action, entityID string) (func(), error) {
	key := fmt.Sprintf("%s|%s|%s", actorID, action, entityID)

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[key]; busy {
		return nil, appErrors.ErrOperationInFlight
	}
	g.active[key] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, key)
			g.mu.Unlock()
		})
	}
	return release, nil
}
