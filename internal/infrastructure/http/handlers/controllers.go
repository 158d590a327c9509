package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/carddemo/terminal/internal/core/domain"
	"github.com/carddemo/terminal/internal/core/screen"
	"github.com/carddemo/terminal/internal/core/screens"
	"github.com/carddemo/terminal/internal/core/session"
)

// minSweepInterval bounds how often RunEviction wakes up.
const minSweepInterval = time.Second

// Controllers keeps one screen controller per browser session and screen.
// Everything a browser session holds is dropped when its Session is destroyed,
// or when the browser has been idle for longer than the eviction window.
type Controllers struct {
	mu    sync.Mutex
	bySID map[string]*browserScreens
	now   func() time.Time
}

type browserScreens struct {
	byName   map[string]*screen.Controller
	lastSeen time.Time
}

// NewControllers subscribes to store so logouts drop the browser's screens.
// The returned function unsubscribes.
func NewControllers(store *session.Store) (*Controllers, func()) {
	cs := &Controllers{
		bySID: make(map[string]*browserScreens),
		now:   time.Now,
	}
	unsubscribe := store.Subscribe(func(browserID string, s *domain.Session) {
		if s == nil {
			cs.Drop(browserID)
		}
	})
	return cs, unsubscribe
}

// Get returns the controller of def for browserID, creating it on first use.
func (cs *Controllers) Get(browserID string, def *screens.Definition) *screen.Controller {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	b, ok := cs.bySID[browserID]
	if !ok {
		b = &browserScreens{byName: make(map[string]*screen.Controller)}
		cs.bySID[browserID] = b
	}
	b.lastSeen = cs.now()

	ctl, ok := b.byName[def.Name]
	if !ok {
		ctl = screen.NewController(def.Flow)
		b.byName[def.Name] = ctl
	}
	return ctl
}

// Drop resets and forgets every controller of browserID. Requests still in
// flight land on a reset context and are discarded.
func (cs *Controllers) Drop(browserID string) {
	cs.mu.Lock()
	b := cs.bySID[browserID]
	delete(cs.bySID, browserID)
	cs.mu.Unlock()

	if b != nil {
		b.reset()
	}
}

// Sweep drops the browser sessions not seen for longer than idle and returns
// how many went.
func (cs *Controllers) Sweep(idle time.Duration) int {
	cs.mu.Lock()
	cutoff := cs.now().Add(-idle)
	var stale []*browserScreens
	for id, b := range cs.bySID {
		if b.lastSeen.Before(cutoff) {
			stale = append(stale, b)
			delete(cs.bySID, id)
		}
	}
	cs.mu.Unlock()

	for _, b := range stale {
		b.reset()
	}
	return len(stale)
}

// RunEviction sweeps idle browser sessions until ctx is cancelled.
func (cs *Controllers) RunEviction(ctx context.Context, idle time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(max(idle/2, minSweepInterval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := cs.Sweep(idle); n > 0 {
				log.Debug().Int("evicted", n).Int("remaining", cs.Len()).Msg("idle terminal screens evicted")
			}
		}
	}
}

// Len is the number of browser sessions with at least one controller.
func (cs *Controllers) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.bySID)
}

func (b *browserScreens) reset() {
	for _, ctl := range b.byName {
		ctl.Reset()
	}
}
