package flow

import "sync"

// NavigationGuard keeps a finished session from being re-entered through
// back navigation. It is a deterrent, not a security boundary: arming
// plants a marker in the host's history facility and re-plants it on
// every intercepted back attempt; disarming detaches completely.
//
// Controllers arm at most once per submission and always disarm on
// Close, so an armed guard never outlives its session.
type NavigationGuard interface {
	// Arm activates the guard. onBlocked, if non-nil, fires on every
	// intercepted back attempt. Arming an armed guard is a no-op.
	Arm(onBlocked func())
	// Disarm deactivates the guard and releases the history hook.
	// Disarming an unarmed guard is a no-op.
	Disarm()
}

// History is the minimal surface a guard needs from its host: plant a
// marker entry and observe attempts to navigate behind it.
type History interface {
	// Push plants a marker entry at the top of the history stack.
	Push(marker string)
	// OnBack registers the handler invoked when the user navigates back
	// onto the marker. Registering nil removes the handler.
	OnBack(fn func())
}

// guardMarker identifies the entry the guard plants. The value only
// needs to be recognizable to the guard itself.
const guardMarker = "assessment-locked"

// HistoryGuard is the standard NavigationGuard over a History backend.
type HistoryGuard struct {
	history History

	mu    sync.Mutex
	armed bool
}

// NewGuard wraps a history backend. A nil backend yields a no-op guard,
// so callers never branch on host capability.
func NewGuard(history History) NavigationGuard {
	if history == nil {
		return NoopGuard{}
	}
	return &HistoryGuard{history: history}
}

// Arm plants the marker and installs the back handler. The handler
// re-plants the marker each time, keeping the lock in place however
// many times the user retries, and then notifies onBlocked.
func (g *HistoryGuard) Arm(onBlocked func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.armed {
		return
	}
	g.armed = true

	g.history.Push(guardMarker)
	g.history.OnBack(func() {
		g.mu.Lock()
		armed := g.armed
		g.mu.Unlock()
		if !armed {
			return
		}
		g.history.Push(guardMarker)
		if onBlocked != nil {
			onBlocked()
		}
	})
}

// Disarm releases the back handler. The planted marker stays in the
// stack but no longer intercepts anything.
func (g *HistoryGuard) Disarm() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.armed {
		return
	}
	g.armed = false
	g.history.OnBack(nil)
}

// NoopGuard satisfies NavigationGuard where no history facility exists.
type NoopGuard struct{}

func (NoopGuard) Arm(func()) {}
func (NoopGuard) Disarm()    {}
