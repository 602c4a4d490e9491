package flow

import "testing"

// fakeHistory is an in-memory history stack for guard tests.
type fakeHistory struct {
	stack  []string
	onBack func()
}

func (h *fakeHistory) Push(marker string) { h.stack = append(h.stack, marker) }
func (h *fakeHistory) OnBack(fn func())   { h.onBack = fn }

func (h *fakeHistory) back() {
	if len(h.stack) > 0 {
		h.stack = h.stack[:len(h.stack)-1]
	}
	if h.onBack != nil {
		h.onBack()
	}
}

func TestGuardArmPlantsMarker(t *testing.T) {
	history := &fakeHistory{}
	guard := NewGuard(history)

	guard.Arm(nil)
	if len(history.stack) != 1 || history.stack[0] != guardMarker {
		t.Fatalf("expected one marker, got %v", history.stack)
	}
	if history.onBack == nil {
		t.Fatal("back handler not installed")
	}
}

func TestGuardBlocksBackAndReplants(t *testing.T) {
	history := &fakeHistory{}
	guard := NewGuard(history)

	blocked := 0
	guard.Arm(func() { blocked++ })

	// Each back attempt pops the marker; the guard puts it right back.
	history.back()
	history.back()

	if blocked != 2 {
		t.Fatalf("expected 2 blocked callbacks, got %d", blocked)
	}
	if len(history.stack) != 1 || history.stack[0] != guardMarker {
		t.Fatalf("marker not replanted: %v", history.stack)
	}
}

func TestGuardArmIsIdempotent(t *testing.T) {
	history := &fakeHistory{}
	guard := NewGuard(history)

	guard.Arm(nil)
	guard.Arm(nil)
	if len(history.stack) != 1 {
		t.Fatalf("re-arming must not plant another marker, got %v", history.stack)
	}
}

func TestGuardDisarmDetaches(t *testing.T) {
	history := &fakeHistory{}
	guard := NewGuard(history)

	blocked := 0
	guard.Arm(func() { blocked++ })
	guard.Disarm()

	history.back()
	if blocked != 0 {
		t.Fatal("disarmed guard must not intercept")
	}
	if len(history.stack) != 0 {
		t.Fatalf("disarmed guard must not replant, got %v", history.stack)
	}

	// Disarming again is a no-op.
	guard.Disarm()
}

func TestNilHistoryDegradesToNoop(t *testing.T) {
	guard := NewGuard(nil)
	if _, ok := guard.(NoopGuard); !ok {
		t.Fatalf("expected NoopGuard, got %T", guard)
	}
	guard.Arm(func() { t.Fatal("noop guard must never call back") })
	guard.Disarm()
}
