package admincli

import (
	"context"
	"testing"
)

type fakeController struct {
	toggled  int
	snapshot string
}

func (f *fakeController) Toggle(ctx context.Context) { f.toggled++ }
func (f *fakeController) Snapshot() any               { return f.snapshot }

func TestDispatchRoutesToBoundAction(t *testing.T) {
	ctrl := &fakeController{snapshot: "idle"}
	c := New(context.Background(), ctrl, nil)

	c.dispatch('r')
	if ctrl.toggled != 1 {
		t.Fatalf("expected toggle invoked once, got %d", ctrl.toggled)
	}

	c.dispatch('q')
	select {
	case <-c.quit:
	default:
		t.Fatal("expected quit channel closed after 'q'")
	}
}

func TestDispatchIgnoresUnknownKey(t *testing.T) {
	ctrl := &fakeController{}
	c := New(context.Background(), ctrl, nil)
	c.dispatch('z')
	if ctrl.toggled != 0 {
		t.Fatalf("expected no action for unbound key, got %d toggles", ctrl.toggled)
	}
}
