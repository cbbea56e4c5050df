package overlay

import (
	"log"
	"testing"
)

func TestLoggingAdapterSatisfiesAdapter(t *testing.T) {
	var _ Adapter = New(log.Default())
}

func TestOnCancelFiresAndUnsubscribes(t *testing.T) {
	a := New(nil)
	calls := 0
	unsubscribe := a.OnCancel(func() { calls++ })

	a.Cancel()
	if calls != 1 {
		t.Fatalf("expected 1 call after first Cancel, got %d", calls)
	}

	unsubscribe()
	a.Cancel()
	if calls != 1 {
		t.Fatalf("expected no further calls after unsubscribe, got %d", calls)
	}
}

func TestMultipleListenersAllFire(t *testing.T) {
	a := New(nil)
	var aCalled, bCalled bool
	a.OnCancel(func() { aCalled = true })
	a.OnCancel(func() { bCalled = true })

	a.Cancel()
	if !aCalled || !bCalled {
		t.Errorf("expected both listeners to fire, got a=%v b=%v", aCalled, bCalled)
	}
}

func TestSettersDoNotPanicWithNilLogger(t *testing.T) {
	a := New(nil)
	a.Show()
	a.Hide()
	a.SetRecording(true)
	a.SetAudioLevel(0.42)
	a.SetWindowName("Terminal")
	a.SetTranscription("hello world")
	a.SetStatus("idle")
}
