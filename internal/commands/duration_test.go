package commands

import (
	"testing"
	"time"
)

func TestParseWaitDurationDigits(t *testing.T) {
	if got := parseWaitDuration("5 seconds"); got != 5*time.Second {
		t.Errorf("got %v, want 5s", got)
	}
}

func TestParseWaitDurationWords(t *testing.T) {
	if got := parseWaitDuration("one thousand ms"); got != 1000*time.Millisecond {
		t.Errorf("got %v, want 1000ms", got)
	}
}

func TestParseWaitDurationEmptyDefaultsToOneSecond(t *testing.T) {
	if got := parseWaitDuration(""); got != time.Second {
		t.Errorf("got %v, want 1s", got)
	}
}

func TestParseWaitDurationCapsAtOneHour(t *testing.T) {
	if got := parseWaitDuration("10000 seconds"); got != maxWaitDuration {
		t.Errorf("got %v, want capped at %v", got, maxWaitDuration)
	}
}

func TestParseWaitDurationUnparseableDefaultsToOneSecond(t *testing.T) {
	if got := parseWaitDuration("forever and ever"); got != time.Second {
		t.Errorf("got %v, want 1s default", got)
	}
}
