package logger

import "testing"

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud", "prod"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewAcceptsMixedCaseLevel(t *testing.T) {
	log, err := New(" WARN ", "prod")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if log.Core().Enabled(-1) {
		t.Fatalf("debug should be disabled at warn level")
	}
}

func TestNewDefaultsToInfo(t *testing.T) {
	log, err := New("", "dev")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if log.Core().Enabled(-1) || !log.Core().Enabled(0) {
		t.Fatalf("empty level should mean info")
	}
}
