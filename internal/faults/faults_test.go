package faults_test

import (
	"errors"
	"testing"

	"fieldaudit/internal/faults"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := faults.Storage("failed to add scan to database", cause)
	if !errors.Is(err, faults.ErrStorage) {
		t.Fatalf("expected storage classification, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause on chain, got %v", err)
	}
}

func TestMessageStripsMarker(t *testing.T) {
	err := faults.Conflict("there is currently an audit in progress")
	if got := faults.Message(err); got != "there is currently an audit in progress" {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestClassificationsAreDistinct(t *testing.T) {
	err := faults.State("audit already completed")
	if errors.Is(err, faults.ErrConflict) {
		t.Fatal("state error must not classify as conflict")
	}
	if !errors.Is(err, faults.ErrState) {
		t.Fatal("expected state classification")
	}
}
