package errs

import (
	"errors"
	"testing"
)

func TestSeverityByKind(t *testing.T) {
	cases := []struct {
		kind Kind
		want Severity
	}{
		{KindBlocked, Recoverable},
		{KindActorNotFound, Validation},
		{KindOccupancyDesync, Internal},
		{KindBusLagExceeded, Fatal},
	}
	for _, c := range cases {
		if got := New(c.kind, "x").Severity(); got != c.want {
			t.Errorf("%s: expected severity %v, got %v", c.kind, c.want, got)
		}
	}
}

func TestSeverityOfUnknownKindDefaultsInternal(t *testing.T) {
	e := New(Kind("SomeUnregisteredKind"), "x")
	if e.Severity() != Internal {
		t.Fatalf("expected unregistered kind to default to Internal, got %v", e.Severity())
	}
}

func TestWrapPreservesCauseAndUnwraps(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := Wrap(KindCorruptArtifact, "context", cause)

	if !errors.Is(wrapped, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}
	if wrapped.Unwrap() != cause {
		t.Fatal("expected Unwrap to return the original cause")
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := New(KindOccupied, "tile full")
	if !Is(err, KindOccupied) {
		t.Fatal("expected Is to match the error's own kind")
	}
	if Is(err, KindBlocked) {
		t.Fatal("expected Is to reject a different kind")
	}
	if Is(errors.New("plain error"), KindOccupied) {
		t.Fatal("expected Is to reject a non-*Error")
	}
}

func TestSeverityOfNonTaxonomyError(t *testing.T) {
	if SeverityOf(errors.New("plain")) != Internal {
		t.Fatal("expected a plain error to default to Internal severity")
	}
}

func TestTransitionPhaseErrorWrapsPhase(t *testing.T) {
	inner := New(KindBlocked, "blocked")
	pe := NewPhaseError(PhaseApply, inner)
	if pe.Unwrap() != inner {
		t.Fatal("expected TransitionPhaseError to unwrap to the inner error")
	}
	if !errors.Is(pe, inner) {
		t.Fatal("expected errors.Is to see through the phase wrapper")
	}
}
