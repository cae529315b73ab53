package board

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"tagged error", E(KindNotFound, "missing"), KindNotFound},
		{"wrapped tagged error", fmt.Errorf("outer: %w", E(KindGone, "expired")), KindGone},
		{"plain error", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindInternal, cause, "persist confession")

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if err.Error() != "internal_failure: persist confession: disk full" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestIsKind(t *testing.T) {
	if !IsKind(E(KindConflict, "raced"), KindConflict) {
		t.Error("IsKind missed a matching kind")
	}
	if IsKind(nil, KindInternal) {
		t.Error("IsKind matched nil error")
	}
	if IsKind(E(KindConflict, "raced"), KindNotFound) {
		t.Error("IsKind matched the wrong kind")
	}
}
