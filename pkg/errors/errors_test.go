package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOfWalksWrappedCauses(t *testing.T) {
	base := Persistence("failed to persist state", errors.New("disk full"))
	wrapped := fmt.Errorf("send failed: %w", base)

	if got := CodeOf(wrapped); got != CodePersistence {
		t.Fatalf("CodeOf(wrapped) = %s, want %s", got, CodePersistence)
	}
	if got := CodeOf(errors.New("plain")); got != CodeUnknown {
		t.Fatalf("unclassified error should be %s, got %s", CodeUnknown, got)
	}
	if got := CodeOf(nil); got != CodeUnknown {
		t.Fatalf("nil error should be %s, got %s", CodeUnknown, got)
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := Persistence("failed to persist state", errors.New("disk full"))
	if err.Error() != "failed to persist state: disk full" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if !errors.Is(ErrDeletePending, ErrDeletePending) {
		t.Fatalf("sentinel identity lost")
	}
}
