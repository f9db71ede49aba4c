package sweep

import (
	"context"
	"errors"
	"testing"

	"campusconnect/pkg/config"
)

type fakeTarget struct {
	calls  int
	purged int
	err    error
}

func (f *fakeTarget) PurgeExpired() (int, error) {
	f.calls++
	return f.purged, f.err
}

func TestRunOnce(t *testing.T) {
	ft := &fakeTarget{purged: 3}
	if err := RunOnce(ft); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if ft.calls != 1 {
		t.Fatalf("expected one purge call, got %d", ft.calls)
	}
}

func TestRunOncePropagatesError(t *testing.T) {
	ft := &fakeTarget{err: errors.New("mirror down")}
	if err := RunOnce(ft); err == nil {
		t.Fatalf("expected purge error")
	}
}

func TestStartDisabled(t *testing.T) {
	cancel, err := Start(context.Background(), config.SweepConfig{Enabled: false}, &fakeTarget{})
	if err != nil {
		t.Fatalf("start disabled: %v", err)
	}
	cancel()
}

func TestStartRejectsInvalidCron(t *testing.T) {
	_, err := Start(context.Background(), config.SweepConfig{Enabled: true, Cron: "not a cron"}, &fakeTarget{})
	if err == nil {
		t.Fatalf("expected invalid cron to be rejected")
	}
}

func TestStartValidCron(t *testing.T) {
	cancel, err := Start(context.Background(), config.SweepConfig{Enabled: true, Cron: "0 * * * *"}, &fakeTarget{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()
}
