package lifecycle

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, nil)

	var order []string
	for _, name := range []string{"postgres", "buffer", "http_server"} {
		name := name
		m.Register(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"http_server", "buffer", "postgres"}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
}

func TestShutdownJoinsErrorsAndContinues(t *testing.T) {
	m := New(time.Second, nil)
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	ran := 0
	m.Register("a", func(ctx context.Context) error { ran++; return errA })
	m.Register("b", func(ctx context.Context) error { ran++; return errB })
	m.Register("c", func(ctx context.Context) error { ran++; return nil })

	err := m.Shutdown(context.Background())
	if ran != 3 {
		t.Fatalf("expected all hooks to run, ran %d", ran)
	}
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected joined errors, got %v", err)
	}
}

func TestShutdownOnlyOnce(t *testing.T) {
	m := New(time.Second, nil)
	calls := 0
	m.Register("redis", func(ctx context.Context) error { calls++; return nil })

	_ = m.Shutdown(context.Background())
	_ = m.Shutdown(context.Background())
	m.Register("late", func(ctx context.Context) error { calls++; return nil })
	_ = m.Shutdown(context.Background())

	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
}

func TestShutdownPassesDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)
	var hadDeadline bool
	m.Register("monitor", func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	})
	_ = m.Shutdown(nil)
	if !hadDeadline {
		t.Fatal("expected hook context to carry a deadline")
	}
}
