package roles

import (
	"context"
	"errors"
	"testing"
	"time"
)

type countingChecker struct {
	calls int
	err   error
}

func (c *countingChecker) IsPrivileged(_ context.Context, userID int64) (bool, error) {
	c.calls++
	return userID == 1, c.err
}

func TestCached_IsPrivileged(t *testing.T) {
	ctx := context.Background()
	next := &countingChecker{}
	c := NewCached(next, 8, time.Minute)

	for i := 0; i < 3; i++ {
		if ok, _ := c.IsPrivileged(ctx, 1); !ok {
			t.Fatal("user 1 should be privileged")
		}
		if ok, _ := c.IsPrivileged(ctx, 2); ok {
			t.Fatal("user 2 should not be privileged")
		}
	}
	if next.calls != 2 {
		t.Errorf("underlying checker called %d times, want 2", next.calls)
	}
}

func TestCached_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	next := &countingChecker{err: errors.New("timeout")}
	c := NewCached(next, 8, time.Minute)

	if _, err := c.IsPrivileged(ctx, 1); err == nil {
		t.Fatal("expected error")
	}
	next.err = nil
	if ok, err := c.IsPrivileged(ctx, 1); err != nil || !ok {
		t.Fatalf("IsPrivileged after recovery = %v, %v", ok, err)
	}
	if next.calls != 2 {
		t.Errorf("underlying checker called %d times, want 2", next.calls)
	}
}
