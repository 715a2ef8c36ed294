package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) *RedisCounterStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCounterStore(client, "")
}

func TestRedisCounterIncrement(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := uint(1); i <= 3; i++ {
		got, err := s.Increment(ctx, "g", "a", models.ActionChannelDelete, at)
		if err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
		if got != i {
			t.Errorf("Increment() = %d, want %d", got, i)
		}
	}

	counters, err := s.Counters(ctx, "g", "a")
	if err != nil {
		t.Fatalf("Counters() error = %v", err)
	}
	if len(counters) != 1 || counters[0].Count != 3 {
		t.Fatalf("Counters() = %+v, want one counter at 3", counters)
	}
	if !counters[0].LastActionAt.Equal(at) {
		t.Errorf("LastActionAt = %v, want %v", counters[0].LastActionAt, at)
	}
}

func TestRedisCounterConcurrent(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Increment(ctx, "g", "a", models.ActionMemberBan, time.Now())
		}()
	}
	wg.Wait()

	counters, err := s.Counters(ctx, "g", "a")
	if err != nil {
		t.Fatalf("Counters() error = %v", err)
	}
	if len(counters) != 1 || counters[0].Count != 50 {
		t.Errorf("Counters() = %+v, want count 50", counters)
	}
}

func TestRedisCounterReset(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()
	now := time.Now()

	_, _ = s.Increment(ctx, "g", "a", models.ActionMemberBan, now)
	_, _ = s.Increment(ctx, "g", "a", models.ActionMemberKick, now)
	_, _ = s.Increment(ctx, "g", "a", models.ActionMemberKick, now)

	kind := models.ActionMemberKick
	n, err := s.ResetCounters(ctx, "g", "a", &kind)
	if err != nil || n != 1 {
		t.Fatalf("ResetCounters(kick) = %d, %v, want 1, nil", n, err)
	}

	counters, _ := s.Counters(ctx, "g", "a")
	for _, c := range counters {
		switch c.ActionKind {
		case models.ActionMemberKick:
			if c.Count != 0 || c.ResetAt == nil {
				t.Errorf("kick counter = %+v, want zero with resetAt", c)
			}
		case models.ActionMemberBan:
			if c.Count != 1 {
				t.Errorf("ban counter = %d, want 1", c.Count)
			}
		}
	}

	n, err = s.ResetCounters(ctx, "g", "a", nil)
	if err != nil || n != 2 {
		t.Errorf("ResetCounters(all) = %d, %v, want 2, nil", n, err)
	}

	n, err = s.ResetCounters(ctx, "g", "nobody", nil)
	if err != nil || n != 0 {
		t.Errorf("ResetCounters(unknown) = %d, %v, want 0, nil", n, err)
	}

	got, _ := s.Increment(ctx, "g", "a", models.ActionMemberKick, now)
	if got != 1 {
		t.Errorf("Increment() after reset = %d, want 1", got)
	}
}
