package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const ttl = 24 * time.Hour

// Both implementations must expose identical semantics; every case below runs
// against the Redis store (backed by miniredis) and the memory store.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return map[string]Store{
		"redis":  NewRedisStore(rdb),
		"memory": NewMemoryStore(),
	}
}

func TestAddContainsRemove(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Add(ctx, "user1", "tok-a", ttl); err != nil {
				t.Fatal(err)
			}
			if err := s.Add(ctx, "user1", "tok-a", ttl); err != nil { // set semantics
				t.Fatal(err)
			}
			ok, err := s.Contains(ctx, "user1", "tok-a")
			if err != nil || !ok {
				t.Fatalf("Contains = %v, %v", ok, err)
			}
			if ok, _ := s.Contains(ctx, "user1", "tok-b"); ok {
				t.Fatal("unknown token reported present")
			}
			if ok, _ := s.Contains(ctx, "user2", "tok-a"); ok {
				t.Fatal("token leaked across subjects")
			}
			present, err := s.Remove(ctx, "user1", "tok-a")
			if err != nil || !present {
				t.Fatalf("Remove = %v, %v", present, err)
			}
			present, err = s.Remove(ctx, "user1", "tok-a")
			if err != nil || present {
				t.Fatalf("second Remove = %v, %v, want absent", present, err)
			}
		})
	}
}

func TestRotate(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Add(ctx, "user1", "old", ttl); err != nil {
				t.Fatal(err)
			}
			rotated, err := s.Rotate(ctx, "user1", "old", "new", ttl)
			if err != nil || !rotated {
				t.Fatalf("Rotate = %v, %v", rotated, err)
			}
			if ok, _ := s.Contains(ctx, "user1", "old"); ok {
				t.Fatal("rotated-out token still present")
			}
			if ok, _ := s.Contains(ctx, "user1", "new"); !ok {
				t.Fatal("replacement token missing")
			}
			// Replaying the consumed token is the reuse signal.
			rotated, err = s.Rotate(ctx, "user1", "old", "newer", ttl)
			if err != nil {
				t.Fatal(err)
			}
			if rotated {
				t.Fatal("rotation of an absent token reported success")
			}
			if ok, _ := s.Contains(ctx, "user1", "newer"); ok {
				t.Fatal("failed rotation must not install the replacement")
			}
		})
	}
}

func TestRotateConcurrentSingleWinner(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Add(ctx, "user1", "shared", ttl); err != nil {
				t.Fatal(err)
			}
			const callers = 16
			var wg sync.WaitGroup
			wins := make(chan int, callers)
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					ok, err := s.Rotate(ctx, "user1", "shared", fmt.Sprintf("fresh-%d", i), ttl)
					if err != nil {
						t.Error(err)
						return
					}
					if ok {
						wins <- i
					}
				}(i)
			}
			wg.Wait()
			close(wins)
			var winners []int
			for w := range wins {
				winners = append(winners, w)
			}
			if len(winners) != 1 {
				t.Fatalf("got %d winning rotations, want exactly 1", len(winners))
			}
		})
	}
}

func TestClear(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_ = s.Add(ctx, "user1", "tok-a", ttl)
			_ = s.Add(ctx, "user1", "tok-b", ttl)
			_ = s.Add(ctx, "user2", "tok-c", ttl)
			if err := s.Clear(ctx, "user1"); err != nil {
				t.Fatal(err)
			}
			for _, tok := range []string{"tok-a", "tok-b"} {
				if ok, _ := s.Contains(ctx, "user1", tok); ok {
					t.Fatalf("%s survived Clear", tok)
				}
			}
			if ok, _ := s.Contains(ctx, "user2", "tok-c"); !ok {
				t.Fatal("Clear crossed subjects")
			}
		})
	}
}

// Redis session sets carry a TTL so abandoned sets age out without a sweeper.
func TestRedisSetExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	s := NewRedisStore(rdb)
	ctx := context.Background()

	if err := s.Add(ctx, "user1", "tok-a", time.Minute); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)
	if ok, _ := s.Contains(ctx, "user1", "tok-a"); ok {
		t.Fatal("session set outlived its TTL")
	}
}
