package service

import (
	"sync"
	"testing"
	"time"
)

func TestLocalUserLockerSerializesSameUser(t *testing.T) {
	locker := newLocalUserLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(7)
			if err != nil {
				t.Errorf("lock failed: %v", err)
				return
			}
			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("expected exclusive access, max concurrent holders %d", maxSeen)
	}
	locker.mu.Lock()
	remaining := len(locker.locks)
	locker.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("lock entries should be released, got %d", remaining)
	}
}

func TestLocalUserLockerIndependentUsers(t *testing.T) {
	locker := newLocalUserLocker()
	unlockA, _ := locker.Lock(1)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB, _ := locker.Lock(2)
		unlockB()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("lock for another user should not block")
	}
}

func TestNewUserLockerWithoutRedis(t *testing.T) {
	if _, ok := NewUserLocker(time.Second, time.Second).(*localUserLocker); !ok {
		t.Fatalf("local locker expected when redis is disabled")
	}
}
