package service

import (
	"context"
	"sync"
	"time"

	"github.com/dujiao-next/loyalty/internal/cache"
	"github.com/dujiao-next/loyalty/internal/logger"
)

const (
	defaultUserLockTTL  = 5 * time.Second
	defaultUserLockWait = 3 * time.Second
)

// UserLocker 用户级互斥锁，保证同一用户的等级重算串行执行
type UserLocker interface {
	Lock(userID uint) (unlock func(), err error)
}

// NewUserLocker 创建用户锁：启用 Redis 时叠加分布式锁，否则仅进程内互斥
func NewUserLocker(ttl, wait time.Duration) UserLocker {
	local := newLocalUserLocker()
	if !cache.Enabled() {
		return local
	}
	if ttl <= 0 {
		ttl = defaultUserLockTTL
	}
	if wait <= 0 {
		wait = defaultUserLockWait
	}
	return &redisUserLocker{local: local, ttl: ttl, wait: wait}
}

type userLockEntry struct {
	mu   sync.Mutex
	refs int
}

type localUserLocker struct {
	mu    sync.Mutex
	locks map[uint]*userLockEntry
}

func newLocalUserLocker() *localUserLocker {
	return &localUserLocker{locks: make(map[uint]*userLockEntry)}
}

// Lock 获取进程内用户锁，无人持有时回收条目
func (l *localUserLocker) Lock(userID uint) (func(), error) {
	l.mu.Lock()
	entry, ok := l.locks[userID]
	if !ok {
		entry = &userLockEntry{}
		l.locks[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}, nil
}

type redisUserLocker struct {
	local *localUserLocker
	ttl   time.Duration
	wait  time.Duration
}

// Lock 先取进程内锁再取 Redis 锁，任一失败都会释放已持有的部分
func (l *redisUserLocker) Lock(userID uint) (func(), error) {
	unlockLocal, _ := l.local.Lock(userID)

	ctx, cancel := context.WithTimeout(context.Background(), l.wait)
	defer cancel()
	lock, err := cache.AcquireLock(ctx, cache.UserLockKey(userID), l.ttl)
	if err != nil {
		unlockLocal()
		return nil, err
	}
	return func() {
		releaseCtx, releaseCancel := context.WithTimeout(context.Background(), time.Second)
		defer releaseCancel()
		if err := lock.Release(releaseCtx); err != nil {
			logger.ForUser(userID).Warnw("user_lock_release_failed", "error", err)
		}
		unlockLocal()
	}, nil
}
