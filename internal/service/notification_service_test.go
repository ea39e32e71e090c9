package service

import (
	"errors"
	"testing"

	"github.com/dujiao-next/loyalty/internal/constants"
)

func TestNotificationListAndMarkAllRead(t *testing.T) {
	env := setupLoyaltyTestEnv(t)
	env.createUser(t, 1, 0)
	for i := 0; i < 3; i++ {
		env.completeOrder(t, uint(i+1), 1)
	}
	if _, err := env.loyalty.Update(1); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := env.notifications.Add(1, "custom", "hello", nil); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	list, err := env.notifications.List(1, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if list.Total != 2 || list.UnreadCount != 2 || len(list.Items) != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}
	if user := env.reloadUser(t, 1); user.NewTierUnlocked != constants.TierRookie {
		t.Fatalf("unlock marker expected, got %q", user.NewTierUnlocked)
	}

	affected, err := env.notifications.MarkAllRead(1)
	if err != nil || affected != 2 {
		t.Fatalf("mark all read: affected=%d err=%v", affected, err)
	}
	unread, err := env.notifications.UnreadCount(1)
	if err != nil || unread != 0 {
		t.Fatalf("unread should be 0, got %d err=%v", unread, err)
	}
	if user := env.reloadUser(t, 1); user.NewTierUnlocked != "" {
		t.Fatalf("unlock marker should be cleared, got %q", user.NewTierUnlocked)
	}
}

func TestOnTierChangedIgnoresDowngrade(t *testing.T) {
	env := setupLoyaltyTestEnv(t)
	env.createUser(t, 1, 0)
	err := env.notifications.OnTierChanged(TierChangeEvent{
		UserID:       1,
		PreviousTier: constants.TierHustler,
		NewTier:      constants.TierRookie,
		Upgraded:     false,
	})
	if err != nil {
		t.Fatalf("downgrade should be ignored, got %v", err)
	}
	if count, _ := env.notifications.UnreadCount(1); count != 0 {
		t.Fatalf("no notification expected, got %d", count)
	}
}

func TestNotificationAddRejectsInvalidInput(t *testing.T) {
	env := setupLoyaltyTestEnv(t)
	if _, err := env.notifications.Add(0, "x", "hello", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := env.notifications.Add(1, "x", "   ", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
