package repository

import (
	"testing"
	"time"

	"github.com/dujiao-next/loyalty/internal/constants"
	"github.com/dujiao-next/loyalty/internal/models"
)

func TestUserRepositoryReserveAffiliateCode(t *testing.T) {
	db := openRepositoryTestDB(t, "user_repo_reserve")
	repo := NewUserRepository(db)
	createRepositoryTestUser(t, db, 1)
	createRepositoryTestUser(t, db, 2)

	ok, err := repo.ReserveAffiliateCode(1, "FS1026ABC")
	if err != nil || !ok {
		t.Fatalf("first reserve should succeed, ok=%v err=%v", ok, err)
	}
	ok, err = repo.ReserveAffiliateCode(1, "FS1026XYZ")
	if err != nil {
		t.Fatalf("second reserve for same user failed: %v", err)
	}
	if ok {
		t.Fatalf("user already has a code, reserve should not apply")
	}

	_, err = repo.ReserveAffiliateCode(2, "FS1026ABC")
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation for taken code, got %v", err)
	}

	owner, err := repo.GetByAffiliateCode("FS1026ABC")
	if err != nil || owner == nil || owner.ID != 1 {
		t.Fatalf("lookup by code failed: owner=%+v err=%v", owner, err)
	}
	other, err := repo.GetByID(2)
	if err != nil || other == nil {
		t.Fatalf("get user 2 failed: %v", err)
	}
	if other.AffiliateCode != nil {
		t.Fatalf("user 2 should not have a code, got %s", *other.AffiliateCode)
	}
}

func TestUserRepositoryUpdateTierChecksVersion(t *testing.T) {
	db := openRepositoryTestDB(t, "user_repo_tier")
	repo := NewUserRepository(db)
	createRepositoryTestUser(t, db, 1)

	ok, err := repo.SetBaselineTier(1, constants.TierSubscriber)
	if err != nil || !ok {
		t.Fatalf("baseline should apply once, ok=%v err=%v", ok, err)
	}
	ok, err = repo.SetBaselineTier(1, constants.TierSubscriber)
	if err != nil || ok {
		t.Fatalf("baseline should not apply twice, ok=%v err=%v", ok, err)
	}

	user, _ := repo.GetByID(1)
	if user.TierVersion != 1 {
		t.Fatalf("expected version 1, got %d", user.TierVersion)
	}
	ok, err = repo.UpdateTier(1, 0, constants.TierRookie, constants.TierRookie)
	if err != nil || ok {
		t.Fatalf("stale version should not apply, ok=%v err=%v", ok, err)
	}
	ok, err = repo.UpdateTier(1, 1, constants.TierRookie, constants.TierRookie)
	if err != nil || !ok {
		t.Fatalf("matching version should apply, ok=%v err=%v", ok, err)
	}
	user, _ = repo.GetByID(1)
	if user.LoyaltyTier != constants.TierRookie || user.NewTierUnlocked != constants.TierRookie || user.TierVersion != 2 {
		t.Fatalf("unexpected user after update: %+v", user)
	}
	if err := repo.ClearNewTierUnlocked(1); err != nil {
		t.Fatalf("clear marker failed: %v", err)
	}
	user, _ = repo.GetByID(1)
	if user.NewTierUnlocked != "" {
		t.Fatalf("marker should be cleared, got %s", user.NewTierUnlocked)
	}
}

func TestUserRepositoryUpsertKeepsLoyaltyState(t *testing.T) {
	db := openRepositoryTestDB(t, "user_repo_upsert")
	repo := NewUserRepository(db)
	registered := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Second)

	if err := repo.Upsert(&models.User{ID: 9, Email: "a@example.com", RegisteredAt: registered, Status: constants.UserStatusActive}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := repo.IncrementReferralCount(9, 2); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if err := repo.Upsert(&models.User{ID: 9, Email: "b@example.com", RegisteredAt: time.Now().UTC(), Status: constants.UserStatusActive}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	user, err := repo.GetByID(9)
	if err != nil || user == nil {
		t.Fatalf("get user failed: %v", err)
	}
	if user.Email != "b@example.com" {
		t.Fatalf("email should refresh, got %s", user.Email)
	}
	if user.ReferralCount != 2 {
		t.Fatalf("referral count should be preserved, got %d", user.ReferralCount)
	}
	if !user.RegisteredAt.Equal(registered) {
		t.Fatalf("registered_at should be preserved, got %v want %v", user.RegisteredAt, registered)
	}
}

func TestUserRepositorySetReferrerRejectsSelfAndOverwrite(t *testing.T) {
	db := openRepositoryTestDB(t, "user_repo_referrer")
	repo := NewUserRepository(db)
	createRepositoryTestUser(t, db, 1)
	createRepositoryTestUser(t, db, 2)
	createRepositoryTestUser(t, db, 3)

	if ok, err := repo.SetReferrer(1, 1); err != nil || ok {
		t.Fatalf("self referral should be ignored, ok=%v err=%v", ok, err)
	}
	if ok, err := repo.SetReferrer(1, 2); err != nil || !ok {
		t.Fatalf("referrer should be set, ok=%v err=%v", ok, err)
	}
	if ok, err := repo.SetReferrer(1, 3); err != nil || ok {
		t.Fatalf("referrer should not be overwritten, ok=%v err=%v", ok, err)
	}
	user, _ := repo.GetByID(1)
	if user.ReferrerID == nil || *user.ReferrerID != 2 {
		t.Fatalf("unexpected referrer: %v", user.ReferrerID)
	}
}
