package service

import (
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

var affiliateCodePattern = regexp.MustCompile(`^FS1026[A-Z0-9]{3}$`)

func TestMintCodeFormatAndIdempotent(t *testing.T) {
	env := setupLoyaltyTestEnv(t)
	env.createUser(t, 1, 0)

	code, err := env.affiliate.MintCode(1)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if !affiliateCodePattern.MatchString(code) {
		t.Fatalf("unexpected code format: %s", code)
	}
	again, err := env.affiliate.MintCode(1)
	if err != nil {
		t.Fatalf("second mint failed: %v", err)
	}
	if again != code {
		t.Fatalf("repeated mint should return existing code %s, got %s", code, again)
	}
	stored, err := env.affiliate.GetCode(1)
	if err != nil || stored != code {
		t.Fatalf("stored code mismatch: %s err=%v", stored, err)
	}
}

func TestMintCodeRejectsUnknownUser(t *testing.T) {
	env := setupLoyaltyTestEnv(t)
	if _, err := env.affiliate.MintCode(0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := env.affiliate.MintCode(404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMintCodeCollisionExhaustedWritesNothing(t *testing.T) {
	env := setupLoyaltyTestEnv(t)
	env.createUser(t, 1, 0)
	env.createUser(t, 2, 0)

	var mu sync.Mutex
	calls := 0
	env.generator.suffix = func(int, string) (string, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return "AAA", nil
	}
	first, err := env.affiliate.MintCode(1)
	if err != nil || first != "FS1026AAA" {
		t.Fatalf("first mint should take FS1026AAA, got %s err=%v", first, err)
	}

	calls = 0
	_, err = env.affiliate.MintCode(2)
	if !errors.Is(err, ErrCollisionExhausted) {
		t.Fatalf("expected ErrCollisionExhausted, got %v", err)
	}
	if calls != 10 {
		t.Fatalf("expected 10 attempts, got %d", calls)
	}
	if user := env.reloadUser(t, 2); user.AffiliateCode != nil {
		t.Fatalf("exhausted mint must not persist a code, got %s", *user.AffiliateCode)
	}
}

func TestMintCodeConcurrentUsersGetDistinctCodes(t *testing.T) {
	env := setupLoyaltyTestEnv(t)
	const n = 20
	for i := 1; i <= n; i++ {
		env.createUser(t, uint(i), 0)
	}

	codes := make([]string, n)
	var g errgroup.Group
	for i := 1; i <= n; i++ {
		idx := i
		g.Go(func() error {
			code, err := env.affiliate.MintCode(uint(idx))
			codes[idx-1] = code
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent mint failed: %v", err)
	}
	seen := make(map[string]struct{}, n)
	for _, code := range codes {
		if !affiliateCodePattern.MatchString(code) {
			t.Fatalf("unexpected code format: %s", code)
		}
		if _, ok := seen[code]; ok {
			t.Fatalf("duplicate code minted: %s", code)
		}
		seen[code] = struct{}{}
	}
}

func TestResolveCodeIsCaseInsensitive(t *testing.T) {
	env := setupLoyaltyTestEnv(t)
	env.createUser(t, 7, 0)
	code, err := env.affiliate.MintCode(7)
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	owner, err := env.affiliate.ResolveCode("  " + strings.ToLower(code) + " ")
	if err != nil || owner == nil || owner.ID != 7 {
		t.Fatalf("resolve failed: owner=%+v err=%v", owner, err)
	}
	missing, err := env.affiliate.ResolveCode("FS0000ZZZ")
	if err != nil || missing != nil {
		t.Fatalf("unknown code should resolve to nil, got %+v err=%v", missing, err)
	}
}
