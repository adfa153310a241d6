package service

import (
	"errors"
	"testing"

	"github.com/leafcart/internal/constants"
	"github.com/leafcart/internal/models"
)

func TestLevelForPoints(t *testing.T) {
	cases := []struct {
		points int64
		want   string
	}{
		{points: 0, want: constants.LoyaltyLevelBronze},
		{points: 1999, want: constants.LoyaltyLevelBronze},
		{points: 2000, want: constants.LoyaltyLevelSilver},
		{points: 4999, want: constants.LoyaltyLevelSilver},
		{points: 5000, want: constants.LoyaltyLevelGold},
		{points: 9999, want: constants.LoyaltyLevelGold},
		{points: 10000, want: constants.LoyaltyLevelPlatinum},
	}
	for _, tc := range cases {
		if got := LevelForPoints(tc.points); got != tc.want {
			t.Fatalf("LevelForPoints(%d) = %s, want %s", tc.points, got, tc.want)
		}
	}
}

func TestPointsForTotal(t *testing.T) {
	total, _ := models.ParseMoney("325.00")
	if got := PointsForTotal(total, 0.10); got != 32 {
		t.Fatalf("points want 32, got %d", got)
	}
	if got := PointsForTotal(models.MoneyFromInt(0), 0.10); got != 0 {
		t.Fatalf("zero total should earn nothing, got %d", got)
	}
}

func TestCreditPromotesLevelOnce(t *testing.T) {
	env := setupOrderServiceTest(t)

	txn, err := env.loyalty.Credit(env.user.ID, 1500, "order:1", nil)
	if err != nil {
		t.Fatalf("first credit failed: %v", err)
	}
	if txn.LevelAfter != constants.LoyaltyLevelBronze {
		t.Fatalf("1500 points should stay bronze, got %s", txn.LevelAfter)
	}
	txn, err = env.loyalty.Credit(env.user.ID, 600, "order:2", nil)
	if err != nil {
		t.Fatalf("second credit failed: %v", err)
	}
	if txn.BalanceAfter != 2100 || txn.LevelAfter != constants.LoyaltyLevelSilver {
		t.Fatalf("unexpected balance after promotion: %+v", txn)
	}

	replay, err := env.loyalty.Credit(env.user.ID, 600, "order:2", nil)
	if err != nil {
		t.Fatalf("replayed credit failed: %v", err)
	}
	if replay.ID != txn.ID {
		t.Fatalf("replay should return the first transaction")
	}

	account, err := env.loyalty.GetAccount(env.user.ID, 1, 10)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if account.Points != 2100 || account.Level != constants.LoyaltyLevelSilver {
		t.Fatalf("unexpected account: %+v", account)
	}
	if account.NextLevel != constants.LoyaltyLevelGold || account.PointsToNext != 2900 {
		t.Fatalf("unexpected next level: %s/%d", account.NextLevel, account.PointsToNext)
	}
	if account.Total != 2 {
		t.Fatalf("transactions want 2, got %d", account.Total)
	}
}

func TestCreditValidatesInput(t *testing.T) {
	env := setupOrderServiceTest(t)
	if _, err := env.loyalty.Credit(env.user.ID, -1, "ref", nil); !errors.Is(err, ErrInvalidLoyaltyPoints) {
		t.Fatalf("negative points want ErrInvalidLoyaltyPoints, got %v", err)
	}
	if _, err := env.loyalty.Credit(env.user.ID, 10, "", nil); !errors.Is(err, ErrLoyaltyReferenceMissing) {
		t.Fatalf("empty reference want ErrLoyaltyReferenceMissing, got %v", err)
	}
	if _, err := env.loyalty.Credit(9999, 10, "ref", nil); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("missing user want ErrUserNotFound, got %v", err)
	}
}
