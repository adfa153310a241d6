package repository

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm duplicated", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "sqlite", err: errors.New("constraint failed: UNIQUE constraint failed: orders.order_no (2067)"), want: true},
		{name: "postgres", err: errors.New(`ERROR: duplicate key value violates unique constraint "idx_orders_order_no" (SQLSTATE 23505)`), want: true},
		{name: "other", err: errors.New("database is locked"), want: false},
	}
	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err); got != tc.want {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, got)
		}
	}
}

func TestLikeOperatorDefaultsToSQLite(t *testing.T) {
	if got := likeOperator(nil); got != "LIKE" {
		t.Fatalf("want LIKE got %s", got)
	}
}
