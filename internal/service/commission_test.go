package service

import (
	"testing"

	"github.com/realty-promo/internal/constants"
	"github.com/realty-promo/internal/models"

	"github.com/shopspring/decimal"
)

func decimalPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func TestComputeCommissionFixedRent(t *testing.T) {
	amounts := []int64{0, 120, 999999}
	areas := []*decimal.Decimal{nil, decimalPtr("10"), decimalPtr("500")}
	cases := map[string]int64{
		constants.TransactionTypeDailyRent:     3,
		constants.TransactionTypeMonthlyRent:   5,
		constants.TransactionTypePermanentRent: 10,
	}
	for txType, want := range cases {
		for _, amount := range amounts {
			for _, area := range areas {
				got := ComputeCommission(txType, models.NewMoneyFromInt(amount), area)
				if !got.Equal(decimal.NewFromInt(want)) {
					t.Fatalf("%s amount=%d: want %d got %s", txType, amount, want, got.String())
				}
			}
		}
	}
}

func TestComputeCommissionSaleTiers(t *testing.T) {
	cases := []struct {
		name string
		area *decimal.Decimal
		want int64
	}{
		{name: "large", area: decimalPtr("250"), want: 100},
		{name: "boundary", area: decimalPtr("200"), want: 50},
		{name: "just_above", area: decimalPtr("200.01"), want: 100},
		{name: "small", area: decimalPtr("45.5"), want: 50},
		{name: "unknown_area", area: nil, want: 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeCommission(constants.TransactionTypeSale, models.NewMoneyFromInt(350000), tc.area)
			if !got.Equal(decimal.NewFromInt(tc.want)) {
				t.Fatalf("want %d got %s", tc.want, got.String())
			}
		})
	}
}

func TestComputeCommissionUnknownType(t *testing.T) {
	got := ComputeCommission("lease_to_own", models.NewMoneyFromInt(1000), decimalPtr("300"))
	if !got.IsZero() {
		t.Fatalf("unknown type should yield zero commission, got %s", got.String())
	}
	if IsTransactionTypeValid("lease_to_own") {
		t.Fatalf("unknown type should not be valid")
	}
	if !IsTransactionTypeValid(" Sale ") {
		t.Fatalf("sale should be valid regardless of case/spacing")
	}
}
