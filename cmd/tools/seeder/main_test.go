package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-voucher/internal/voucher"
)

func TestLoadSeedsAndInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vouchers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
vouchers:
  - code: hemat20
    name: Hemat 20%
    discount_type: percentage
    discount_value: 20
    max_discount: 50000
    ends_in: 720h
  - code: ongkir
    name: Potongan ongkir
    discount_type: fixed
    discount_value: 150
`), 0o600))

	seeds, err := loadSeeds(path)
	require.NoError(t, err)
	require.Len(t, seeds.Vouchers, 2)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	in, err := seeds.Vouchers[0].input(now)
	require.NoError(t, err)
	require.Equal(t, "HEMAT20", in.Code)
	require.Equal(t, voucher.DiscountPercentage, in.DiscountType)
	require.Nil(t, in.StartDate)
	require.Equal(t, now.Add(720*time.Hour), *in.EndDate)
	require.True(t, in.Active())
}

func TestSeedInputRejectsInvalid(t *testing.T) {
	_, err := seedVoucher{Code: "BAD", Name: "bad", DiscountType: "percentage", DiscountValue: 150}.input(time.Now())
	require.Error(t, err)

	_, err = seedVoucher{Code: "BAD", Name: "bad", DiscountType: "fixed", EndsIn: "soon"}.input(time.Now())
	require.Error(t, err)
}
