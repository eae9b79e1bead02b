package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/toko-voucher/internal/obs"
	"github.com/noah-isme/toko-voucher/internal/voucher"
)

type seedFile struct {
	Vouchers []seedVoucher `yaml:"vouchers"`
}

type seedVoucher struct {
	Code          string   `yaml:"code"`
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	DiscountType  string   `yaml:"discount_type"`
	DiscountValue float64  `yaml:"discount_value"`
	MinPurchase   float64  `yaml:"min_purchase"`
	MaxDiscount   *float64 `yaml:"max_discount"`
	// StartsIn and EndsIn are offsets from the seeding time, e.g. "-24h" or "720h".
	StartsIn string `yaml:"starts_in"`
	EndsIn   string `yaml:"ends_in"`
	Active   *bool  `yaml:"active"`
}

func main() {
	path := flag.String("file", "db/seed/vouchers.yaml", "voucher seed file")
	flag.Parse()

	_ = godotenv.Load()
	logger := obs.NewLogger("console", "info")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set")
	}

	seeds, err := loadSeeds(*path)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *path).Msg("load seed file")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	inserted := seedVouchers(ctx, db, seeds.Vouchers, time.Now(), logger)
	logger.Info().Int("inserted", inserted).Int("total", len(seeds.Vouchers)).Msg("seeding completed")
}

func loadSeeds(path string) (seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return seedFile{}, err
	}
	var out seedFile
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return seedFile{}, fmt.Errorf("decode yaml: %w", err)
	}
	return out, nil
}

func seedVouchers(ctx context.Context, db *sql.DB, seeds []seedVoucher, now time.Time, logger zerolog.Logger) int {
	inserted := 0
	for _, s := range seeds {
		in, err := s.input(now)
		if err != nil {
			logger.Error().Err(err).Str("code", s.Code).Msg("skip voucher")
			continue
		}
		res, err := db.ExecContext(ctx, `
			INSERT INTO vouchers (code, name, description, discount_type, discount_value, min_purchase,
			                      max_discount, start_date, end_date, is_active)
			VALUES ($1, $2, NULLIF($3, ''), $4::discount_type, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (upper(code)) DO NOTHING;
		`, in.Code, in.Name, s.Description, string(in.DiscountType), in.DiscountValue, in.MinPurchase,
			in.MaxDiscount, in.StartDate, in.EndDate, in.Active())
		if err != nil {
			logger.Error().Err(err).Str("code", in.Code).Msg("seed voucher")
			continue
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted
}

func (s seedVoucher) input(now time.Time) (voucher.Input, error) {
	in := voucher.Input{
		Code:          voucher.NormalizeCode(s.Code),
		Name:          strings.TrimSpace(s.Name),
		DiscountType:  voucher.DiscountType(s.DiscountType),
		DiscountValue: s.DiscountValue,
		MinPurchase:   s.MinPurchase,
		MaxDiscount:   s.MaxDiscount,
		IsActive:      s.Active,
	}
	var err error
	if in.StartDate, err = offset(now, s.StartsIn); err != nil {
		return voucher.Input{}, fmt.Errorf("starts_in: %w", err)
	}
	if in.EndDate, err = offset(now, s.EndsIn); err != nil {
		return voucher.Input{}, fmt.Errorf("ends_in: %w", err)
	}
	if err := voucher.NewValidator().Struct(in); err != nil {
		return voucher.Input{}, err
	}
	return in, nil
}

func offset(now time.Time, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return nil, err
	}
	t := now.Add(d)
	return &t, nil
}
