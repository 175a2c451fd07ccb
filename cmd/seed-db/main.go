// Command seed-db populates the database with demo vouchers and an API key.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/salescore/internal/domain/voucher"
	"github.com/xenking/salescore/internal/storage/postgres"
)

func main() {
	var (
		databaseURL  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or SALES_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SALES_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("SALES_SEED_API_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("SALES_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("seed completed")
}

func run(ctx context.Context, databaseURL, apiKey, apiKeyPepper string) error {
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedVouchers(ctx, postgres.NewVoucherRepository(pool)); err != nil {
		return errors.Wrap(err, "seed vouchers")
	}

	if apiKey != "" {
		hash := hashKey(apiKey, apiKeyPepper)
		if err := postgres.NewAPIKeyRepository(pool).InsertKey(ctx, hash, "seed"); err != nil {
			return errors.Wrap(err, "seed api key")
		}
		slog.Info("api key seeded")
	}
	return nil
}

func seedVouchers(ctx context.Context, repo *postgres.VoucherRepository) error {
	now := time.Now().UTC()
	expiry := now.AddDate(1, 0, 0)

	dec := func(v string) decimal.NullDecimal {
		return decimal.NullDecimal{Decimal: decimal.RequireFromString(v), Valid: true}
	}

	seeds := []*voucher.Voucher{
		voucher.New("TENOFF", dec("10"), decimal.NullDecimal{}, 100, voucher.DiscountPercentage, expiry, now),
		voucher.New("HALFPRICE", dec("50"), decimal.NullDecimal{}, 20, voucher.DiscountPercentage, expiry, now),
		voucher.New("WELCOME15", decimal.NullDecimal{}, dec("15"), 500, voucher.DiscountValue, expiry, now),
		voucher.New("FIVER", decimal.NullDecimal{}, dec("5"), 1000, voucher.DiscountValue, expiry, now),
	}

	for _, v := range seeds {
		if err := repo.Insert(ctx, v); err != nil {
			// unique code violation means the voucher is already seeded
			slog.Warn("skipping voucher", slog.String("code", v.Code), slog.String("error", err.Error()))
			continue
		}
		slog.Info("voucher seeded", slog.String("code", v.Code))
	}
	return nil
}

func hashKey(key, pepper string) string {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}
