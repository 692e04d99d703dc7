package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/techzone/storefront/internal/domain/catalog"
	"github.com/techzone/storefront/internal/domain/voucher"
	"github.com/techzone/storefront/internal/repository"
)

type productJSON struct {
	Name             string            `json:"name"`
	Price            decimal.Decimal   `json:"price"`
	DiscountPrice    *decimal.Decimal  `json:"discountPrice"`
	Colors           []string          `json:"colors"`
	StorageOptions   []string          `json:"storageOptions"`
	StorageModifiers []decimal.Decimal `json:"storageModifiers"`
	Stock            int               `json:"stock"`
	IsBestSeller     bool              `json:"isBestSeller"`
	IsFeatured       bool              `json:"isFeatured"`
	IsNewArrival     bool              `json:"isNewArrival"`
	Description      string            `json:"description"`
	Images           []string          `json:"images"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, repository.NewProductRepository(pool), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if err := seedVouchers(ctx, repository.NewVoucherRepository(pool)); err != nil {
		return errors.Wrap(err, "seed vouchers")
	}

	return nil
}

func seedProducts(ctx context.Context, repo *repository.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	existing, err := repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list existing products")
	}
	known := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		known[p.Name] = struct{}{}
	}

	slog.Info("inserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if _, ok := known[p.Name]; ok {
			slog.Info("product already seeded, skipping", slog.String("name", p.Name))
			continue
		}

		product := catalog.Product{
			Name:             p.Name,
			Price:            p.Price,
			DiscountPrice:    p.DiscountPrice,
			Colors:           p.Colors,
			StorageOptions:   p.StorageOptions,
			StorageModifiers: p.StorageModifiers,
			Stock:            p.Stock,
			IsBestSeller:     p.IsBestSeller,
			IsFeatured:       p.IsFeatured,
			IsNewArrival:     p.IsNewArrival,
			Description:      p.Description,
			Images:           p.Images,
		}
		if err := repo.Insert(ctx, &product); err != nil {
			return errors.Wrapf(err, "insert product %q", p.Name)
		}

		slog.Info("inserted product", slog.Int64("id", product.ID), slog.String("name", p.Name))
	}

	return nil
}

func seedVouchers(ctx context.Context, repo *repository.VoucherRepository) error {
	slog.Info("seeding demo vouchers")

	vouchers := []voucher.Voucher{
		{
			Code:               "WELCOM",
			Name:               "Welcome voucher",
			Description:        "10% off the first order",
			DiscountPercentage: decimal.NewFromInt(10),
			ExpiresAt:          time.Now().AddDate(1, 0, 0),
			IsActive:           true,
		},
		{
			Code:               "HALF50",
			Name:               "Half price voucher",
			Description:        "50% off one order",
			DiscountPercentage: decimal.NewFromInt(50),
			ExpiresAt:          time.Now().AddDate(0, 1, 0),
			IsActive:           true,
		},
	}

	for _, v := range vouchers {
		exists, err := repo.CodeExists(ctx, v.Code)
		if err != nil {
			return errors.Wrapf(err, "check voucher %s", v.Code)
		}
		if exists {
			slog.Info("voucher already seeded, skipping", slog.String("code", v.Code))
			continue
		}
		if err := repo.Insert(ctx, &v); err != nil {
			return errors.Wrapf(err, "insert voucher %s", v.Code)
		}

		slog.Info("inserted voucher", slog.String("code", v.Code), slog.String("description", v.Description))
	}

	return nil
}
