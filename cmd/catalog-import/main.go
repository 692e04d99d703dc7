// Command catalog-import bulk-loads products from gzipped JSON-lines files
// into the catalog. Each input file holds one product object per line; files
// are parsed concurrently and invalid records are skipped with a log line.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/techzone/storefront/internal/domain/catalog"
	"github.com/techzone/storefront/internal/repository"
)

const progressEvery = 10_000

type productLine struct {
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

// fileResult holds the valid products parsed from a single file.
type fileResult struct {
	products []catalog.Product
	skipped  int
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.jsonl.gz catalog files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob data dir")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz files found in %s", dataDir)
	}

	slog.Info("parsing catalog files", slog.Int("files", len(files)))

	results, err := parseFiles(ctx, files)
	if err != nil {
		return errors.Wrap(err, "parse catalog files")
	}

	// Merge and dedupe by product name, first occurrence wins.
	seen := make(map[string]struct{})
	var products []catalog.Product
	var skipped int
	for _, r := range results {
		skipped += r.skipped
		for _, p := range r.products {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			products = append(products, p)
		}
	}

	slog.Info("parsed products",
		slog.Int("valid", len(products)),
		slog.Int("skipped", skipped),
	)

	if len(products) == 0 {
		slog.Info("nothing to import")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return writeProducts(ctx, repository.NewProductRepository(pool), products)
}

// parseFiles reads every file concurrently, one goroutine per file.
func parseFiles(ctx context.Context, files []string) ([]fileResult, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(parseFile(ctx, i, f, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func parseFile(ctx context.Context, idx int, path string, results []fileResult) func() error {
	return func() error {
		var (
			products []catalog.Product
			skipped  int
			count    uint64
		)

		if err := streamGzFile(ctx, path, func(line []byte) {
			count++
			if count%progressEvery == 0 {
				slog.Info("parse progress",
					slog.Int("file", idx+1),
					slog.Uint64("lines", count),
				)
			}

			var rec productLine
			if err := json.Unmarshal(line, &rec); err != nil {
				skipped++
				return
			}
			p, err := toProduct(rec)
			if err != nil {
				slog.Warn("skipping invalid product",
					slog.Int("file", idx+1),
					slog.String("name", rec.Name),
					slog.String("reason", err.Error()),
				)
				skipped++
				return
			}
			products = append(products, p)
		}); err != nil {
			return errors.Wrapf(err, "parse file %d", idx+1)
		}

		slog.Info("parse complete",
			slog.Int("file", idx+1),
			slog.Uint64("lines", count),
			slog.Int("valid", len(products)),
		)

		results[idx] = fileResult{products: products, skipped: skipped}
		return nil
	}
}

func toProduct(rec productLine) (catalog.Product, error) {
	if rec.Name == "" {
		return catalog.Product{}, errors.New("empty name")
	}
	if rec.Price.Sign() <= 0 {
		return catalog.Product{}, errors.New("non-positive price")
	}
	if len(rec.StorageModifiers) > len(rec.StorageOptions) {
		return catalog.Product{}, errors.New("more storage modifiers than storage options")
	}
	for _, m := range rec.StorageModifiers {
		if m.Sign() <= 0 {
			return catalog.Product{}, errors.New("non-positive storage modifier")
		}
	}
	if rec.Stock < 0 {
		return catalog.Product{}, errors.New("negative stock")
	}

	return catalog.Product{
		Name:             rec.Name,
		Price:            rec.Price,
		DiscountPrice:    rec.DiscountPrice,
		Colors:           rec.Colors,
		StorageOptions:   rec.StorageOptions,
		StorageModifiers: rec.StorageModifiers,
		Stock:            rec.Stock,
		IsBestSeller:     rec.IsBestSeller,
		IsFeatured:       rec.IsFeatured,
		IsNewArrival:     rec.IsNewArrival,
		Description:      rec.Description,
		Images:           rec.Images,
	}, nil
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line []byte)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Bytes())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// writeProducts inserts products that are not yet in the catalog, matching by
// name.
func writeProducts(ctx context.Context, repo *repository.ProductRepository, products []catalog.Product) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list existing products")
	}
	known := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		known[p.Name] = struct{}{}
	}

	slog.Info("writing products to database", slog.Int("count", len(products)))

	var inserted int
	for i := range products {
		p := &products[i]
		if _, ok := known[p.Name]; ok {
			continue
		}
		if err := repo.Insert(ctx, p); err != nil {
			return errors.Wrapf(err, "insert product %q", p.Name)
		}
		inserted++
	}

	slog.Info("import done",
		slog.Int("inserted", inserted),
		slog.Int("already_present", len(products)-inserted),
	)

	return nil
}
