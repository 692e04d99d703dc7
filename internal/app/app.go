// Package app wires the storefront services together and runs the HTTP
// server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/techzone/storefront/internal/domain/order"
	"github.com/techzone/storefront/internal/domain/payment"
	"github.com/techzone/storefront/internal/domain/promotion"
	"github.com/techzone/storefront/internal/domain/shipping"
	"github.com/techzone/storefront/internal/domain/tax"
	"github.com/techzone/storefront/internal/domain/voucher"
	"github.com/techzone/storefront/internal/handler"
	"github.com/techzone/storefront/internal/repository"
	"github.com/techzone/storefront/pkg/health"
	"github.com/techzone/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := repository.NewProductRepository(pool)
	promotionRepo := repository.NewPromotionRepository(pool)
	voucherRepo := repository.NewVoucherRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	// Domain services.
	codegen := voucher.NewCodeGenerator(voucherRepo)
	if err := warmVoucherCodes(ctx, codegen, voucherRepo); err != nil {
		return errors.Wrap(err, "warm voucher codes")
	}

	voucherSvc := voucher.NewService(voucherRepo, codegen)
	promotionSvc := promotion.NewService(promotionRepo, productRepo, lg.Named("promotion"))
	orderSvc := order.NewService(
		productRepo,
		shipping.NewEstimator(),
		tax.NewCalculator(tax.DefaultRate),
		voucherRepo,
		payment.Sandbox{},
		orderRepo,
	)

	// Background sweep for expired promotions.
	if cfg.PromotionSweep > 0 {
		go promotionSweep(ctx, lg, promotionSvc, cfg.PromotionSweep)
	}

	// HTTP surface: API routes + health probes.
	h := handler.NewHandler(productRepo, orderSvc, promotionSvc, voucherSvc)
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	instrumented := otelhttp.NewHandler(mux, "storefront-api",
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(instrumented,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "X-User-ID", "X-User-Role"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// warmVoucherCodes seeds the code generator's bloom filter with every stored
// voucher code.
func warmVoucherCodes(ctx context.Context, codegen *voucher.CodeGenerator, repo *repository.VoucherRepository) error {
	const batch = 1000
	for skip := 0; ; skip += batch {
		codes, err := repo.ListCodes(ctx, skip, batch)
		if err != nil {
			return err
		}
		if len(codes) == 0 {
			return nil
		}
		codegen.Warm(codes)
	}
}

// promotionSweep periodically deactivates expired promotions and clears the
// discounts they left on products.
func promotionSweep(ctx context.Context, lg *zap.Logger, svc *promotion.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.ClearExpired(ctx); err != nil {
				lg.Error("Expired promotion sweep failed", zap.Error(err))
			}
		}
	}
}
