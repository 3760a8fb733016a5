package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/MikeMC777/quickcart/internal/cart"
	"github.com/MikeMC777/quickcart/internal/config"
	"github.com/MikeMC777/quickcart/internal/db"
	"github.com/MikeMC777/quickcart/internal/invoice"
	"github.com/MikeMC777/quickcart/internal/logging"
	"github.com/MikeMC777/quickcart/internal/media"
	"github.com/MikeMC777/quickcart/internal/order"
	"github.com/MikeMC777/quickcart/internal/product"
	"github.com/MikeMC777/quickcart/internal/session"
	"github.com/MikeMC777/quickcart/internal/user"
	"github.com/MikeMC777/quickcart/internal/wishlist"
)

const storeName = "Quick Cart"

func main() {
	cfg := config.Load()
	logger := logging.New(logging.Options{Service: "storefront", Level: cfg.LogLevel, Debug: cfg.Debug})
	cfg.LogSummary(logger)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("db migrate")
	}
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect")
	}
	defer pool.Close()

	orders := order.NewService(order.NewPGRepo(pool), logger)
	router, err := newRouter(deps{
		Products:     product.NewPGRepo(pool),
		Carts:        cart.NewService(cart.NewPGRepo(pool)),
		Orders:       orders,
		Invoices:     invoice.NewService(orders, invoiceEngine(cfg, logger)),
		Wishlist:     wishlist.NewPGRepo(pool),
		Users:        user.NewService(user.NewPGRepo(pool)),
		Sessions:     session.NewManager(cfg.SecretKey, cfg.SessionTTL, !cfg.Debug),
		Media:        media.NewResolver(cfg.Cloudinary.CloudName),
		Log:          logger,
		AllowedHosts: cfg.AllowedHosts,
		Debug:        cfg.Debug,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("build router")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("storefront listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
	logger.Info().Msg("bye")
}

// invoiceEngine decides once, at startup, whether invoices can be rendered.
// A nil engine makes the invoice route answer 503.
func invoiceEngine(cfg config.Config, logger zerolog.Logger) invoice.Engine {
	if !cfg.InvoicePDFEnabled {
		logger.Warn().Msg("invoice PDF disabled by configuration")
		return nil
	}
	e := invoice.NewPDFEngine(storeName)
	if err := invoice.Probe(e); err != nil {
		logger.Warn().Err(err).Msg("invoice PDF unavailable")
		return nil
	}
	return e
}
