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

	"github.com/Porky3112/shopify-webhook/internal/generator"
	"github.com/Porky3112/shopify-webhook/internal/graph"
	"github.com/Porky3112/shopify-webhook/internal/handler"
	"github.com/Porky3112/shopify-webhook/internal/invoice"
	"github.com/Porky3112/shopify-webhook/internal/shopify"
	"github.com/Porky3112/shopify-webhook/pkg/health"
	"github.com/Porky3112/shopify-webhook/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("shop_domain", cfg.Shopify.Domain),
		zap.String("output_dir", cfg.OutputDir),
	)

	// Outbound clients are instrumented with the shared telemetry providers.
	outboundTransport := otelhttp.NewTransport(nil,
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)

	shopClient := shopify.NewClient(shopify.Config{
		Domain:      cfg.Shopify.Domain,
		AccessToken: cfg.Shopify.AccessToken,
		APIVersion:  cfg.Shopify.APIVersion,
	}, &http.Client{
		Timeout:   cfg.Shopify.Timeout,
		Transport: outboundTransport,
	})

	graphClient := graph.NewClient(graph.Credentials{
		ClientID:     cfg.Graph.ClientID,
		ClientSecret: cfg.Graph.ClientSecret,
		TenantID:     cfg.Graph.TenantID,
	}, &http.Client{
		Timeout:   cfg.Graph.Timeout,
		Transport: outboundTransport,
	})
	if !graphClient.Configured() && cfg.Delivery.UploadToCloud {
		lg.Warn("OneDrive upload enabled but Graph credentials are incomplete, uploads will be skipped")
	}

	renderer := invoice.NewRenderer(invoice.CompanyProfile{
		Name:    cfg.Company.Name,
		Address: cfg.Company.Address,
		Phone:   cfg.Company.Phone,
		Email:   cfg.Company.Email,
		TaxID:   cfg.Company.TaxID,
	}, invoice.CurrencyFormat{
		Symbol:         cfg.Currency.Symbol,
		GroupSeparator: cfg.Currency.GroupSeparator,
		Suffix:         cfg.Currency.Suffix,
		Decimals:       cfg.Currency.Decimals,
	}, cfg.OutputDir)

	svc := generator.NewService(shopClient, renderer, graphClient)

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("output_dir", 5*time.Second, health.DirWritableCheck(cfg.OutputDir))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	webhook := handler.NewWebhook(svc, generator.Options{
		SaveLocal:     cfg.Delivery.SaveLocal,
		UploadToCloud: cfg.Delivery.UploadToCloud,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/webhook", webhook)

	wrapped := httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowMethods: []string{http.MethodPost, http.MethodOptions},
			MaxAge:       86400,
		}),
		httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.LogRequests(),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(wrapped, "invoice-webhook",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
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
