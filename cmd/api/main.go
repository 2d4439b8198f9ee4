package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"BizRecords/internal/api"
	"BizRecords/internal/config"
	"BizRecords/internal/recordstore"
	"BizRecords/internal/shop"
	"BizRecords/pkg/kit"
)

func main() {
	service := "api"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "info").Fatal("load config failed", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	b, err := recordstore.Open(ctx, cfg.StoreOptions())
	if err != nil {
		log.Fatal("open store failed", zap.Error(err), zap.String("driver", cfg.Store.Driver))
	}

	s, err := shop.Open(ctx, b, log)
	if err != nil {
		_ = b.Close()
		log.Fatal("load collections failed", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	h := api.NewHandler(s, api.HTTPDeps{
		Log:              log,
		Service:          service,
		Registry:         reg,
		MetricsEnabled:   cfg.Metrics.Enabled,
		MetricsToken:     cfg.Metrics.Token,
		InvoiceRateLimit: cfg.InvoiceRateLimit,
	})

	log.Info("store ready", zap.String("driver", cfg.Store.Driver))

	err = kit.RunHTTPServer(":"+cfg.Port, h, log, func(context.Context) error {
		return s.Close()
	})
	if err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
