package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"ProductCatalog/internal/auth"
	"ProductCatalog/internal/catalog"
	"ProductCatalog/internal/config"
	"ProductCatalog/pkg/kit"
)

const service = "catalog"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load config: " + err.Error())
	}

	log, err := kit.NewLogger(service, cfg.Log.Level)
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
		log.Fatal("create data dir failed", zap.Error(err), zap.String("path", cfg.Store.Path))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storeMetrics := catalog.NewMetrics(reg)

	svc := catalog.NewService(catalog.NewCSVUnitOfWorkFactory(cfg.Store, log, storeMetrics), log)
	s := &catalog.Server{
		Service: svc,
		Log:     log,
		Ping:    cfg.Store.Ping,
	}

	var keys *auth.KeyMaker
	if cfg.Auth.Enabled() {
		keys = auth.NewKeyMaker(cfg.Auth.APIKeySecret)
	} else {
		log.Warn("API_KEY_SECRET not set, product routes are unauthenticated")
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   cfg.Metrics.Token,
		Keys:           keys,
		WriteLimiter:   kit.NewIPRateLimiter(cfg.Limits.WritesPerMinute, time.Minute),
	})

	log.Info("catalog store",
		zap.String("file", cfg.Store.Path),
		zap.Duration("lock_timeout", cfg.Store.LockTimeout),
		zap.Duration("lock_poll", cfg.Store.PollInterval),
		zap.Duration("lock_stale_after", cfg.Store.StaleAfter),
	)

	err = kit.RunHTTPServer(context.Background(), kit.ServerConfig{
		Addr:            cfg.HTTP.Addr,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, h, log)
	if err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
