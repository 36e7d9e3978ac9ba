package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"runtime"
	"time"

	"github.com/kbukum/deliverykit/delivery"
	"github.com/kbukum/deliverykit/httpclient"
	"github.com/kbukum/deliverykit/jsonvalue"
	"github.com/kbukum/deliverykit/kvstore"
	"github.com/kbukum/deliverykit/logger"
	"github.com/kbukum/deliverykit/mboxcache"
	"github.com/kbukum/deliverykit/observability"
	"github.com/kbukum/deliverykit/orchestrator"
	"github.com/kbukum/deliverykit/session"
	"github.com/kbukum/deliverykit/version"
)

// Store namespaces inside the profile database.
const (
	nsProfile = "profile"
	nsCache   = "cache"
	nsLegacy  = "legacy"
)

const (
	cacheKeyPrefetched = "prefetched"
	cacheKeyLoaded     = "loaded"
)

// app is one mboxctl invocation: an orchestrator over the profile database.
// The content cache is restored on open and saved on close so display and
// click can follow a prefetch run in an earlier invocation.
type app struct {
	cfg      *appConfig
	log      *logger.Logger
	db       *sql.DB
	legacyDB *sql.DB
	cache    kvstore.Store
	orch     *orchestrator.Orchestrator
	shutdown observability.ShutdownFunc
}

func openApp(ctx context.Context, cfg *appConfig) (_ *app, err error) {
	log := logger.New(&cfg.Logging, appName)
	logger.SetGlobalLogger(log)

	a := &app{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.close(ctx)
		}
	}()

	cfg.Telemetry.ServiceName = appName
	cfg.Telemetry.ServiceVersion = version.Get().Short()
	if cfg.Telemetry.Environment == "" {
		cfg.Telemetry.Environment = cfg.Environment
	}
	if a.shutdown, err = observability.Init(ctx, cfg.Telemetry); err != nil {
		return nil, err
	}
	metrics, err := observability.NewDeliveryMetrics(observability.Meter(appName))
	if err != nil {
		return nil, err
	}

	if a.db, err = kvstore.OpenSQLite(cfg.Store.Path); err != nil {
		return nil, err
	}
	profile, err := kvstore.NewSQLiteStore(a.db, nsProfile)
	if err != nil {
		return nil, err
	}
	if a.cache, err = kvstore.NewSQLiteStore(a.db, nsCache); err != nil {
		return nil, err
	}
	migrator, err := a.legacyMigrator()
	if err != nil {
		return nil, err
	}

	cache := mboxcache.New(log)
	a.restoreCache(ctx, cache)

	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = version.Get().UserAgent(appName)
	}
	client, err := httpclient.New(cfg.HTTP)
	if err != nil {
		return nil, err
	}

	a.orch, err = orchestrator.New(ctx, orchestrator.Options{
		Config:    cfg.Delivery,
		Store:     profile,
		Migrator:  migrator,
		Cache:     cache,
		Transport: client,
		Host:      logHost{log: log.WithComponent("host")},
		Device:    a.device(),
		Metrics:   metrics,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// legacyMigrator returns a migrator over the legacy database, or nil when
// none is configured.
func (a *app) legacyMigrator() (session.LegacyMigrator, error) {
	path := a.cfg.Store.LegacyPath
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	db, err := kvstore.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	a.legacyDB = db
	legacy, err := kvstore.NewSQLiteStore(db, nsLegacy)
	if err != nil {
		return nil, err
	}
	return session.KeyMigrator{Legacy: legacy}, nil
}

func (a *app) device() delivery.StaticDevice {
	info := version.Get()
	_, offset := time.Now().Zone()
	name, _ := os.Hostname()
	if a.cfg.Device.Name != "" {
		name = a.cfg.Device.Name
	}
	return delivery.StaticDevice{
		UserAgent:             info.UserAgent(appName),
		DeviceName:            name,
		DeviceType:            a.cfg.Device.Type,
		PlatformType:          runtime.GOOS,
		AppID:                 appName,
		AppName:               appName,
		AppVersion:            info.Version,
		ScreenWidth:           a.cfg.Device.ScreenWidth,
		ScreenHeight:          a.cfg.Device.ScreenHeight,
		TimezoneOffsetMinutes: offset / 60,
	}
}

func (a *app) restoreCache(ctx context.Context, cache *mboxcache.Cache) {
	prefetched, err := a.readTier(ctx, cacheKeyPrefetched)
	if err != nil {
		a.log.Warn("cached content unreadable", logger.ErrorFields("restore_cache", err))
		return
	}
	loaded, err := a.readTier(ctx, cacheKeyLoaded)
	if err != nil {
		a.log.Warn("cached content unreadable", logger.ErrorFields("restore_cache", err))
		return
	}
	cache.MergePrefetched(prefetched)
	cache.SaveLoaded(loaded)
}

func (a *app) readTier(ctx context.Context, key string) (map[string]jsonvalue.Value, error) {
	raw, ok, err := a.cache.Get(ctx, key)
	if err != nil || !ok || raw == "" {
		return nil, err
	}
	var tier map[string]jsonvalue.Value
	if err := json.Unmarshal([]byte(raw), &tier); err != nil {
		return nil, err
	}
	return tier, nil
}

func (a *app) saveCache(ctx context.Context) {
	prefetched, loaded := a.orch.Cache().Export()
	for key, tier := range map[string]map[string]jsonvalue.Value{
		cacheKeyPrefetched: prefetched,
		cacheKeyLoaded:     loaded,
	} {
		raw, err := json.Marshal(tier)
		if err == nil {
			err = a.cache.Set(ctx, key, string(raw))
		}
		if err != nil {
			a.log.Warn("content cache not saved", logger.ErrorFields("save_cache", err))
		}
	}
}

func (a *app) close(ctx context.Context) {
	if a.orch != nil && a.cache != nil {
		a.saveCache(ctx)
	}
	if a.legacyDB != nil {
		_ = a.legacyDB.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.shutdown != nil {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := a.shutdown(sctx); err != nil {
			a.log.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}
}
