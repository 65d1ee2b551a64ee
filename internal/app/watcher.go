package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/openkarotz-hq/karotz-go/internal/config"
	"github.com/openkarotz-hq/karotz-go/internal/httpapi"
	"github.com/openkarotz-hq/karotz-go/internal/logger"
	"github.com/openkarotz-hq/karotz-go/internal/metrics"
	"github.com/openkarotz-hq/karotz-go/internal/monitor"
	"github.com/openkarotz-hq/karotz-go/internal/storage"
	"github.com/openkarotz-hq/karotz-go/pkg/devices"
	"github.com/openkarotz-hq/karotz-go/pkg/karotz"
	"github.com/openkarotz-hq/karotz-go/pkg/publishers"
)

const shutdownTimeout = 5 * time.Second

// Watcher is the device watcher runtime. It runs the poll loop, owns the
// publishers and the store, and serves the HTTP API next to the loop.
type Watcher struct {
	cfg          *config.Config
	devices      *devices.Registry
	fanout       *publishers.Fanout
	monitor      *monitor.Service
	metrics      *metrics.Metrics
	clients      *clientCache
	pollInterval time.Duration
	log          logger.Logger
	store        storage.Store
	server       *http.Server
}

// NewWatcher builds a watcher runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	deviceReg, err := devices.Load(cfg.DevicesFile)
	if err != nil {
		return nil, fmt.Errorf("load devices registry: %w", err)
	}
	deviceIDs := make([]string, 0)
	for _, d := range deviceReg.Enabled() {
		deviceIDs = append(deviceIDs, d.ID)
	}
	log.InfoObj("devices registry loaded", "devices_meta", map[string]any{
		"count":   len(deviceReg.All()),
		"enabled": deviceIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]any, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]any{
			"id":     pubCfg.ID,
			"type":   pubCfg.Type,
			"events": pubCfg.Events,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		SnapshotTTL:     cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"snapshot_ttl_seconds":     int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	m := metrics.New()
	clients := newClientCache(log, cfg.RequestTimeout)
	svc := monitor.NewService(clients.monitorClient, fanout, log, store, m)

	w := &Watcher{
		cfg:          cfg,
		devices:      deviceReg,
		fanout:       fanout,
		monitor:      svc,
		metrics:      m,
		clients:      clients,
		pollInterval: minPollInterval(cfg.PollInterval, deviceReg.Enabled()),
		log:          log,
		store:        store,
	}

	if cfg.HTTPAddr != "" {
		api := &httpapi.Server{
			Devices:    deviceReg,
			States:     svc,
			Commanders: clients.commander,
			Metrics:    m.Handler(),
			Recorder:   m,
			Log:        log,
		}
		w.server = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.Routes(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return w, nil
}

// Run starts the poll loop and the HTTP API until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.monitor == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()

	if w.server != nil {
		go w.serve()
		defer w.shutdownServer()
	}

	devs := w.devices.Enabled()
	if len(devs) == 0 {
		w.log.WarnObj("no enabled devices; watcher idle", "devices_file", w.cfg.DevicesFile)
		<-ctx.Done()
		return nil
	}

	w.log.InfoObj("watcher loop starting", "watcher_state", map[string]any{
		"devices_count":    len(devs),
		"publishers_count": w.fanout.Size(),
		"tick_interval":    w.pollInterval.String(),
		"http_addr":        w.cfg.HTTPAddr,
	})

	if err := w.runOnce(ctx, devs); err != nil {
		w.log.ErrorObj("initial poll failed", "error", err.Error())
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watcher loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := w.runOnce(ctx, devs); err != nil {
				w.log.ErrorObj("scheduled poll failed", "error", err.Error())
			}
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context, devs []devices.Device) error {
	start := time.Now()
	err := w.monitor.Run(ctx, devs)
	w.log.DebugObj("poll pass completed", "poll_meta", map[string]any{
		"devices_count": len(devs),
		"elapsed_ms":    time.Since(start).Milliseconds(),
		"failed":        err != nil,
	})
	return err
}

func (w *Watcher) serve() {
	w.log.InfoObj("http api listening", "http_addr", w.server.Addr)
	if err := w.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		w.log.ErrorObj("http api stopped", "error", err.Error())
	}
}

func (w *Watcher) shutdownServer() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := w.server.Shutdown(ctx); err != nil {
		w.log.ErrorObj("http api shutdown failed", "error", err.Error())
	}
}

// close releases the publishers and the storage backend, logging any errors.
func (w *Watcher) close() {
	if err := w.fanout.Close(); err != nil {
		w.log.ErrorObj("publishers close failed", "error", err.Error())
	}
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			w.log.ErrorObj("storage close failed", "error", err.Error())
		}
	}
}

// minPollInterval picks the loop tick: the configured interval, shortened to
// the fastest device schedule.
func minPollInterval(base time.Duration, devs []devices.Device) time.Duration {
	tick := base
	for _, d := range devs {
		if iv := d.PollInterval(); tick <= 0 || iv < tick {
			tick = iv
		}
	}
	if tick <= 0 {
		tick = time.Minute
	}
	return tick
}

// clientCache hands out one karotz client per device to the monitor and the API.
type clientCache struct {
	mu      sync.Mutex
	log     logger.Logger
	timeout time.Duration
	clients map[string]*karotz.Client
}

func newClientCache(log logger.Logger, timeout time.Duration) *clientCache {
	return &clientCache{log: log, timeout: timeout, clients: make(map[string]*karotz.Client)}
}

func (c *clientCache) get(d devices.Device) (*karotz.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cl, ok := c.clients[d.ID]; ok {
		return cl, nil
	}

	timeout := d.Timeout()
	if d.TimeoutSeconds <= 0 && c.timeout > 0 {
		timeout = c.timeout
	}
	cl, err := karotz.New(d.Host, karotz.WithLogger(c.log), karotz.WithTimeout(timeout))
	if err != nil {
		return nil, err
	}
	c.clients[d.ID] = cl
	return cl, nil
}

func (c *clientCache) monitorClient(d devices.Device) (monitor.DeviceClient, error) {
	cl, err := c.get(d)
	if err != nil {
		return nil, err
	}
	return cl, nil
}

func (c *clientCache) commander(d devices.Device) (httpapi.Commander, error) {
	cl, err := c.get(d)
	if err != nil {
		return nil, err
	}
	return cl, nil
}
