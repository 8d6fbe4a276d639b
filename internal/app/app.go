package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/five82/skytrack/internal/api"
	"github.com/five82/skytrack/internal/cache"
	"github.com/five82/skytrack/internal/config"
	"github.com/five82/skytrack/internal/logger"
	"github.com/five82/skytrack/internal/metrics"
	"github.com/five82/skytrack/internal/opensky"
	"github.com/five82/skytrack/internal/prefs"
	"github.com/five82/skytrack/internal/refresh"
	"github.com/five82/skytrack/internal/state"
	"github.com/five82/skytrack/internal/ui"
)

// Options configure the skytrack application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/skytrack/prefs.toml
	PollEvery  int    // seconds; zero uses the configured interval
	Headless   bool   // serve the HTTP API instead of the TUI
}

// Run boots skytrack until the context is cancelled or the TUI exits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.PollEvery > 0 {
		cfg.PollInterval = time.Duration(opts.PollEvery) * time.Second
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := prefs.Load(prefsPath)

	logCfg := logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}
	if !opts.Headless && logCfg.File == "" {
		// The TUI owns the terminal.
		logCfg.File = cfg.TUILogPath()
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	sys, err := build(cfg, log, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer sys.close()

	viewport := cfg.Viewport
	if userPrefs.Viewport != nil {
		viewport = *userPrefs.Viewport
	}
	if userPrefs.Country != "" {
		sys.scheduler.SetSelectedCountry(userPrefs.Country)
	}
	sys.scheduler.StartWatching(viewport.Region())

	log.Info("skytrack started",
		logger.String("region", viewport.Region().String()),
		logger.Duration("interval", sys.scheduler.Interval()),
		logger.Bool("headless", opts.Headless),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		watchStore(gctx, sys.store, log.Named("monitor"))
		return nil
	})

	if opts.Headless {
		router := api.NewRouter(sys.scheduler, sys.store, sys.metrics.Handler(), log)
		g.Go(func() error {
			return api.Serve(gctx, cfg.ListenAddr, router.Routes(), log)
		})
	} else {
		uiCtx, stopUI := context.WithCancel(gctx)
		defer stopUI()
		g.Go(func() error {
			// Quitting the TUI ends the whole program.
			defer stopUI()
			return ui.Run(ui.Options{
				Context:    uiCtx,
				Controller: sys.scheduler,
				Store:      sys.store,
				Viewport:   viewport,
				ThemeName:  userPrefs.Theme,
				PrefsPath:  prefsPath,
				LogPath:    logCfg.File,
				Logger:     log,

				KeepPollingInDialogs: !cfg.PauseOnModal,
			})
		})
		g.Go(func() error {
			<-uiCtx.Done()
			return errUIClosed
		})
	}

	err = g.Wait()
	if errors.Is(err, errUIClosed) || errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Info("skytrack stopped")
	return err
}

var errUIClosed = errors.New("ui closed")

// system is the wired fetch pipeline shared by both front ends.
type system struct {
	cache     cache.Cache
	client    *opensky.Client
	store     *state.Store
	scheduler *refresh.Scheduler
	metrics   *metrics.Collector
	log       *logger.Logger
}

func build(cfg config.Config, log *logger.Logger, reg *prometheus.Registry) (*system, error) {
	collector, err := metrics.New(reg)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	c, err := cache.Open(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	client, err := opensky.NewClient(opensky.Options{
		BaseURL:   cfg.APIBaseURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.RequestTimeout,
		Logger:    log,
		Metrics:   collector,
	})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("init opensky client: %w", err)
	}

	store := state.NewStore(state.Options{Cache: c, Logger: log, Metrics: collector})

	policy := refresh.ResumeNextTick
	if cfg.ResumePolicy == config.ResumeImmediate {
		policy = refresh.ResumeImmediate
	}
	sched := refresh.New(refresh.Options{
		Fetcher:                client,
		Store:                  store,
		Interval:               cfg.PollInterval,
		ResumePolicy:           policy,
		SuspendOnError:         cfg.SuspendOnError,
		RefetchOnCountryChange: cfg.RefetchOnCountryChange,
		Logger:                 log,
		Metrics:                collector,
	})

	return &system{
		cache:     c,
		client:    client,
		store:     store,
		scheduler: sched,
		metrics:   collector,
		log:       log,
	}, nil
}

// close stops fetching before the cache goes away.
func (s *system) close() {
	s.scheduler.Close()
	if err := s.cache.Close(); err != nil {
		s.log.Warn("close cache failed", logger.Error(err))
	}
}
