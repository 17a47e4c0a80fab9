package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"gomediaserver/internal/catalog"
	"gomediaserver/internal/config"
	"gomediaserver/internal/discovery"
	"gomediaserver/internal/httpcore"
	"gomediaserver/internal/media"
	"gomediaserver/internal/middleware"
	"gomediaserver/internal/monitor"
	"gomediaserver/internal/probe"
	"gomediaserver/internal/scanner"
	"gomediaserver/internal/soap"
	"gomediaserver/internal/webui"
)

const (
	serverManufacturer    = "GoMediaServer Project"
	serverManufacturerURL = "https://github.com/"
	serverModelName       = "GoMediaServer"
	serverModelNumber     = "1"

	// monitorDebounce coalesces bursts of filesystem events (e.g. copying a
	// season of episodes) into a single rescan.
	monitorDebounce = 2 * time.Second
)

// App wires together the catalog store, scanner, filesystem monitor, SSDP
// discovery, and the HTTP surface (SOAP control points, media streaming,
// descriptors, and the small webui) described by cfg.
type App struct {
	logger  *slog.Logger
	cfg     *config.Config
	store   *catalog.Store
	scanner *scanner.Scanner
	roots   []string
	monitor *shutdownMonitor
}

func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	dbPath := filepath.Join(cfg.Catalog.DBPath, "files.db")
	store, err := catalog.Open(context.Background(), dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	scanRoots, roots, err := buildScanRoots(cfg.Media.Volumes)
	if err != nil {
		store.Close()
		return nil, err
	}

	prober := probe.New(probe.NewFFProber(), logger)
	sc := scanner.New(store, prober, scanRoots, logger)

	shutdownMon := NewShutdownMonitor(cfg.ShutdownTimers, logger)

	return &App{
		logger:  logger,
		cfg:     cfg,
		store:   store,
		scanner: sc,
		roots:   roots,
		monitor: shutdownMon,
	}, nil
}

// buildScanRoots flattens volume configuration into scanner.Root entries
// (one per configured path, each minted its own top-level container id) and
// the plain absolute-path list httpcore needs for wide-link resolution.
func buildScanRoots(volumes []config.VolumeConfig) ([]scanner.Root, []string, error) {
	var scanRoots []scanner.Root
	var roots []string
	ordinal := 1

	for _, vol := range volumes {
		for _, p := range vol.Paths {
			abs, err := filepath.Abs(p)
			if err != nil {
				return nil, nil, fmt.Errorf("resolve volume path %q: %w", p, err)
			}
			scanRoots = append(scanRoots, scanner.Root{
				Path:     abs,
				Kinds:    vol.Kinds,
				ObjectID: catalog.MintChildID(catalog.RootObjectID, ordinal),
			})
			roots = append(roots, abs)
			ordinal++
		}
	}
	return scanRoots, roots, nil
}

func main() {
	stderr := os.Stderr

	cfg := config.DefaultConfig()
	if err := config.ParseArgs(cfg, os.Args[1:], stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Logger.Level})
	logger := slog.New(logHandler).With("app", "gomediaserver")

	app, err := NewApp(cfg, logger)
	if err != nil {
		logger.Error("initialization failed", "error", err)
		os.Exit(1)
	}
	defer app.store.Close()

	if err := app.Run(context.Background()); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

func (a *App) Run(rootCtx context.Context) error {
	hostIP, err := getLocalIP()
	if err != nil {
		return fmt.Errorf("failed to determine local IP: %w", err)
	}

	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, port, err := net.SplitHostPort(a.cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("invalid port number: %s", port)
	}
	serverPort, _ := strconv.Atoi(port)

	a.logger.Info("running initial catalog scan")
	scanStart := time.Now()
	if err := a.scanner.Run(ctx); err != nil {
		return fmt.Errorf("initial scan: %w", err)
	}
	a.logger.Info("initial catalog scan complete", "duration", time.Since(scanStart))

	fsMonitor, err := monitor.New(a.roots, a.scanner, monitorDebounce, a.logger)
	if err != nil {
		a.logger.Warn("filesystem monitor unavailable, catalog will only refresh on restart", "err", err)
	} else {
		go fsMonitor.Run(ctx)
	}

	go a.handleReloadSignals(ctx)

	a.monitor.Start(ctx)

	discovery.StartSSDP(ctx, a.logger, hostIP, serverPort, a.cfg.Media.UUID)
	discovery.ListenForSearch(ctx, a.logger, hostIP, serverPort, a.cfg.Media.UUID)

	dispatcher := soap.NewDispatcher(a.store, hostIP, serverPort, a.cfg.Catalog.StrictDLNA, a.logger)

	totalMaxIO := 0
	for _, vol := range a.cfg.Media.Volumes {
		totalMaxIO += max(1, vol.MaxIO)
	}
	limiter := media.NewIOLimiter(max(1, totalMaxIO))

	streamHandler := httpcore.NewStreamHandler(a.store, a.roots, a.cfg.Media.Mode, a.cfg.Media.BufferSize, limiter, a.cfg.Catalog.StrictDLNA, a.logger)

	descriptors, err := httpcore.NewDescriptors(httpcore.DescriptorInfo{
		FriendlyName:    a.cfg.Media.FriendlyName,
		Manufacturer:    serverManufacturer,
		ManufacturerURL: serverManufacturerURL,
		ModelName:       serverModelName,
		ModelNumber:     serverModelNumber,
		UUID:            a.cfg.Media.UUID,
		SOAPPath:        a.cfg.Catalog.SOAPPath,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("build descriptors: %w", err)
	}

	rateLimiter := middleware.NewIPRateLimiter(ctx, 20, 40, false)
	web := webui.New(a.store, hostIP, serverPort, a.logger)

	mux := httpcore.NewMux(httpcore.Router{
		Descriptors: descriptors,
		Dispatcher:  dispatcher,
		Stream:      streamHandler,
		WebUI:       web,
		SOAPPath:    a.cfg.Catalog.SOAPPath,
		Middlewares: []middleware.Middleware{
			middleware.WithLogging(a.logger, a.monitor),
			middleware.WithObservability(),
			rateLimiter.Middleware,
		},
	})

	srv := &http.Server{
		Handler:      mux,
		Addr:         a.cfg.HTTP.Addr,
		ReadTimeout:  a.cfg.HTTP.Timeouts.Read,
		IdleTimeout:  a.cfg.HTTP.Timeouts.Idle,
		WriteTimeout: a.cfg.HTTP.Timeouts.Write,
	}

	a.logger.Info("starting", "addr", a.cfg.HTTP.Addr)

	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server closed unexpectedly: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down gracefully...", "delay", a.cfg.HTTP.Timeouts.Shutdown)
	case err := <-errChan:
		return err
	case err := <-a.monitor.StopCh:
		a.logger.Info("auto-shutdown triggered", "reason", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.Timeouts.Shutdown)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	a.logger.Info("server stopped")
	return nil
}

// handleReloadSignals runs as a dedicated goroutine separate from the
// shutdown context's signal.NotifyContext: SIGHUP triggers an immediate
// full rescan (the teacher's inotify-driven monitor already catches
// incremental changes, but SIGHUP gives an operator a way to force one),
// and SIGUSR1 forces the next SystemUpdateID bump regardless of the
// minimum-interval throttle, so clients relying on eventing see pending
// changes right away.
func (a *App) handleReloadSignals(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGUSR1)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				a.logger.Info("SIGHUP received, triggering rescan")
				if err := a.scanner.Run(ctx); err != nil {
					a.logger.Error("SIGHUP rescan failed", "err", err)
				}
			case syscall.SIGUSR1:
				a.logger.Info("SIGUSR1 received, forcing SystemUpdateID bump")
				a.store.BumpSystemUpdateIDIfDue(0)
			}
		}
	}
}

func getLocalIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("get local IP: %w", err)
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}
