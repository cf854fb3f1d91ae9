package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"calendar-sync/core/loader"
	"calendar-sync/core/logger"
	"calendar-sync/core/metrics"
	"calendar-sync/core/middleware/auth"
	"calendar-sync/core/middleware/rayid"
	"calendar-sync/feature/mirror"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveRunNow bool

// serveCmd runs passes on a schedule and serves the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled passes and serve the HTTP API",
	Long: `Starts the HTTP server, registers the sync routes and runs a pass on every
tick of sync.schedule (a five-field cron expression).`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveRunNow, "run-now", false, "Run a pass immediately on startup")
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	logg := rt.logger
	zap.ReplaceGlobals(logg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	svc := rt.service(metrics.NewRecorder(reg))

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// RayID must be first to trace everything.
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Debug("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		body := fiber.Map{"status": "ok", "running": svc.Running()}
		for k, v := range rt.health() {
			body[k] = v
		}
		return c.JSON(body)
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey, Skip: []string{"/healthz", "/metrics"}}))

	mgr := loader.NewManager()
	mgr.Register(mirror.NewFeature(svc, logg))
	loaded, err := mgr.LoadAll(app)
	if err != nil {
		return err
	}
	logg.Info("Features loaded", zap.Strings("features", loaded))

	// Passes keep running through shutdown; Stop waits for them.
	passCtx := context.WithoutCancel(ctx)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(rt.cfg.Sync.Schedule, func() {
		runScheduled(passCtx, svc, rt, logg)
	})
	if err != nil {
		return err
	}
	scheduler.Start()
	logg.Info("Scheduler started", zap.String("schedule", rt.cfg.Sync.Schedule))

	var startup sync.WaitGroup
	if serveRunNow {
		startup.Add(1)
		go func() {
			defer startup.Done()
			runScheduled(passCtx, svc, rt, logg)
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
		serverErr <- app.Listen(rt.cfg.Server.Addr())
	}()

	select {
	case err := <-serverErr:
		<-scheduler.Stop().Done()
		startup.Wait()
		return err
	case <-ctx.Done():
	}

	logg.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(rt.cfg.Server.ShutdownTimeout()); err != nil {
		logg.Warn("Server shutdown failed", zap.Error(err))
	}
	// Waits for a running pass to finish.
	<-scheduler.Stop().Done()
	startup.Wait()
	return nil
}

// runScheduled runs one pass, or plans it when dry_run is set.
func runScheduled(ctx context.Context, svc *mirror.Service, rt *runtime, logg *zap.Logger) {
	if rt.cfg.Sync.DryRun {
		plan, err := svc.Plan(ctx)
		if err != nil {
			logg.Error("Scheduled plan failed", zap.Error(err))
			return
		}
		printPlan(logg, plan)
		return
	}

	_, err := svc.Run(ctx, mirror.TriggerSchedule)
	if errors.Is(err, mirror.ErrPassRunning) {
		logg.Warn("Skipping scheduled pass, previous pass still running")
	}
}
