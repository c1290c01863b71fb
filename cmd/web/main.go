package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"thirdcoast.systems/fetchbox/cmd/web/internal/web"
	"thirdcoast.systems/fetchbox/internal/config"
	"thirdcoast.systems/fetchbox/internal/dispatch"
	"thirdcoast.systems/fetchbox/internal/format"
	"thirdcoast.systems/fetchbox/internal/janitor"
	"thirdcoast.systems/fetchbox/internal/jobs"
	"thirdcoast.systems/fetchbox/internal/pipeline"
	"thirdcoast.systems/fetchbox/internal/resolver"
	"thirdcoast.systems/fetchbox/pkg/curl"
	"thirdcoast.systems/fetchbox/pkg/ytdlp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: conf.SlogLevel()})))

	slog.Info("Starting web service")

	if err := conf.EnsureRoots(); err != nil {
		slog.Error("failed to prepare storage roots", "error", err)
		os.Exit(1)
	}

	yt := ytdlp.New()
	yt.Path = conf.YtdlpPath
	if v, err := yt.Version(ctx); err != nil {
		slog.Warn("yt-dlp not available", "path", yt.PathOrDefault(), "error", err)
	} else {
		slog.Info("yt-dlp ready", "version", v)
	}

	cl := curl.New()
	cl.Path = conf.CurlPath

	registry := jobs.NewRegistry(conf.JobTTL(), conf.Roots()...)
	cookies := conf.Cookies()

	svc := &pipeline.Service{
		Registry: registry,
		Resolver: resolver.New(yt, cl, cookies),
		Dispatcher: &dispatch.Strategy{
			Root:       conf.DownloadRoot,
			Downloader: yt,
			Fetcher:    cl,
			Registry:   registry,
			Policy:     format.Policy{SubtitleLanguage: conf.SubtitleTag()},
			Cookies:    cookies,
		},
	}

	jan := &janitor.Janitor{
		Roots:          conf.Roots(),
		TTL:            conf.JobTTL(),
		SweepInterval:  conf.CleanupInterval(),
		ExpiryInterval: conf.ExpiryCheckInterval(),
		Registry:       registry,
	}

	e, err := web.NewWebserver(ctx, conf, svc)
	if err != nil {
		slog.Error("failed to create webserver", "error", err)
		os.Exit(1)
	}

	addr := ":" + strconv.Itoa(conf.WebServerPort)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return jan.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		slog.Info("Listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Stopped web service")
}
