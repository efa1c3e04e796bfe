package main

import (
    "context"
    "fmt"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "go.uber.org/zap"

    "pricebot/internal/cache"
    "pricebot/internal/config"
    "pricebot/internal/gateway"
    "pricebot/internal/httpx"
    "pricebot/internal/logger"
    "pricebot/internal/merge"
    "pricebot/internal/router"
    "pricebot/internal/source"
    "pricebot/internal/source/gog"
    "pricebot/internal/source/humble"
    "pricebot/internal/source/steam"
)

func main() {
    cfgPath := os.Getenv("CONFIG_FILE")
    cfg, err := config.Load(cfgPath)
    if err != nil {
        // logger is not up yet
        fmt.Fprintln(os.Stderr, "config:", err)
        os.Exit(1)
    }

    log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
    defer func() { _ = log.Sync() }()

    httpClient := httpx.New(cfg.Server.RequestTimeout())
    sources := buildSources(cfg, httpClient, log)
    if len(sources) == 0 {
        log.Fatal("no sources enabled")
    }

    formatter, err := merge.New(merge.Config{
        Priority:         cfg.Bot.Priority,
        ShowURLs:         cfg.Bot.ShowURLs,
        NotFoundTemplate: cfg.Templates.NotFound,
        SingleTemplate:   cfg.Templates.SingleFound,
        MultiTemplate:    cfg.Templates.MultiFound,
    })
    if err != nil {
        log.Fatal("templates", zap.Error(err))
    }

    rt := router.New(router.Config{
        BotName:       cfg.Bot.Name,
        SourceTimeout: cfg.Bot.SourceTimeout(),
    }, sources, cache.New(), formatter, log)

    srv := &http.Server{
        Addr:              cfg.Server.Addr,
        Handler:           gateway.New(rt, log).Engine(),
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        WriteTimeout:      20 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    go func() {
        log.Info("listening", zap.String("addr", cfg.Server.Addr), zap.String("bot", cfg.Bot.Name))
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal("server", zap.Error(err))
        }
    }()

    // graceful shutdown
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = srv.Shutdown(shutdownCtx)
}

func buildSources(cfg *config.Config, hc *httpx.Client, log *zap.Logger) []source.Source {
    var sources []source.Source
    if cfg.Sources.Steam.Enabled {
        st := steam.New(steam.Config{
            AppListURL: cfg.Sources.Steam.AppListURL,
            DetailsURL: cfg.Sources.Steam.DetailsURL,
            Country:    cfg.Sources.Steam.Country,
        }, hc)
        // One-time background load; the adapter answers not-found until done.
        go func() {
            loadCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
            defer cancel()
            if err := st.LoadIndex(loadCtx); err != nil {
                log.Error("steam index load failed", zap.Error(err))
                return
            }
            log.Info("steam index loaded")
        }()
        sources = append(sources, st)
    }
    if cfg.Sources.GOG.Enabled {
        sources = append(sources, gog.New(gog.Config{
            Endpoint: cfg.Sources.GOG.Endpoint,
            Currency: cfg.Sources.GOG.Currency,
        }, hc))
    }
    if cfg.Sources.Humble.Enabled {
        sources = append(sources, humble.New(humble.Config{
            Endpoint: cfg.Sources.Humble.Endpoint,
        }, hc.HTTP))
    }
    return sources
}
