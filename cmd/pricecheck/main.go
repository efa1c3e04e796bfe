package main

import (
    "context"
    "flag"
    "fmt"
    "os"
    "strings"
    "time"

    "go.uber.org/zap"

    "pricebot/internal/cache"
    "pricebot/internal/config"
    "pricebot/internal/httpx"
    "pricebot/internal/logger"
    "pricebot/internal/merge"
    "pricebot/internal/router"
    "pricebot/internal/source"
    "pricebot/internal/source/gog"
    "pricebot/internal/source/humble"
    "pricebot/internal/source/steam"
)

// pricecheck runs one query against the configured sources and prints the
// rendered response, without the chat surface.
func main() {
    var (
        queryText  string
        sourceWord string
        cfgPath    string
        timeoutSec int
    )
    flag.StringVar(&queryText, "query", "", "product title to look up")
    flag.StringVar(&sourceWord, "source", "", "single source to ask (steam|gog|humble); empty asks all")
    flag.StringVar(&cfgPath, "config", os.Getenv("CONFIG_FILE"), "path to config.yaml (optional)")
    flag.IntVar(&timeoutSec, "timeout", 0, "per-source timeout seconds (overrides config)")
    flag.Parse()

    if strings.TrimSpace(queryText) == "" {
        fmt.Fprintln(os.Stderr, "usage: pricecheck -query <title> [-source steam]")
        os.Exit(2)
    }

    cfg, err := config.Load(cfgPath)
    if err != nil {
        fmt.Fprintln(os.Stderr, "config:", err)
        os.Exit(1)
    }
    if timeoutSec > 0 { cfg.Bot.SourceTimeoutMS = timeoutSec * 1000 }

    log := logger.New(cfg.Logging.Level, "console")
    defer func() { _ = log.Sync() }()

    httpClient := httpx.New(cfg.Server.RequestTimeout())

    var sources []source.Source
    if cfg.Sources.Steam.Enabled {
        st := steam.New(steam.Config{
            AppListURL: cfg.Sources.Steam.AppListURL,
            DetailsURL: cfg.Sources.Steam.DetailsURL,
            Country:    cfg.Sources.Steam.Country,
        }, httpClient)
        loadCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
        if err := st.LoadIndex(loadCtx); err != nil {
            log.Warn("steam index load failed", zap.Error(err))
        }
        cancel()
        sources = append(sources, st)
    }
    if cfg.Sources.GOG.Enabled {
        sources = append(sources, gog.New(gog.Config{Endpoint: cfg.Sources.GOG.Endpoint, Currency: cfg.Sources.GOG.Currency}, httpClient))
    }
    if cfg.Sources.Humble.Enabled {
        sources = append(sources, humble.New(humble.Config{Endpoint: cfg.Sources.Humble.Endpoint}, httpClient.HTTP))
    }

    formatter, err := merge.New(merge.Config{
        Priority:         cfg.Bot.Priority,
        ShowURLs:         cfg.Bot.ShowURLs,
        NotFoundTemplate: cfg.Templates.NotFound,
        SingleTemplate:   cfg.Templates.SingleFound,
        MultiTemplate:    cfg.Templates.MultiFound,
    })
    if err != nil {
        fmt.Fprintln(os.Stderr, "templates:", err)
        os.Exit(1)
    }

    rt := router.New(router.Config{
        BotName:       cfg.Bot.Name,
        SourceTimeout: cfg.Bot.SourceTimeout(),
    }, sources, cache.New(), formatter, log)

    line := cfg.Bot.Name + " " + queryText
    if sourceWord != "" {
        line = "!" + strings.ToLower(sourceWord) + " " + queryText
    }
    resp, ok := rt.Handle(context.Background(), line)
    if !ok {
        fmt.Fprintln(os.Stderr, "query not routable (unknown source?)")
        os.Exit(1)
    }
    fmt.Println(resp)
}
