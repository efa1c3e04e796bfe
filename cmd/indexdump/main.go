package main

import (
    "context"
    "encoding/json"
    "flag"
    "fmt"
    "os"
    "time"

    "pricebot/internal/config"
    "pricebot/internal/httpx"
    "pricebot/internal/source/steam"
)

// indexdump loads the Steam name->appid index the bot would use and writes it
// as JSON, for inspecting what the index-based adapter can actually resolve.
func main() {
    var (
        outPath    string
        cfgPath    string
        timeoutSec int
    )
    flag.StringVar(&outPath, "out", "steam_app_index.json", "output JSON file path ('-' for stdout)")
    flag.StringVar(&cfgPath, "config", os.Getenv("CONFIG_FILE"), "path to config.yaml (optional)")
    flag.IntVar(&timeoutSec, "timeout", 120, "load timeout seconds")
    flag.Parse()

    cfg, err := config.Load(cfgPath)
    if err != nil {
        fmt.Fprintln(os.Stderr, "config:", err)
        os.Exit(1)
    }

    httpClient := httpx.New(cfg.Server.RequestTimeout())
    st := steam.New(steam.Config{
        AppListURL: cfg.Sources.Steam.AppListURL,
        DetailsURL: cfg.Sources.Steam.DetailsURL,
        Country:    cfg.Sources.Steam.Country,
    }, httpClient)

    ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
    defer cancel()
    if err := st.LoadIndex(ctx); err != nil {
        fmt.Fprintln(os.Stderr, "load index:", err)
        os.Exit(1)
    }

    idx := st.Index()
    out := os.Stdout
    if outPath != "-" {
        f, err := os.Create(outPath)
        if err != nil {
            fmt.Fprintln(os.Stderr, "create:", err)
            os.Exit(1)
        }
        defer f.Close()
        out = f
    }
    enc := json.NewEncoder(out)
    enc.SetIndent("", "  ")
    if err := enc.Encode(idx); err != nil {
        fmt.Fprintln(os.Stderr, "encode:", err)
        os.Exit(1)
    }
    if outPath != "-" {
        fmt.Printf("wrote %d entries to %s\n", len(idx), outPath)
    }
}
