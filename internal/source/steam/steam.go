package steam

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "net/url"
    "sort"
    "strconv"
    "strings"
    "sync"

    "pricebot/internal/httpx"
    "pricebot/internal/query"
    "pricebot/internal/source"
)

// earlyAccessGenreID marks Early Access titles in appdetails genre lists.
const earlyAccessGenreID = "70"

// Config controls the Steam adapter.
type Config struct {
    Name       string
    AppListURL string // full catalogue inventory endpoint
    DetailsURL string // per-app detail endpoint
    Country    string // storefront country code for pricing
}

// Provider resolves queries against a locally pre-loaded name->appid index.
// Steam has no search endpoint usable here, so LoadIndex pulls the full app
// list once; until that finishes, every query reports not-found. After an
// index hit a detail lookup by id produces the final result.
type Provider struct {
    cfg    Config
    client *httpx.Client

    mu     sync.RWMutex
    index  []appEntry // sorted by normalized name
    loaded bool
}

type appEntry struct {
    norm string
    name string
    id   int64
}

func New(cfg Config, hc *httpx.Client) *Provider {
    if cfg.Name == "" { cfg.Name = "Steam" }
    if cfg.AppListURL == "" { cfg.AppListURL = "https://api.steampowered.com/ISteamApps/GetAppList/v2/" }
    if cfg.DetailsURL == "" { cfg.DetailsURL = "https://store.steampowered.com/api/appdetails" }
    if cfg.Country == "" { cfg.Country = "us" }
    return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

// Loaded reports whether the app index is available yet.
func (p *Provider) Loaded() bool {
    p.mu.RLock()
    defer p.mu.RUnlock()
    return p.loaded
}

// LoadIndex fetches the full app list and builds the lookup index. Meant to
// run once at startup, typically in the background.
func (p *Provider) LoadIndex(ctx context.Context) error {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.AppListURL, http.NoBody)
    if err != nil { return err }
    req.Header.Set("Accept", "application/json")
    resp, err := p.client.Do(ctx, req)
    if err != nil { return err }
    defer resp.Body.Close()
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        return fmt.Errorf("GET %s -> %d", p.cfg.AppListURL, resp.StatusCode)
    }

    var body appListResponse
    if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
        return fmt.Errorf("decode app list: %w", err)
    }
    idx := make([]appEntry, 0, len(body.AppList.Apps))
    for _, a := range body.AppList.Apps {
        norm := query.Normalize(a.Name)
        if norm == "" { continue }
        idx = append(idx, appEntry{norm: norm, name: a.Name, id: a.AppID})
    }
    sort.Slice(idx, func(i, j int) bool {
        if idx[i].norm != idx[j].norm { return idx[i].norm < idx[j].norm }
        return idx[i].id < idx[j].id
    })

    p.mu.Lock()
    p.index = idx
    p.loaded = true
    p.mu.Unlock()
    return nil
}

// Index returns a copy of the loaded index as name->appid pairs, for tooling.
func (p *Provider) Index() map[string]int64 {
    p.mu.RLock()
    defer p.mu.RUnlock()
    out := make(map[string]int64, len(p.index))
    for _, e := range p.index { out[e.name] = e.id }
    return out
}

func (p *Provider) Search(ctx context.Context, queryText string) (source.Result, error) {
    entry, ok := p.lookup(queryText)
    if !ok {
        return source.NotFound(p.cfg.Name), nil
    }
    return p.details(ctx, entry)
}

// lookup runs a prefix test over the sorted index: an exact normalized match
// wins, otherwise the first prefix match in index order. An unloaded index
// behaves as if it had zero candidates.
func (p *Provider) lookup(queryText string) (appEntry, bool) {
    norm := query.Normalize(queryText)
    if norm == "" { return appEntry{}, false }

    p.mu.RLock()
    defer p.mu.RUnlock()
    if !p.loaded { return appEntry{}, false }

    // binary search for the start of the prefix range
    i := sort.Search(len(p.index), func(i int) bool { return p.index[i].norm >= norm })
    if i == len(p.index) || !strings.HasPrefix(p.index[i].norm, norm) {
        return appEntry{}, false
    }
    return p.index[i], true
}

func (p *Provider) details(ctx context.Context, e appEntry) (source.Result, error) {
    u, err := url.Parse(p.cfg.DetailsURL)
    if err != nil { return source.NotFound(p.cfg.Name), err }
    q := u.Query()
    q.Set("appids", strconv.FormatInt(e.id, 10))
    q.Set("cc", p.cfg.Country)
    q.Set("l", "en")
    u.RawQuery = q.Encode()

    req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
    if err != nil { return source.NotFound(p.cfg.Name), err }
    req.Header.Set("Accept", "application/json")
    resp, err := p.client.Do(ctx, req)
    if err != nil { return source.NotFound(p.cfg.Name), err }
    defer resp.Body.Close()
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        return source.NotFound(p.cfg.Name), fmt.Errorf("GET %s -> %d", u.String(), resp.StatusCode)
    }

    var body map[string]detailEnvelope
    if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
        return source.NotFound(p.cfg.Name), nil
    }
    env, ok := body[strconv.FormatInt(e.id, 10)]
    if !ok || !env.Success {
        return source.NotFound(p.cfg.Name), nil
    }
    d := env.Data

    res := source.Result{
        Source:    p.cfg.Name,
        Found:     true,
        Name:      d.Name,
        Platforms: d.Platforms.list(),
        URL:       fmt.Sprintf("https://store.steampowered.com/app/%d", e.id),
    }
    if res.Name == "" { res.Name = e.name }
    for _, g := range d.Genres {
        if g.ID == earlyAccessGenreID {
            res.EarlyAccess = true
            break
        }
    }
    switch {
    case d.PriceOverview != nil:
        res.Price = formatCents(d.PriceOverview.Final)
        res.Currency = d.PriceOverview.Currency
    case d.IsFree:
        res.Price = "0.00"
        res.Currency = "USD"
    default:
        // listed but unpurchasable, nothing to quote
        return source.NotFound(p.cfg.Name), nil
    }
    return res, nil
}

// Response models based on the inventory and appdetails payloads.
type appListResponse struct {
    AppList struct {
        Apps []app `json:"apps"`
    } `json:"applist"`
}

type app struct {
    AppID int64  `json:"appid"`
    Name  string `json:"name"`
}

type detailEnvelope struct {
    Success bool       `json:"success"`
    Data    detailData `json:"data"`
}

type detailData struct {
    Name          string         `json:"name"`
    IsFree        bool           `json:"is_free"`
    PriceOverview *priceOverview `json:"price_overview"`
    Platforms     platforms      `json:"platforms"`
    Genres        []genre        `json:"genres"`
}

type priceOverview struct {
    Currency string `json:"currency"`
    Final    int64  `json:"final"` // minor units
}

type platforms struct {
    Windows bool `json:"windows"`
    Mac     bool `json:"mac"`
    Linux   bool `json:"linux"`
}

func (p platforms) list() []string {
    var out []string
    if p.Windows { out = append(out, "windows") }
    if p.Mac { out = append(out, "mac") }
    if p.Linux { out = append(out, "linux") }
    return out
}

type genre struct {
    ID          string `json:"id"`
    Description string `json:"description"`
}

func formatCents(v int64) string {
    return strconv.FormatFloat(float64(v)/100, 'f', 2, 64)
}
