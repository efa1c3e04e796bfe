package gog

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "net/url"

    "pricebot/internal/httpx"
    "pricebot/internal/source"
)

const storeBase = "https://www.gog.com"

// Config controls the GOG catalogue adapter.
type Config struct {
    Name     string
    Endpoint string // embed catalogue search endpoint
    Currency string // display currency for returned amounts
}

// Provider searches the GOG embed catalogue and selects one candidate with
// the shared two-pass matching policy.
type Provider struct {
    cfg    Config
    client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
    if cfg.Name == "" { cfg.Name = "GOG" }
    if cfg.Endpoint == "" { cfg.Endpoint = "https://embed.gog.com/games/ajax/filtered" }
    if cfg.Currency == "" { cfg.Currency = "USD" }
    return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Search(ctx context.Context, queryText string) (source.Result, error) {
    u, err := url.Parse(p.cfg.Endpoint)
    if err != nil { return source.NotFound(p.cfg.Name), err }
    q := u.Query()
    q.Set("mediaType", "game")
    q.Set("search", queryText)
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

    var body apiResponse
    if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
        // malformed payload counts as no candidates
        return source.NotFound(p.cfg.Name), nil
    }
    names := make([]string, len(body.Products))
    for i, pr := range body.Products { names[i] = pr.Title }
    idx := source.Pick(queryText, names)
    if idx < 0 {
        return source.NotFound(p.cfg.Name), nil
    }

    pr := body.Products[idx]
    res := source.Result{
        Source:      p.cfg.Name,
        Found:       true,
        Name:        pr.Title,
        Price:       pr.Price.FinalAmount,
        Currency:    p.cfg.Currency,
        Platforms:   pr.WorksOn.list(),
        EarlyAccess: pr.IsInDevelopment,
        URL:         storeBase + pr.URL,
    }
    if pr.Price.IsFree { res.Price = "0.00" }
    return res, nil
}

// Response model based on the embed catalogue payload.
type apiResponse struct {
    Products []product `json:"products"`
}

type product struct {
    Title           string  `json:"title"`
    Price           price   `json:"price"`
    WorksOn         worksOn `json:"worksOn"`
    IsInDevelopment bool    `json:"isInDevelopment"`
    URL             string  `json:"url"`
}

type price struct {
    FinalAmount string `json:"finalAmount"`
    IsFree      bool   `json:"isFree"`
}

type worksOn struct {
    Windows bool `json:"Windows"`
    Mac     bool `json:"Mac"`
    Linux   bool `json:"Linux"`
}

func (w worksOn) list() []string {
    var out []string
    if w.Windows { out = append(out, "windows") }
    if w.Mac { out = append(out, "mac") }
    if w.Linux { out = append(out, "linux") }
    return out
}
