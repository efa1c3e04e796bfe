package humble

import (
    "context"
    "encoding/json"
    "fmt"
    "net/http"
    "net/url"
    "strconv"

    "pricebot/internal/source"
)

const storeBase = "https://www.humblebundle.com/store/"

// Config controls the Humble storefront adapter.
type Config struct {
    Name     string
    Endpoint string
    Headers  map[string]string // optional extra headers
}

// Provider searches the Humble storefront. Humble carries no early-access
// marker, so results never set that flag.
type Provider struct {
    cfg    Config
    client source.HTTPClient
}

func New(cfg Config, hc source.HTTPClient) *Provider {
    if cfg.Name == "" { cfg.Name = "Humble" }
    if cfg.Endpoint == "" { cfg.Endpoint = "https://www.humblebundle.com/store/api/search" }
    if hc == nil { hc = http.DefaultClient }
    return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Search(ctx context.Context, queryText string) (source.Result, error) {
    u, err := url.Parse(p.cfg.Endpoint)
    if err != nil { return source.NotFound(p.cfg.Name), err }
    q := u.Query()
    q.Set("sort", "bestselling")
    q.Set("filter", "all")
    q.Set("search", queryText)
    q.Set("request", "1")
    u.RawQuery = q.Encode()

    req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
    if err != nil { return source.NotFound(p.cfg.Name), err }
    req.Header.Set("Accept", "application/json")
    for k, v := range p.cfg.Headers { req.Header.Set(k, v) }
    resp, err := p.client.Do(req)
    if err != nil { return source.NotFound(p.cfg.Name), err }
    defer resp.Body.Close()
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        return source.NotFound(p.cfg.Name), fmt.Errorf("GET %s -> %d", u.String(), resp.StatusCode)
    }

    var body apiResponse
    if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
        return source.NotFound(p.cfg.Name), nil
    }
    names := make([]string, len(body.Results))
    for i, e := range body.Results { names[i] = e.HumanName }
    idx := source.Pick(queryText, names)
    if idx < 0 {
        return source.NotFound(p.cfg.Name), nil
    }

    e := body.Results[idx]
    return source.Result{
        Source:    p.cfg.Name,
        Found:     true,
        Name:      e.HumanName,
        Price:     formatAmount(e.CurrentPrice.Amount),
        Currency:  e.CurrentPrice.Currency,
        Platforms: e.Platforms,
        URL:       storeBase + e.HumanURL,
    }, nil
}

// Response model based on the storefront search payload.
type apiResponse struct {
    Results []entry `json:"results"`
}

type entry struct {
    HumanName    string       `json:"human_name"`
    HumanURL     string       `json:"human_url"`
    Platforms    []string     `json:"platforms"`
    CurrentPrice currentPrice `json:"current_price"`
}

type currentPrice struct {
    Amount   float64 `json:"amount"`
    Currency string  `json:"currency"`
}

func formatAmount(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
