package merge

import (
    "fmt"
    "sort"
    "strings"
    "text/template"

    "pricebot/internal/query"
    "pricebot/internal/source"
)

// currencySymbols maps ISO codes to display symbols. Codes absent from the
// table are shown as the raw code string.
var currencySymbols = map[string]string{
    "USD": "$",
    "EUR": "€",
    "GBP": "£",
    "JPY": "¥",
    "RUB": "₽",
}

// Symbol returns the display symbol for a currency code.
func Symbol(code string) string {
    if s, ok := currencySymbols[strings.ToUpper(code)]; ok { return s }
    return code
}

const (
    defaultNotFound = `Sorry, nothing found for "{{.Query}}".`
    defaultSingle   = `{{.Name}} — {{.Symbol}}{{.Price}}{{if .Platforms}} [{{.Platforms}}]{{end}}{{if .EarlyAccess}} (early access){{end}}{{if .URL}} {{.URL}}{{end}}`
    defaultMulti    = `{{.Name}}{{if .Platforms}} [{{.Platforms}}]{{end}}{{if .EarlyAccess}} (early access){{end}} — {{range $i, $p := .Prices}}{{if $i}}, {{end}}{{$p.Symbol}}{{$p.Price}} at {{$p.Source}}{{end}}`
)

// Config controls rendering. Template wording is configuration, not logic;
// empty strings fall back to the defaults above.
type Config struct {
    // Priority fixes the enumeration order of per-source price lines and of
    // the first-populated-wins coalescing. Sources missing from the list sort
    // after it, alphabetically.
    Priority     []string
    DisplayNames map[string]string // source id -> display name, defaults to the id
    ShowURLs     bool

    NotFoundTemplate string
    SingleTemplate   string
    MultiTemplate    string
}

// Formatter renders the three response shapes from collected source results.
type Formatter struct {
    cfg      Config
    rank     map[string]int
    notFound *template.Template
    single   *template.Template
    multi    *template.Template
}

func New(cfg Config) (*Formatter, error) {
    if cfg.NotFoundTemplate == "" { cfg.NotFoundTemplate = defaultNotFound }
    if cfg.SingleTemplate == "" { cfg.SingleTemplate = defaultSingle }
    if cfg.MultiTemplate == "" { cfg.MultiTemplate = defaultMulti }

    nf, err := template.New("not_found").Parse(cfg.NotFoundTemplate)
    if err != nil { return nil, fmt.Errorf("not_found template: %w", err) }
    sg, err := template.New("single").Parse(cfg.SingleTemplate)
    if err != nil { return nil, fmt.Errorf("single template: %w", err) }
    ml, err := template.New("multi").Parse(cfg.MultiTemplate)
    if err != nil { return nil, fmt.Errorf("multi template: %w", err) }

    rank := make(map[string]int, len(cfg.Priority))
    for i, id := range cfg.Priority { rank[strings.ToLower(id)] = i }
    return &Formatter{cfg: cfg, rank: rank, notFound: nf, single: sg, multi: ml}, nil
}

// PriceLine is one "price at source" entry of the multi-source response.
type PriceLine struct {
    Source   string
    Price    string
    Currency string
    Symbol   string
}

type singleData struct {
    Name        string
    Price       string
    Currency    string
    Symbol      string
    Platforms   string
    EarlyAccess bool
    URL         string
}

type multiData struct {
    Name        string
    Platforms   string
    EarlyAccess bool
    Prices      []PriceLine
}

// RenderNotFound renders the shared not-found shape with the free-text query.
func (f *Formatter) RenderNotFound(queryText string) string {
    return f.render(f.notFound, struct{ Query string }{Query: queryText})
}

// RenderSingle renders a single-source response.
func (f *Formatter) RenderSingle(queryText string, res source.Result) string {
    if !res.Found {
        return f.RenderNotFound(queryText)
    }
    d := singleData{
        Name:        res.Name,
        Price:       res.Price,
        Currency:    res.Currency,
        Symbol:      Symbol(res.Currency),
        Platforms:   strings.Join(res.Platforms, ", "),
        EarlyAccess: res.EarlyAccess,
    }
    if f.cfg.ShowURLs { d.URL = res.URL }
    return f.render(f.single, d)
}

// RenderBroadcast consolidates all sources' results into one response.
// Results that are not-found, or whose name fails the normalized prefix
// re-check against the query, are discarded. Shared descriptive fields
// coalesce first-populated-wins in the fixed priority order; price lines are
// enumerated in the same order.
func (f *Formatter) RenderBroadcast(queryText string, results map[string]source.Result) string {
    surviving := make([]source.Result, 0, len(results))
    for _, r := range results {
        if !r.Found { continue }
        // Stricter second-stage filter, independent of the adapter's own match.
        if !query.HasPrefix(r.Name, queryText) { continue }
        surviving = append(surviving, r)
    }
    if len(surviving) == 0 {
        return f.RenderNotFound(queryText)
    }
    sort.Slice(surviving, func(i, j int) bool {
        return f.less(surviving[i].Source, surviving[j].Source)
    })

    var d multiData
    for _, r := range surviving {
        if d.Name == "" { d.Name = r.Name }
        if d.Platforms == "" && len(r.Platforms) > 0 { d.Platforms = strings.Join(r.Platforms, ", ") }
        if !d.EarlyAccess && r.EarlyAccess { d.EarlyAccess = true }
        d.Prices = append(d.Prices, PriceLine{
            Source:   f.displayName(r.Source),
            Price:    r.Price,
            Currency: r.Currency,
            Symbol:   Symbol(r.Currency),
        })
    }
    return f.render(f.multi, d)
}

func (f *Formatter) displayName(id string) string {
    if n := f.cfg.DisplayNames[id]; n != "" { return n }
    return id
}

// less orders source ids by the configured priority, unknown ids after known
// ones in alphabetical order so the output stays deterministic either way.
func (f *Formatter) less(a, b string) bool {
    ra, oka := f.rank[strings.ToLower(a)]
    rb, okb := f.rank[strings.ToLower(b)]
    switch {
    case oka && okb:
        return ra < rb
    case oka:
        return true
    case okb:
        return false
    default:
        return a < b
    }
}

func (f *Formatter) render(t *template.Template, data any) string {
    var b strings.Builder
    if err := t.Execute(&b, data); err != nil {
        return ""
    }
    return b.String()
}
