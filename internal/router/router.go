package router

import (
    "context"
    "sort"
    "strings"
    "time"

    "go.uber.org/zap"
    "golang.org/x/sync/singleflight"

    "pricebot/internal/cache"
    "pricebot/internal/merge"
    "pricebot/internal/metrics"
    "pricebot/internal/query"
    "pricebot/internal/session"
    "pricebot/internal/source"
)

// Config controls routing behavior.
type Config struct {
    // BotName is the reply identity broadcast queries are addressed to.
    BotName string
    // SourceTimeout bounds each source lookup; an expired source settles as
    // not-found so a hung upstream cannot stall a session forever.
    SourceTimeout time.Duration
}

// Router decides, from an incoming chat line, whether to answer from cache,
// query a single named source, or fan the query out to every source, and
// populates the response cache with whatever the formatter produced.
type Router struct {
    cfg       Config
    sources   []source.Source
    byCommand map[string]source.Source
    commands  map[string]bool
    responses *cache.Responses
    formatter *merge.Formatter
    log       *zap.Logger

    // coalesces concurrent identical broadcast misses
    sf singleflight.Group
}

// New builds a router over the given sources. The command word for each
// source is its lower-cased name; the table is fixed at construction.
func New(cfg Config, sources []source.Source, responses *cache.Responses, formatter *merge.Formatter, log *zap.Logger) *Router {
    if cfg.BotName == "" { cfg.BotName = "pricebot" }
    if cfg.SourceTimeout <= 0 { cfg.SourceTimeout = 10 * time.Second }
    if log == nil { log = zap.NewNop() }

    byCommand := make(map[string]source.Source, len(sources))
    commands := make(map[string]bool, len(sources))
    for _, s := range sources {
        word := strings.ToLower(s.Name())
        byCommand[word] = s
        commands[word] = true
    }
    return &Router{
        cfg:       cfg,
        sources:   sources,
        byCommand: byCommand,
        commands:  commands,
        responses: responses,
        formatter: formatter,
        log:       log,
    }
}

// Handle routes one chat line and returns the response payload. ok is false
// when the line matches neither command grammar and must be ignored.
func (r *Router) Handle(ctx context.Context, line string) (payload string, ok bool) {
    q := query.Parse(line, r.cfg.BotName, r.commands)
    switch q.Kind {
    case query.KindHelp:
        metrics.Queries.WithLabelValues("help").Inc()
        return r.help(), true
    case query.KindSingle:
        metrics.Queries.WithLabelValues("single").Inc()
        return r.single(ctx, q), true
    case query.KindBroadcast:
        metrics.Queries.WithLabelValues("broadcast").Inc()
        return r.broadcast(ctx, q), true
    default:
        return "", false
    }
}

// help lists the known command words. It touches neither cache nor network.
func (r *Router) help() string {
    words := make([]string, 0, len(r.commands))
    for w := range r.commands { words = append(words, "!"+w) }
    sort.Strings(words)
    return "commands: " + strings.Join(words, ", ") +
        ", !help — or \"" + r.cfg.BotName + " <title>\" to ask every store"
}

func (r *Router) single(ctx context.Context, q query.Query) string {
    key := q.Command + ":" + q.Key
    if payload, hit := r.responses.Get(key); hit {
        metrics.CacheHits.WithLabelValues("single").Inc()
        return payload
    }

    src := r.byCommand[q.Command]
    sctx, cancel := context.WithTimeout(ctx, r.cfg.SourceTimeout)
    defer cancel()
    res, err := src.Search(sctx, q.Text)
    if err != nil {
        if sctx.Err() != nil {
            metrics.SourceTimeouts.WithLabelValues(src.Name()).Inc()
        } else {
            metrics.SourceFailures.WithLabelValues(src.Name()).Inc()
        }
        r.log.Warn("source failed", zap.String("source", src.Name()), zap.Error(err))
        res = source.NotFound(src.Name())
    }

    payload := r.formatter.RenderSingle(q.Text, res)
    r.responses.PutIfAbsent(key, payload)
    return payload
}

func (r *Router) broadcast(ctx context.Context, q query.Query) string {
    if payload, hit := r.responses.Get(q.Key); hit {
        metrics.CacheHits.WithLabelValues("broadcast").Inc()
        return payload
    }

    v, _, _ := r.sf.Do(q.Key, func() (any, error) {
        // Re-check under the flight: a finished session may have filled the
        // cache while this caller was queued.
        if payload, hit := r.responses.Get(q.Key); hit {
            metrics.CacheHits.WithLabelValues("broadcast").Inc()
            return payload, nil
        }

        started := time.Now()
        done := make(chan string, 1)
        sess := session.New(q.Key, q.Text, r.sources, r.cfg.SourceTimeout, r.log, func(results map[string]source.Result) {
            payload := r.formatter.RenderBroadcast(q.Text, results)
            r.responses.PutIfAbsent(q.Key, payload)
            metrics.MergeDuration.Observe(time.Since(started).Seconds())
            done <- payload
        })
        // A started session always runs to completion; the cache write happens
        // even when the asking connection is gone.
        sess.Run(context.WithoutCancel(ctx))
        return <-done, nil
    })
    return v.(string)
}
