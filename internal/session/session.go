package session

import (
    "context"
    "sync"
    "time"

    "go.uber.org/zap"

    "pricebot/internal/metrics"
    "pricebot/internal/source"
)

// MergeFunc consumes the full result map once every dispatched source settled.
type MergeFunc func(results map[string]source.Result)

// Session coordinates one in-flight broadcast query: it fans the query out to
// every source concurrently and fires the merge callback exactly once when the
// last source has settled. A source settles by producing a result, failing, or
// exceeding the per-source deadline; failures and timeouts are recorded as
// not-found placeholders and never reach the merge as errors.
type Session struct {
    key     string
    text    string
    timeout time.Duration
    sources []source.Source
    onMerge MergeFunc
    log     *zap.Logger

    mu      sync.Mutex
    results map[string]source.Result
    pending int
    merged  bool
}

func New(key, text string, sources []source.Source, timeout time.Duration, log *zap.Logger, onMerge MergeFunc) *Session {
    if timeout <= 0 { timeout = 10 * time.Second }
    if log == nil { log = zap.NewNop() }
    return &Session{
        key:     key,
        text:    text,
        timeout: timeout,
        sources: sources,
        onMerge: onMerge,
        log:     log,
        results: make(map[string]source.Result, len(sources)),
        pending: len(sources),
    }
}

// Run dispatches every source without blocking between dispatches and returns
// immediately. The merge callback runs on whichever goroutine settles last.
// With zero sources the merge fires synchronously with an empty map.
func (s *Session) Run(ctx context.Context) {
    if len(s.sources) == 0 {
        s.mu.Lock()
        fire := !s.merged
        s.merged = true
        s.mu.Unlock()
        if fire { s.onMerge(map[string]source.Result{}) }
        return
    }
    for _, src := range s.sources {
        go s.dispatch(ctx, src)
    }
}

func (s *Session) dispatch(ctx context.Context, src source.Source) {
    id := src.Name()
    sctx, cancel := context.WithTimeout(ctx, s.timeout)
    defer cancel()

    res, err := src.Search(sctx, s.text)
    if err != nil {
        // Adapter-local failure: degrade to not-found, keep the error as the
        // internal signal only.
        if sctx.Err() != nil {
            metrics.SourceTimeouts.WithLabelValues(id).Inc()
            s.log.Warn("source timed out", zap.String("source", id), zap.String("key", s.key))
        } else {
            metrics.SourceFailures.WithLabelValues(id).Inc()
            s.log.Warn("source failed", zap.String("source", id), zap.String("key", s.key), zap.Error(err))
        }
        res = source.NotFound(id)
    }
    if res.Source == "" { res.Source = id }
    s.record(id, res)
}

// record stores one source's result and fires the merge when the pending count
// reaches zero. The check-and-set is atomic under the session mutex, so the
// merge runs exactly once no matter how completions interleave.
func (s *Session) record(id string, res source.Result) {
    s.mu.Lock()
    if _, dup := s.results[id]; dup {
        // a source reports at most once
        s.mu.Unlock()
        return
    }
    s.results[id] = res
    s.pending--
    fire := s.pending == 0 && !s.merged
    if fire { s.merged = true }
    var snapshot map[string]source.Result
    if fire {
        snapshot = make(map[string]source.Result, len(s.results))
        for k, v := range s.results { snapshot[k] = v }
    }
    s.mu.Unlock()

    if fire { s.onMerge(snapshot) }
}
