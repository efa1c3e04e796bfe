package router

import (
    "context"
    "errors"
    "sync/atomic"
    "testing"
    "time"

    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "pricebot/internal/cache"
    "pricebot/internal/merge"
    "pricebot/internal/source"
)

type fakeSource struct {
    name  string
    res   source.Result
    err   error
    calls atomic.Int32
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(_ context.Context, _ string) (source.Result, error) {
    f.calls.Add(1)
    return f.res, f.err
}

func newRouter(t *testing.T, sources []source.Source) *Router {
    t.Helper()
    formatter, err := merge.New(merge.Config{Priority: []string{"steam", "gog", "humble"}})
    require.NoError(t, err)
    return New(Config{BotName: "pricebot", SourceTimeout: time.Second}, sources, cache.New(), formatter, zap.NewNop())
}

func TestHandle_IgnoresUnaddressedLines(t *testing.T) {
    st := &fakeSource{name: "Steam"}
    r := newRouter(t, []source.Source{st})

    for _, line := range []string{"hello there", "!unknown portal", "", "otherbot portal"} {
        _, ok := r.Handle(context.Background(), line)
        require.False(t, ok, "line %q must be ignored", line)
    }
    require.Equal(t, int32(0), st.calls.Load())
}

func TestHandle_HelpListsCommandsWithoutNetwork(t *testing.T) {
    st := &fakeSource{name: "Steam"}
    gg := &fakeSource{name: "GOG"}
    r := newRouter(t, []source.Source{st, gg})

    out, ok := r.Handle(context.Background(), "!help")
    require.True(t, ok)
    require.Contains(t, out, "!steam")
    require.Contains(t, out, "!gog")
    require.Contains(t, out, "pricebot")
    require.Equal(t, int32(0), st.calls.Load()+gg.calls.Load())
}

func TestHandle_SingleSourcePath(t *testing.T) {
    st := &fakeSource{name: "Steam", res: source.Result{
        Source: "Steam", Found: true, Name: "Portal 2", Price: "9.99", Currency: "USD",
    }}
    r := newRouter(t, []source.Source{st})

    out, ok := r.Handle(context.Background(), "!steam portal 2")
    require.True(t, ok)
    require.Contains(t, out, "Portal 2")
    require.Contains(t, out, "$9.99")
    require.Equal(t, int32(1), st.calls.Load())

    // same normalized key hits the cache, the adapter is not asked again
    again, ok := r.Handle(context.Background(), "!steam Portal 2!!")
    require.True(t, ok)
    require.Equal(t, out, again)
    require.Equal(t, int32(1), st.calls.Load())
}

func TestHandle_SingleSourceNotFound(t *testing.T) {
    st := &fakeSource{name: "Steam", res: source.NotFound("Steam")}
    r := newRouter(t, []source.Source{st})

    out, ok := r.Handle(context.Background(), "!steam zzzz")
    require.True(t, ok)
    require.Contains(t, out, "zzzz")
    require.Contains(t, out, "nothing found")
}

func TestHandle_SingleSourceErrorDegradesToNotFound(t *testing.T) {
    st := &fakeSource{name: "Steam", err: errors.New("boom")}
    r := newRouter(t, []source.Source{st})

    out, ok := r.Handle(context.Background(), "!steam portal")
    require.True(t, ok)
    require.Contains(t, out, "nothing found")
}

func TestHandle_BroadcastMergesAllSources(t *testing.T) {
    st := &fakeSource{name: "Steam", res: source.Result{
        Source: "Steam", Found: true, Name: "Portal", Price: "9.99", Currency: "USD", Platforms: []string{"windows"},
    }}
    gg := &fakeSource{name: "GOG", res: source.Result{
        Source: "GOG", Found: true, Name: "Portal", Price: "8.50", Currency: "EUR", Platforms: []string{"windows", "mac"},
    }}
    hb := &fakeSource{name: "Humble", res: source.NotFound("Humble")}
    r := newRouter(t, []source.Source{st, gg, hb})

    out, ok := r.Handle(context.Background(), "pricebot portal")
    require.True(t, ok)
    require.Equal(t, "Portal [windows] — $9.99 at Steam, €8.50 at GOG", out)
}

func TestHandle_BroadcastFailureTolerance(t *testing.T) {
    st := &fakeSource{name: "Steam", res: source.Result{
        Source: "Steam", Found: true, Name: "Portal", Price: "9.99", Currency: "USD",
    }}
    gg := &fakeSource{name: "GOG", res: source.Result{
        Source: "GOG", Found: true, Name: "Portal", Price: "8.50", Currency: "EUR",
    }}
    hb := &fakeSource{name: "Humble", err: errors.New("upstream down")}
    r := newRouter(t, []source.Source{st, gg, hb})

    out, ok := r.Handle(context.Background(), "pricebot portal")
    require.True(t, ok)
    require.Contains(t, out, "at Steam")
    require.Contains(t, out, "at GOG")
    require.NotContains(t, out, "Humble")
}

func TestHandle_BroadcastCacheShortCircuits(t *testing.T) {
    st := &fakeSource{name: "Steam", res: source.Result{
        Source: "Steam", Found: true, Name: "Portal", Price: "9.99", Currency: "USD",
    }}
    r := newRouter(t, []source.Source{st})

    first, ok := r.Handle(context.Background(), "pricebot portal")
    require.True(t, ok)
    require.Equal(t, int32(1), st.calls.Load())

    // identical normalized key, different spelling
    second, ok := r.Handle(context.Background(), "pricebot Portal!!")
    require.True(t, ok)
    require.Equal(t, first, second)
    require.Equal(t, int32(1), st.calls.Load(), "cache hit must not re-invoke any adapter")
}

func TestHandle_SingleAndBroadcastKeyspacesAreDisjoint(t *testing.T) {
    st := &fakeSource{name: "Steam", res: source.Result{
        Source: "Steam", Found: true, Name: "Portal", Price: "9.99", Currency: "USD",
    }}
    r := newRouter(t, []source.Source{st})

    _, ok := r.Handle(context.Background(), "!steam portal")
    require.True(t, ok)
    require.Equal(t, int32(1), st.calls.Load())

    // the broadcast path must miss the single-source entry
    _, ok = r.Handle(context.Background(), "pricebot portal")
    require.True(t, ok)
    require.Equal(t, int32(2), st.calls.Load())
}

func TestHandle_MergeStageFilterAppliesOnBroadcastOnly(t *testing.T) {
    st := &fakeSource{name: "Steam", res: source.Result{
        Source: "Steam", Found: true, Name: "Unrelated Title", Price: "1.00", Currency: "USD",
    }}
    r := newRouter(t, []source.Source{st})

    // broadcast: the merge re-check discards the adapter's claim
    out, ok := r.Handle(context.Background(), "pricebot portal")
    require.True(t, ok)
    require.Contains(t, out, "nothing found")

    // single-source: the adapter's own match stands
    out, ok = r.Handle(context.Background(), "!steam portal")
    require.True(t, ok)
    require.Contains(t, out, "Unrelated Title")
}
