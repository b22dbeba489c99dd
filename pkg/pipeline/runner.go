package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/williamcotton/gramgraph/pkg/cache"
	"github.com/williamcotton/gramgraph/pkg/observability"
	"github.com/williamcotton/gramgraph/pkg/scene"
	"github.com/williamcotton/gramgraph/pkg/table"
)

// Cache key types reported to cache hooks.
const (
	keyTypeScene    = "scene"
	keyTypeArtifact = "artifact"
)

// Runner executes the pipeline behind a cache. It holds no per-run state, so
// one Runner may serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration // entry lifetime; cache.TTLScene and cache.TTLArtifact when 0
}

// NewRunner returns a runner. A nil cache disables caching, a nil keyer
// selects DefaultKeyer and a nil logger selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute compiles and renders t with opts. When every requested artifact is
// cached the stages are skipped; otherwise a cached scene graph skips
// straight to rendering. Cache read failures count as misses.
func (r *Runner) Execute(ctx context.Context, opts Options, t *table.Table) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	logger := opts.Logger.With("run", id[:8])

	res := &Result{
		RunID:     id,
		Artifacts: make(map[string][]byte, len(opts.Formats)),
	}
	res.SceneKey = r.Keyer.SceneKey(cache.Hash([]byte(opts.Spec)), tableHash(t), opts.SceneKeyOpts())
	res.Stats.Rows = t.Len()

	if !opts.Refresh {
		if arts, ok := r.cachedArtifacts(ctx, res.SceneKey, opts.Formats); ok {
			res.Artifacts = arts
			res.CacheInfo.RenderHit = true
			logger.Debug("artifacts cached", "formats", opts.Formats)
			return res, nil
		}
		if g, ok := r.cachedScene(ctx, res.SceneKey); ok {
			res.Scene = g
			res.CacheInfo.SceneHit = true
			res.Stats.Panels = len(g.Panels)
			res.Stats.Commands = countCommands(g)
			logger.Debug("scene cached", "panels", len(g.Panels))
		}
	}

	if res.Scene == nil {
		g, st, err := compileStages(ctx, t, &opts)
		if err != nil {
			return nil, err
		}
		res.Scene, res.Stats = g, st
		logger.Info("compiled scene",
			"rows", st.Rows, "panels", st.Panels, "series", st.Series,
			"commands", st.Commands, "duration", st.Total())

		if data, err := scene.MarshalMsgpack(g); err == nil {
			r.store(ctx, keyTypeScene, res.SceneKey, data, cache.TTLScene)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	arts, err := renderWithHooks(ctx, res.Scene, opts.Formats, &res.Stats.RenderTime)
	if err != nil {
		return nil, err
	}
	for _, f := range opts.Formats {
		r.store(ctx, keyTypeArtifact, r.artifactKey(res.SceneKey, f), arts[f], cache.TTLArtifact)
	}
	res.Artifacts = arts
	logger.Info("rendered outputs", "formats", opts.Formats, "duration", res.Stats.RenderTime)
	return res, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) artifactKey(sceneKey, format string) string {
	return r.Keyer.ArtifactKey(sceneKey, cache.ArtifactKeyOpts{Format: format})
}

func (r *Runner) cachedArtifacts(ctx context.Context, sceneKey string, formats []string) (map[string][]byte, bool) {
	out := make(map[string][]byte, len(formats))
	for _, f := range formats {
		data, ok := r.lookup(ctx, keyTypeArtifact, r.artifactKey(sceneKey, f))
		if !ok {
			return nil, false
		}
		out[f] = data
	}
	return out, true
}

func (r *Runner) cachedScene(ctx context.Context, key string) (*scene.Graph, bool) {
	data, ok := r.lookup(ctx, keyTypeScene, key)
	if !ok {
		return nil, false
	}
	g, err := scene.UnmarshalMsgpack(data)
	if err != nil {
		r.Logger.Debug("discarding unreadable cached scene", "err", err)
		return nil, false
	}
	return g, true
}

func (r *Runner) lookup(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// tableHash fingerprints the header and every cell.
func tableHash(t *table.Table) string {
	rows := make([][]string, 0, t.Len()+1)
	rows = append(rows, t.Header())
	for i := 0; i < t.Len(); i++ {
		row := make([]string, len(t.Header()))
		for j, col := range t.Header() {
			row[j], _ = t.Value(i, col)
		}
		rows = append(rows, row)
	}
	data, _ := json.Marshal(rows)
	return cache.Hash(data)
}
