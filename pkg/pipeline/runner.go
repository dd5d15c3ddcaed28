package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/revlane/revlane/pkg/cache"
	"github.com/revlane/revlane/pkg/errors"
	"github.com/revlane/revlane/pkg/gitrepo"
	"github.com/revlane/revlane/pkg/graph"
	"github.com/revlane/revlane/pkg/observability"
	"github.com/revlane/revlane/pkg/render"
	"github.com/revlane/revlane/pkg/render/dot"
	"github.com/revlane/revlane/pkg/render/text"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
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
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete walk → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	repo, err := gitrepo.Open(opts.RepoPath)
	if err != nil {
		return nil, err
	}

	result, err := r.Build(ctx, repo, opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	artifacts, err := r.Render(ctx, result.Commits, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Build runs the walk and layout stages against an open repository and
// returns the decorated window. The assembled window is cached keyed by
// head, ref tips, and the skip/limit window, so a rebuild without any
// ref movement is a single cache read.
func (r *Runner) Build(ctx context.Context, repo *gitrepo.Repository, opts Options) (*Result, error) {
	if err := opts.ValidateForWalk(); err != nil {
		return nil, err
	}

	head, err := repo.Head()
	if err != nil {
		return nil, err
	}

	var refs map[string][]gitrepo.RefInfo
	refsHash := "none"
	if !opts.NoRefs {
		refs, err = repo.CollectRefs()
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(refs); err == nil {
			refsHash = cache.Hash(data)
		}
	}

	result := &Result{Head: head}
	cacheKey := r.Keyer.GraphKey(head, refsHash, opts.Skip, opts.Limit)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var commits []render.Commit
			if json.Unmarshal(data, &commits) == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				result.Commits = commits
				result.Stats.CommitCount = len(commits)
				result.Stats.LaneCount = render.MaxColumn(commits) + 1
				result.CacheInfo.GraphHit = true
				return result, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	// Stage 1: Walk. The layout depends on every row above the window,
	// so the walk always starts at the newest commit and the skip is
	// applied after layout. Lanes stay consistent across pages.
	walkStart := time.Now()
	observability.Graph().OnWalkStart(ctx, repo.Path())
	commits, err := repo.Commits(ctx, 0, opts.Skip+opts.Limit)
	result.Stats.WalkTime = time.Since(walkStart)
	observability.Graph().OnWalkComplete(ctx, repo.Path(), len(commits), result.Stats.WalkTime, err)
	if err != nil {
		return nil, err
	}

	r.Logger.Info("walked history",
		"commits", len(commits),
		"duration", result.Stats.WalkTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	rows, layoutHit, err := r.layoutRows(ctx, commits)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit
	if err != nil {
		return nil, err
	}

	decorated := make([]render.Commit, len(rows))
	for i, row := range rows {
		decorated[i] = render.NewCommit(commits[i], row, refs[commits[i].Hash])
	}
	if opts.Skip < len(decorated) {
		decorated = decorated[opts.Skip:]
	} else {
		decorated = nil
	}
	result.Commits = decorated
	result.Stats.CommitCount = len(decorated)
	result.Stats.LaneCount = render.MaxColumn(decorated) + 1

	r.Logger.Info("computed layout",
		"rows", len(rows),
		"lanes", result.Stats.LaneCount,
		"duration", result.Stats.LayoutTime)

	if !opts.Refresh {
		if data, err := json.Marshal(result.Commits); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph)
			observability.Cache().OnCacheSet(ctx, "graph", len(data))
		}
	}

	return result, nil
}

// layoutRows runs the layout engine over the walked commits with its own
// cache level. The layout depends only on hashes and parent links, so its
// entries survive ref churn that invalidates the outer graph key.
func (r *Runner) layoutRows(ctx context.Context, commits []gitrepo.Commit) ([]graph.LayoutRow, bool, error) {
	refs := make([]graph.CommitRef, len(commits))
	for i, c := range commits {
		refs[i] = c.Ref()
	}

	cacheKey := ""
	if data, err := json.Marshal(refs); err == nil {
		cacheKey = r.Keyer.LayoutKey(cache.Hash(data))
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var rows []graph.LayoutRow
			if json.Unmarshal(cached, &rows) == nil && len(rows) == len(commits) {
				observability.Cache().OnCacheHit(ctx, "layout")
				return rows, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	start := time.Now()
	observability.Graph().OnLayoutStart(ctx, len(commits))
	rows, err := graph.LayoutAll(refs)
	maxCol := -1
	for _, row := range rows {
		if row.Column > maxCol {
			maxCol = row.Column
		}
	}
	observability.Graph().OnLayoutComplete(ctx, len(rows), maxCol, time.Since(start), err)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInvariantViolation, err, "layout commit graph")
	}

	if cacheKey != "" {
		if data, err := json.Marshal(rows); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return rows, false, nil
}

// Render generates artifacts for every requested format.
func (r *Runner) Render(ctx context.Context, commits []render.Commit, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		start := time.Now()
		observability.Graph().OnRenderStart(ctx, format)
		data, err := r.renderFormat(ctx, commits, format, opts)
		observability.Graph().OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func (r *Runner) renderFormat(ctx context.Context, commits []render.Commit, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatText:
		return text.Render(commits, text.Options{Palette: opts.Palette, Color: opts.Color}), nil
	case FormatJSON:
		return json.MarshalIndent(commits, "", "  ")
	case FormatDOT:
		return []byte(dot.ToDOT(commits, dot.Options{Palette: opts.Palette, Detailed: opts.Detailed})), nil
	case FormatSVG:
		return dot.RenderSVG(ctx, dot.ToDOT(commits, dot.Options{Palette: opts.Palette, Detailed: opts.Detailed}))
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
