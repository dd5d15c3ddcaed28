// Package pipeline provides the core graph pipeline for Revlane.
//
// This package implements the complete walk → layout → render pipeline
// shared by the CLI and the HTTP server. Centralizing it keeps behavior
// identical across entry points: both cache the same keys and emit the
// same wire format.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Walk: read the commit window from the repository, newest first
//  2. Layout: assign lane columns and connector segments to each commit
//  3. Render: generate output in various formats (text, JSON, DOT, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    RepoPath: ".",
//	    Limit:    200,
//	    Formats:  []string{"text"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Artifacts["text"])
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/revlane/revlane/pkg/errors"
	"github.com/revlane/revlane/pkg/render"
)

// DefaultLimit bounds a walk when the caller does not ask for a window.
// Large repositories are paged, not swallowed whole.
const DefaultLimit = 1000

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// Options contains all configuration for the graph pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Walk options
	RepoPath string `json:"repo_path"`
	Skip     int    `json:"skip,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	NoRefs   bool   `json:"no_refs,omitempty"` // skip ref decorations
	Refresh  bool   `json:"refresh,omitempty"` // bypass the cache

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Color    bool     `json:"color,omitempty"`    // ANSI colors in text output
	Detailed bool     `json:"detailed,omitempty"` // richer DOT labels

	// Runtime options (not serialized)
	Palette render.Palette `json:"-"`
	Logger  *log.Logger    `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Commits is the laid-out, decorated commit window, newest first.
	Commits []render.Commit

	// Head is the repository HEAD hash, empty on an unborn branch.
	Head string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CommitCount int
	LaneCount   int
	WalkTime    time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GraphHit  bool // Whether the assembled window came from cache
	LayoutHit bool // Whether the layout pass came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, ValidFormats)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForWalk(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForWalk checks required fields for the walk stage.
func (o *Options) ValidateForWalk() error {
	if err := errors.ValidateRepoPath(o.RepoPath); err != nil {
		return err
	}
	if o.Skip < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "skip must be non-negative, got %d", o.Skip)
	}
	if o.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "limit must be non-negative, got %d", o.Limit)
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatText}
	}
	if o.Palette == nil {
		o.Palette = render.DefaultPalette
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
