package episode

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/google/uuid"

	"github.com/tonypeng1/moomoo/internal/aggregate"
	"github.com/tonypeng1/moomoo/internal/capture"
	apperrors "github.com/tonypeng1/moomoo/internal/errors"
	"github.com/tonypeng1/moomoo/internal/recognize"
	"github.com/tonypeng1/moomoo/internal/syncx"
	"github.com/tonypeng1/moomoo/internal/variant"
)

// Dispatcher sends alerts for episodes whose decision is "alert".
// Transport failures stay inside the dispatcher; it never errors.
type Dispatcher interface {
	Dispatch(ctx context.Context, ep *Episode)
}

// Store persists sealed episodes.
type Store interface {
	Append(ep *Episode) error
}

// Options tunes the controller.
type Options struct {
	Region      capture.Region
	Terms       []string
	Concurrency int // worker pool size for the variant × recognizer fan-out

	// Skip recognition when the region is perceptually unchanged
	// since the last episode. Only sensible in repeating mode.
	DedupEnabled     bool
	DedupMaxDistance int
}

// Controller drives episodes. A single goroutine calls RunOnce/Run;
// the only concurrency inside is the recognition worker pool.
type Controller struct {
	source     capture.Source
	generator  *variant.Generator
	recognizer []recognize.Recognizer
	dispatcher Dispatcher
	store      Store // nil disables persistence
	opts       Options

	latest   *syncx.RWGuard[*Episode]
	lastHash *goimagehash.ImageHash
}

// NewController wires the pipeline. dispatcher may be nil (decide but
// never alert, used in tests), store may be nil.
func NewController(source capture.Source, gen *variant.Generator, recognizers []recognize.Recognizer, dispatcher Dispatcher, store Store, opts Options) *Controller {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Controller{
		source:     source,
		generator:  gen,
		recognizer: recognizers,
		dispatcher: dispatcher,
		store:      store,
		opts:       opts,
		latest:     syncx.NewGuard[*Episode](nil),
	}
}

// Latest returns the most recent sealed episode, nil before the first
// cycle completes.
func (c *Controller) Latest() *Episode {
	return c.latest.Get()
}

// RunOnce executes one episode end to end. The returned error is
// non-nil only for the capture stage; every later stage degrades
// instead of failing, so a started episode always reaches a decision.
func (c *Controller) RunOnce(ctx context.Context) (*Episode, error) {
	ep := &Episode{ID: uuid.New(), Started: time.Now(), Region: c.opts.Region}

	cap, err := c.source.Capture(ctx, c.opts.Region)
	if err != nil {
		ep.Err = err.Error()
		c.seal(ep)
		return ep, apperrors.Wrap(err, apperrors.CodeCapture, "episode aborted at capture")
	}

	if c.opts.DedupEnabled && c.unchanged(cap) {
		ep.Skipped = true
		c.seal(ep)
		return ep, nil
	}

	variants := c.generator.Generate(cap)
	for _, v := range variants {
		ep.Variants = append(ep.Variants, v.Name)
	}

	ep.Hits = c.fanOut(ctx, variants)
	ep.Findings = aggregate.Aggregate(ep.Hits)
	ep.Alert = len(ep.Findings) > 0

	if ep.Alert && c.dispatcher != nil {
		c.dispatcher.Dispatch(ctx, ep)
	}
	c.seal(ep)
	return ep, nil
}

// Run executes episodes on a fixed interval until ctx is cancelled.
// Cancellation is honored between episodes and during the sleep,
// never mid-episode. A capture failure aborts only that episode.
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	slog.Info("watch loop starting", "interval", interval, "region", c.opts.Region, "terms", strings.Join(c.opts.Terms, ","))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			slog.Info("watch loop stopped")
			return
		}
		if _, err := c.RunOnce(ctx); err != nil {
			slog.Error("episode aborted", "error", err)
		}
		select {
		case <-ctx.Done():
			slog.Info("watch loop stopped")
			return
		case <-ticker.C:
		}
	}
}

// seal finishes the episode, writes its terminal log record, and
// publishes it.
func (c *Controller) seal(ep *Episode) {
	ep.Finished = time.Now()
	c.latest.Set(ep)

	switch {
	case ep.Err != "":
		slog.Error("episode failed", "id", ep.ID, "error", ep.Err)
	case ep.Skipped:
		slog.Info("episode skipped, region unchanged", "id", ep.ID)
	case ep.Alert:
		slog.Info("target terms found",
			"id", ep.ID,
			"terms", strings.Join(ep.Terms(), ","),
			"methods", methodSummary(ep.Findings),
			"raw", ep.RawText(),
		)
	default:
		slog.Info("no target terms found", "id", ep.ID, "variants", len(ep.Variants))
	}

	if c.store != nil {
		if err := c.store.Append(ep); err != nil {
			slog.Warn("episode history write failed", "id", ep.ID, "error", err)
		}
	}
}

// unchanged compares the capture's perceptual hash with the previous
// episode's. Hash errors count as changed so recognition still runs.
func (c *Controller) unchanged(cap *capture.Capture) bool {
	hash, err := goimagehash.PerceptionHash(cap.Image)
	if err != nil {
		return false
	}
	prev := c.lastHash
	c.lastHash = hash
	if prev == nil {
		return false
	}
	dist, err := prev.Distance(hash)
	if err != nil {
		return false
	}
	return dist <= c.opts.DedupMaxDistance
}

func methodSummary(findings []aggregate.Finding) string {
	var b strings.Builder
	for i, f := range findings {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Term)
		b.WriteString("=")
		for j, m := range f.Methods {
			if j > 0 {
				b.WriteString("+")
			}
			fmt.Fprintf(&b, "%s/%s", m.Kind, m.Variant)
		}
	}
	return b.String()
}
