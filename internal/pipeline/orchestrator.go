package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/kevinmichaelchen/gitfolio/internal/llm"
	"github.com/kevinmichaelchen/gitfolio/internal/models"
)

const DefaultDelay = time.Second

// Fallback contents. Unavailable means the service gave no usable reply;
// failed means the item hit an unexpected error.
const (
	SummaryUnavailable = "Analysis unavailable"
	SummaryFailed      = "Analysis failed"
)

var (
	ErrBatchRunning = errors.New("analysis batch already running")
	errEmptyReply   = errors.New("empty reply")
)

// ProgressFunc is called once before each item starts, with the 0-based
// index of that item and the batch size.
type ProgressFunc func(current, total int)

type BatchState int32

const (
	StateIdle BatchState = iota
	StateRunning
	StateCompleted
)

func (s BatchState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	default:
		return "idle"
	}
}

type outcome int

const (
	succeeded outcome = iota
	softFailed
	hardFailed
)

type itemResult struct {
	outcome  outcome
	analysis llm.Analysis
	err      error
}

// Orchestrator analyzes a batch of repositories strictly one after another,
// pausing between items to stay within the generation service's rate limits.
type Orchestrator struct {
	analyzer llm.Analyzer
	delay    time.Duration
	state    atomic.Int32
}

type Option func(*Orchestrator)

// WithDelay sets the pause between two consecutive items.
func WithDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.delay = d
		}
	}
}

func NewOrchestrator(analyzer llm.Analyzer, opts ...Option) *Orchestrator {
	o := &Orchestrator{analyzer: analyzer, delay: DefaultDelay}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() BatchState {
	return BatchState(o.state.Load())
}

// Run returns exactly one AnalyzedRepository per input, in input order.
// Per-item failures are folded into fallback records. If ctx is cancelled,
// the items not yet started get the unavailable fallback and ctx's error is
// returned together with the full slice.
func (o *Orchestrator) Run(ctx context.Context, repos []models.EnhancedRepository, onProgress ProgressFunc) ([]models.AnalyzedRepository, error) {
	if !o.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) &&
		!o.state.CompareAndSwap(int32(StateCompleted), int32(StateRunning)) {
		return nil, ErrBatchRunning
	}
	defer o.state.Store(int32(StateCompleted))

	total := len(repos)
	out := make([]models.AnalyzedRepository, 0, total)
	var counts [3]int

	for i, repo := range repos {
		if ctx.Err() != nil {
			out = append(out, finalize(repo, itemResult{outcome: softFailed, err: ctx.Err()}))
			counts[softFailed]++
			continue
		}

		if onProgress != nil {
			onProgress(i, total)
		}

		res := o.analyzeOne(ctx, repo)
		if res.err != nil {
			logger.WithField("repo", repo.FullName).Warnf("Analysis %s: %v", fallbackStatus(res.outcome), res.err)
		}
		out = append(out, finalize(repo, res))
		counts[res.outcome]++

		if i < total-1 {
			o.wait(ctx)
		}
	}

	logger.Infof("Analysis complete: %d succeeded, %d unavailable, %d failed",
		counts[succeeded], counts[softFailed], counts[hardFailed])
	return out, ctx.Err()
}

func (o *Orchestrator) analyzeOne(ctx context.Context, repo models.EnhancedRepository) (res itemResult) {
	defer func() {
		if r := recover(); r != nil {
			res = itemResult{outcome: hardFailed, err: fmt.Errorf("panic: %v", r)}
		}
	}()

	text, err := o.analyzer.Analyze(ctx, llm.BuildPrompt(repo))
	switch {
	case err == nil && strings.TrimSpace(text) != "":
		return itemResult{outcome: succeeded, analysis: llm.Parse(text)}
	case err == nil:
		return itemResult{outcome: softFailed, err: errEmptyReply}
	case errors.Is(err, llm.ErrTransport), errors.Is(err, llm.ErrMalformedResponse):
		return itemResult{outcome: softFailed, err: err}
	default:
		return itemResult{outcome: hardFailed, err: err}
	}
}

func (o *Orchestrator) wait(ctx context.Context) {
	if o.delay <= 0 {
		return
	}
	t := time.NewTimer(o.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// finalize sets all three generated fields from a single source.
func finalize(repo models.EnhancedRepository, res itemResult) models.AnalyzedRepository {
	out := models.AnalyzedRepository{EnhancedRepository: repo}
	switch res.outcome {
	case succeeded:
		out.Summary = res.analysis.Summary
		out.BulletPoints = res.analysis.BulletPoints
		out.TechKeywords = res.analysis.Keywords
		out.Status = models.StatusSucceeded
	case softFailed:
		out.Summary = SummaryUnavailable
		out.BulletPoints = []string{SummaryUnavailable}
		out.TechKeywords = []string{"analysis", "unavailable"}
		out.Status = models.StatusUnavailable
	default:
		out.Summary = SummaryFailed
		out.BulletPoints = []string{SummaryFailed}
		out.TechKeywords = []string{"analysis", "failed"}
		out.Status = models.StatusFailed
	}
	return out
}

func fallbackStatus(o outcome) models.AnalysisStatus {
	if o == hardFailed {
		return models.StatusFailed
	}
	return models.StatusUnavailable
}
