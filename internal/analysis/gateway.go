// Package analysis turns raw editorial text into a structured suggestion using an LLM.
//
// The gateway never fails: every error path, including a missing client, a timeout or an
// unusable response, yields a fallback suggestion that asks for manual review.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/media-workflow/internal/llm"
	"github.com/jonathan/media-workflow/internal/prompts"
	"github.com/jonathan/media-workflow/internal/records"
	"github.com/jonathan/media-workflow/internal/schemas"
	"github.com/jonathan/media-workflow/internal/types"
)

// DefaultTimeout bounds one analysis call
const DefaultTimeout = 30 * time.Second

// Fallback values
const (
	FallbackHeadline = "Needs manual review"
	FallbackFormat   = "Manual Review"
)

// Fallback reasons shown to the user in the suggestion summary
const (
	ReasonEmptyInput      = "empty input"
	ReasonNotConfigured   = "analysis service is not configured"
	ReasonUnavailable     = "analysis service is unavailable"
	ReasonTimeout         = "analysis timed out"
	ReasonInvalidResponse = "analysis response was not usable"
)

// Options configures a Gateway
type Options struct {
	Timeout time.Duration
	Tier    llm.ModelTier
	Logger  *slog.Logger
}

// Gateway calls the LLM and shapes its answer into a suggestion
type Gateway struct {
	client  llm.Client
	timeout time.Duration
	tier    llm.ModelTier
	logger  *slog.Logger
}

// NewGateway creates a gateway. A nil client is allowed; every analysis then falls back.
func NewGateway(client llm.Client, opts Options) *Gateway {
	g := &Gateway{
		client:  client,
		timeout: opts.Timeout,
		tier:    opts.Tier,
		logger:  opts.Logger,
	}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout
	}
	if g.tier == "" {
		g.tier = llm.TierStandard
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Configured reports whether a client is available
func (g *Gateway) Configured() bool {
	return g.client != nil
}

// Fallback returns the suggestion used whenever analysis cannot produce one
func Fallback(reason string) types.Suggestion {
	return types.Suggestion{
		Headline:         FallbackHeadline,
		Priority:         types.DefaultPriority,
		Category:         types.DefaultCategory,
		SuggestedFormats: []string{FallbackFormat},
		Summary:          reason,
		Fallback:         true,
		Reason:           reason,
	}
}

// Analyze extracts a suggestion from rawText. It always returns a suggestion.
func (g *Gateway) Analyze(ctx context.Context, rawText string) (suggestion types.Suggestion) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return Fallback(ReasonEmptyInput)
	}
	if g.client == nil {
		g.logger.Warn("analysis skipped, no LLM client configured")
		return Fallback(ReasonNotConfigured)
	}

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("analysis panicked", "panic", r)
			suggestion = Fallback(ReasonUnavailable)
		}
	}()

	prompt, err := prompts.Render(prompts.AnalysisFile, prompts.KeyAnalyzeContent, map[string]string{
		"Text":       text,
		"Categories": joinCategories(),
		"Formats":    strings.Join(types.MediaFormats, ", "),
	})
	if err != nil {
		g.logger.Error("failed to build analysis prompt", "error", err)
		return Fallback(ReasonUnavailable)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	response, err := g.client.GenerateJSON(callCtx, prompt, g.tier)
	if err != nil {
		if callCtx.Err() != nil {
			g.logger.Warn("analysis timed out", "timeout", g.timeout, "error", err)
			return Fallback(ReasonTimeout)
		}
		g.logger.Warn("analysis request failed", "error", err)
		return Fallback(ReasonUnavailable)
	}
	// a result arriving after the caller gave up is discarded
	if callCtx.Err() != nil {
		g.logger.Warn("analysis result arrived after deadline", "elapsed", time.Since(start))
		return Fallback(ReasonTimeout)
	}

	parsed, err := ParseSuggestion(response)
	if err != nil {
		g.logger.Warn("analysis response rejected", "error", err)
		return Fallback(ReasonInvalidResponse)
	}

	g.logger.Info("analysis complete", "headline", parsed.Headline, "category", parsed.Category,
		"priority", parsed.Priority, "elapsed", time.Since(start))
	return parsed
}

// AnalyzeBatch analyzes texts concurrently with at most concurrency calls in flight.
// Results are in input order.
func (g *Gateway) AnalyzeBatch(ctx context.Context, texts []string, concurrency int) []types.Suggestion {
	results := make([]types.Suggestion, len(texts))
	if concurrency < 1 {
		concurrency = 1
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, text := range texts {
		eg.Go(func() error {
			results[i] = g.Analyze(egCtx, text)
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

// ParseSuggestion validates and coerces one raw LLM response.
// Legacy field names (pillar, suggestedMediaType, suggestedTitle) are accepted.
func ParseSuggestion(response string) (types.Suggestion, error) {
	cleaned := llm.CleanJSONBlock(response)

	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return types.Suggestion{}, fmt.Errorf("response is not a JSON object: %w", err)
	}
	if fields == nil {
		return types.Suggestion{}, fmt.Errorf("response is null")
	}

	canonical, err := json.Marshal(records.CanonicalFields(fields))
	if err != nil {
		return types.Suggestion{}, fmt.Errorf("failed to re-encode response: %w", err)
	}
	if err := schemas.ValidateSuggestion(string(canonical)); err != nil {
		return types.Suggestion{}, err
	}

	var raw struct {
		Headline         string   `json:"headline"`
		Priority         float64  `json:"priority"`
		Category         string   `json:"category"`
		SuggestedFormats []string `json:"suggestedFormats"`
		Summary          string   `json:"summary"`
	}
	if err := json.Unmarshal(canonical, &raw); err != nil {
		return types.Suggestion{}, fmt.Errorf("failed to decode response: %w", err)
	}

	headline := strings.TrimSpace(raw.Headline)
	if headline == "" {
		return types.Suggestion{}, fmt.Errorf("response headline is blank")
	}

	formats := make([]string, 0, len(raw.SuggestedFormats))
	for _, f := range raw.SuggestedFormats {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}

	return types.Suggestion{
		Headline:         headline,
		Priority:         coercePriority(raw.Priority),
		Category:         types.CoerceCategory(raw.Category),
		SuggestedFormats: formats,
		Summary:          strings.TrimSpace(raw.Summary),
	}, nil
}

func coercePriority(p float64) int {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return types.DefaultPriority
	}
	rounded := math.Round(p)
	if rounded < types.MinPriority || rounded > types.MaxPriority {
		return types.DefaultPriority
	}
	return int(rounded)
}

func joinCategories() string {
	names := make([]string, 0, len(types.Categories()))
	for _, c := range types.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
