package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"loan-approval/domain"
	"loan-approval/logger"
	"loan-approval/metrics"
	"loan-approval/repository"
)

// TextSource is the narrow view of a generation response that text
// extraction needs.
type TextSource interface {
	// DirectText is the response's own text field, possibly empty.
	DirectText() string
	// CandidateTexts lists every text fragment found under the response
	// candidates, in order.
	CandidateTexts() []string
}

type GenerationOptions struct {
	Model           string
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

// Generator sends one prompt to a text generation backend.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerationOptions) (TextSource, error)
}

// ExtractText prefers the direct text field and otherwise joins the
// non-empty candidate fragments with newlines. It returns "" when neither
// yields anything.
func ExtractText(src TextSource) string {
	if src == nil {
		return ""
	}
	if text := src.DirectText(); text != "" {
		return text
	}
	var parts []string
	for _, t := range src.CandidateTexts() {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

const insightPromptTemplate = `You are a helpful loan officer assistant focused on India.
The model's decision: %s (probability %.2f).
Applicant details (JSON): %s

Task:
1) Suggest 3 Indian banks that are most likely to approve or consider this profile.
2) Give a one-line reason for each suggestion (e.g., product fit, CIBIL tolerance, income-to-EMI ratio).
3) Add a short tip to improve approval odds.
Format as a short bulleted list. No disclaimers.
`

// BuildInsightPrompt embeds the decision and the record, in feature order.
func BuildInsightPrompt(d domain.Decision, record domain.ApplicantRecord) string {
	details, err := json.Marshal(record)
	if err != nil {
		details = []byte(fmt.Sprintf("%+v", record))
	}
	return fmt.Sprintf(insightPromptTemplate, d.Label(), d.Probability, details)
}

// InsightService turns decisions into advisory text. It never returns an
// error: failures are reported inside the text.
type InsightService struct {
	generator Generator
	cache     repository.CacheRepository
	cacheTTL  time.Duration
	opts      GenerationOptions
	timeout   time.Duration
	log       logger.Logger
}

type InsightConfig struct {
	Options  GenerationOptions
	Timeout  time.Duration
	CacheTTL time.Duration
}

// NewInsightService builds the service. cache may be nil.
func NewInsightService(
	generator Generator,
	cache repository.CacheRepository,
	cfg InsightConfig,
	log logger.Logger,
) *InsightService {
	return &InsightService{
		generator: generator,
		cache:     cache,
		cacheTTL:  cfg.CacheTTL,
		opts:      cfg.Options,
		timeout:   cfg.Timeout,
		log:       log,
	}
}

// Options returns the configured generation parameters.
func (s *InsightService) Options() GenerationOptions {
	return s.opts
}

// Insight asks the generator for bank suggestions for this applicant.
func (s *InsightService) Insight(ctx context.Context, d domain.Decision, record domain.ApplicantRecord) string {
	return s.Ask(ctx, BuildInsightPrompt(d, record))
}

func cacheKey(model, prompt string) string {
	return insightCachePrefix + strconv.FormatUint(xxhash.Sum64String(model+"\x00"+prompt), 16)
}

// Ask runs one generation with the configured options, converting every
// failure into InsightErrorPrefix followed by the message.
func (s *InsightService) Ask(ctx context.Context, prompt string) string {
	key := cacheKey(s.opts.Model, prompt)
	if s.cache != nil {
		if text, ok := s.cache.Get(ctx, key); ok {
			metrics.InsightRequests.WithLabelValues("cached").Inc()
			return text
		}
	}

	text, err := s.Generate(ctx, prompt, s.opts)
	if err != nil {
		metrics.InsightRequests.WithLabelValues("error").Inc()
		s.log.WithError(err).Warn("insight generation failed", map[string]interface{}{
			"model": s.opts.Model,
		})
		return InsightErrorPrefix + err.Error()
	}
	if text == "" {
		metrics.InsightRequests.WithLabelValues("empty").Inc()
		return NoInsightText
	}

	metrics.InsightRequests.WithLabelValues("ok").Inc()
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, text, s.cacheTTL); err != nil {
			s.log.WithError(err).Warn("failed to cache insight", nil)
		}
	}
	return text
}

// Generate performs a single call plus extraction. Panics from the
// backend or the response are returned as errors.
func (s *InsightService) Generate(ctx context.Context, prompt string, opts GenerationOptions) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%v", r)
		}
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	src, err := s.generator.Generate(ctx, prompt, opts)
	if err != nil {
		return "", err
	}
	return ExtractText(src), nil
}
