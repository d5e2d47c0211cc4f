// Package langdetect identifies the language of short customer messages with
// three ordered rule tiers: exact script ranges, weighted Latin scoring and
// diacritic fallbacks.
package langdetect

import (
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"m8translate/internal/langdetect/metrics"
	"m8translate/internal/langdetect/models"
)

const (
	DefaultMinLength      = 3
	DefaultScoreThreshold = 5.0

	diacriticWeight = 2
	wordWeight      = 3
)

type Detector struct {
	rules     *RuleSet
	minLength int
	threshold float64
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

type Option func(*Detector)

func WithMinLength(n int) Option {
	return func(d *Detector) {
		d.minLength = n
	}
}

func WithScoreThreshold(threshold float64) Option {
	return func(d *Detector) {
		d.threshold = threshold
	}
}

func WithRules(rules *RuleSet) Option {
	return func(d *Detector) {
		d.rules = rules
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Detector) {
		d.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

func New(opts ...Option) (*Detector, error) {
	d := &Detector{
		minLength: DefaultMinLength,
		threshold: DefaultScoreThreshold,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.rules == nil {
		d.rules = DefaultRules()
	}
	if d.minLength < 1 {
		return nil, errors.New("min length must be at least 1")
	}
	if err := d.rules.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Detect returns the most likely language of text. It never fails: input
// shorter than the minimum length, or input nothing recognises, yields an
// unknown result.
func (d *Detector) Detect(text string) models.Result {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < d.minLength {
		d.metrics.IncrementTooShort()
		return models.Unknown()
	}

	language, tier := d.match(trimmed)
	if tier == models.TierNone {
		d.metrics.IncrementDetection(string(tier), "unknown")
	} else {
		d.metrics.IncrementDetection(string(tier), language)
	}
	if d.logger != nil {
		d.logger.Debug("language detected",
			"tier", tier,
			"language", language,
			"runes", utf8.RuneCountInString(trimmed),
		)
	}
	if tier == models.TierNone {
		return models.Unknown()
	}
	return models.Detected(language, tier.Confidence())
}

// Scores returns the latin-scored value of every scored rule, in declaration
// order, for the given text.
func (d *Detector) Scores(text string) []models.Score {
	latin := norm.NFC.String(strings.TrimSpace(text))
	length := utf8.RuneCountInString(latin)
	scores := make([]models.Score, 0, len(d.rules.Scored))
	for _, rule := range d.rules.Scored {
		scores = append(scores, models.Score{Language: rule.Language, Value: score(rule, latin, length)})
	}
	return scores
}

func (d *Detector) match(trimmed string) (string, models.Tier) {
	// Script ranges are tested on the raw text: NFC folds CJK compatibility
	// ideographs into the unified block and would hide the Traditional marker.
	for _, rule := range d.rules.Scripts {
		if rule.matches(trimmed) {
			return rule.resolve(trimmed), models.TierScript
		}
	}

	latin := norm.NFC.String(trimmed)
	length := utf8.RuneCountInString(latin)

	best, bestScore := "", 0.0
	for _, rule := range d.rules.Scored {
		s := score(rule, latin, length)
		if s > d.threshold && s > bestScore {
			best, bestScore = rule.Language, s
		}
	}
	if best != "" {
		return best, models.TierScored
	}

	for _, rule := range d.rules.Fallbacks {
		if rule.matches(latin) {
			return rule.Language, models.TierFallback
		}
	}
	return "", models.TierNone
}

func score(rule ScoredRule, text string, length int) float64 {
	if length == 0 {
		return 0
	}
	diacritics := len(rule.Diacritics.FindAllStringIndex(text, -1))
	words := len(rule.Words.FindAllStringIndex(text, -1))
	return float64(diacriticWeight*diacritics+wordWeight*words) / float64(length) * 100
}
