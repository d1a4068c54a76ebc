package sentiment

import (
	"context"
	"strings"
	"unicode"

	"daily-btc/internal/domain"

	"go.uber.org/zap"
)

const heuristicModel = "heuristic:v2"

// Input is one article's classifier text.
type Input struct {
	ArticleID int64
	Text      string
}

// Result is a three-class label with the classifier's confidence in it.
type Result struct {
	ArticleID int64
	Label     domain.SentimentLabel
	Score     float64
	Model     string
}

type BatchClassifier interface {
	ClassifyBatch(ctx context.Context, inputs []Input) ([]Result, error)
}

// Scorer labels every input with the keyword heuristic and overrides the
// rows the LLM classifier returns.
type Scorer struct {
	llm       BatchClassifier
	batchSize int
	logger    *zap.Logger
}

func NewScorer(llm BatchClassifier, batchSize int, logger *zap.Logger) *Scorer {
	if batchSize <= 0 {
		batchSize = 24
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{llm: llm, batchSize: batchSize, logger: logger}
}

func (s *Scorer) Score(ctx context.Context, inputs []Input) []Result {
	if len(inputs) == 0 {
		return nil
	}

	resultByID := make(map[int64]Result, len(inputs))
	for _, in := range inputs {
		label, score := HeuristicSentiment(in.Text)
		resultByID[in.ArticleID] = Result{ArticleID: in.ArticleID, Label: label, Score: score, Model: heuristicModel}
	}

	if s.llm != nil {
		for start := 0; start < len(inputs); start += s.batchSize {
			end := start + s.batchSize
			if end > len(inputs) {
				end = len(inputs)
			}
			scored, err := s.llm.ClassifyBatch(ctx, inputs[start:end])
			if err != nil {
				s.logger.Warn("llm sentiment batch failed, keeping heuristic labels",
					zap.Int("batch_size", end-start),
					zap.Error(err),
				)
				continue
			}
			for _, row := range scored {
				current, ok := resultByID[row.ArticleID]
				if !ok {
					continue
				}
				current.Label = NormalizeLabel(string(row.Label))
				current.Score = clamp(row.Score, 0, 1)
				if row.Model != "" {
					current.Model = row.Model
				}
				resultByID[row.ArticleID] = current
			}
		}
	}

	out := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		if scored, ok := resultByID[in.ArticleID]; ok {
			out = append(out, scored)
		}
	}
	return out
}

var (
	bullishTerms = []string{
		"bull", "bulls", "bullish", "breakout", "breakouts", "surge", "surges", "surged", "surging",
		"rally", "rallies", "rallied", "rallying", "adoption", "soar", "soars", "soared", "soaring",
		"gain", "gains", "gained", "record high", "all-time high", "buy", "buying", "uptrend",
		"recover", "recovers", "recovered", "recovery", "approve", "approves", "approved", "approval",
	}
	bearishTerms = []string{
		"bear", "bears", "bearish", "dump", "dumps", "dumped", "sell-off", "selloff", "crash",
		"crashes", "crashed", "hack", "hacks", "hacked", "lawsuit", "lawsuits", "ban", "bans",
		"banned", "plunge", "plunges", "plunged", "decline", "declines", "declined", "downtrend",
		"liquidation", "liquidations", "fraud",
	}
)

// HeuristicSentiment counts bullish and bearish words. The score is the
// confidence in the returned label, in [0.34, 0.9].
func HeuristicSentiment(text string) (domain.SentimentLabel, float64) {
	words := tokenize(text)
	if len(words) == 0 {
		return domain.SentimentNeutral, 0.34
	}

	bullCount := countMatches(words, bullishTerms)
	bearCount := countMatches(words, bearishTerms)

	raw := float64(bullCount-bearCount) / float64(bullCount+bearCount+1)
	switch {
	case raw > 0.2:
		return domain.SentimentPositive, clamp(0.5+raw*0.4, 0.34, 0.9)
	case raw < -0.2:
		return domain.SentimentNegative, clamp(0.5-raw*0.4, 0.34, 0.9)
	default:
		return domain.SentimentNeutral, clamp(0.6-0.05*float64(bullCount+bearCount), 0.34, 0.9)
	}
}

// tokenize lowercases text and splits it on anything but letters, digits and
// hyphens.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

// countMatches counts whole-word occurrences of terms; multi-word terms match
// consecutive words.
func countMatches(words []string, terms []string) int {
	count := 0
	for _, term := range terms {
		parts := strings.Fields(term)
		for i := 0; i+len(parts) <= len(words); i++ {
			if equalWords(words[i:i+len(parts)], parts) {
				count++
			}
		}
	}
	return count
}

func equalWords(a, b []string) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// NormalizeLabel maps classifier vocabularies onto the three labels.
func NormalizeLabel(label string) domain.SentimentLabel {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "POSITIVE", "BULLISH", "LABEL_2":
		return domain.SentimentPositive
	case "NEGATIVE", "BEARISH", "LABEL_0":
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
