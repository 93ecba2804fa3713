package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/hindisrs/hindi-srs/internal/assessment"
	"github.com/hindisrs/hindi-srs/internal/config"
)

// Judge errors.
var (
	// ErrInvalidConfig indicates the judge was constructed with missing or
	// invalid settings.
	ErrInvalidConfig = errors.New("invalid gemini judge configuration")

	// ErrInvalidResponse indicates the model replied with something that is
	// not a similarity score.
	ErrInvalidResponse = errors.New("invalid similarity response")
)

// Verify interface compliance at compile time.
var _ assessment.FuzzyJudge = (*Judge)(nil)

// scorePrompt asks for a bare number so parsing stays trivial. Model chatter
// around the number is tolerated by parseScore.
const scorePrompt = `You are grading a Hindi language learning exercise.
Expected answer: %q
Learner's answer: %q
Rate the semantic similarity of the learner's answer to the expected answer
as a single number between 0.0 and 1.0, where 1.0 means the same meaning and
0.0 means unrelated. Accept spelling variations and transliteration.
Reply with only the number.`

// Judge scores answer similarity using the Gemini API.
type Judge struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewJudge creates a Judge from the LLM configuration.
func NewJudge(ctx context.Context, log *slog.Logger, cfg config.LLMConfig) (*Judge, error) {
	if log == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}
	if cfg.MaxRequestsPerMinute <= 0 {
		return nil, fmt.Errorf("%w: max requests per minute must be positive", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini_judge",
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("fuzzy judge circuit state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})

	return &Judge{
		client:  client,
		model:   cfg.ModelName,
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.MaxRequestsPerMinute)/60.0), 1),
		breaker: breaker,
		logger:  log.With("component", "gemini_judge"),
	}, nil
}

// Similarity implements assessment.FuzzyJudge. Any error means "no judgment
// available"; the caller decides the fallback.
func (j *Judge) Similarity(ctx context.Context, expected, response string) (float64, error) {
	if err := j.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	result, err := j.breaker.Execute(func() (interface{}, error) {
		return j.score(ctx, expected, response)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			j.logger.DebugContext(ctx, "fuzzy judge circuit open, skipping call")
		}
		return 0, err
	}

	return result.(float64), nil
}

// score makes one Gemini call and parses the similarity from its reply.
func (j *Judge) score(ctx context.Context, expected, response string) (float64, error) {
	prompt := fmt.Sprintf(scorePrompt, expected, response)

	resp, err := j.client.Models.GenerateContent(ctx, j.model, genai.Text(prompt), nil)
	if err != nil {
		return 0, fmt.Errorf("gemini call failed: %w", err)
	}
	if resp == nil {
		return 0, fmt.Errorf("%w: nil response", ErrInvalidResponse)
	}

	score, err := parseScore(resp.Text())
	if err != nil {
		j.logger.WarnContext(ctx, "unparseable similarity reply",
			"reply", resp.Text(),
			"error", err)
		return 0, err
	}

	return score, nil
}

// parseScore extracts a similarity score from the model's reply. The first
// whitespace-separated token that parses as a number wins; values are
// clamped to [0, 1].
func parseScore(reply string) (float64, error) {
	for _, field := range strings.Fields(reply) {
		token := strings.Trim(field, "`*\"'")
		score, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}

		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		return score, nil
	}

	return 0, fmt.Errorf("%w: no numeric score in %q", ErrInvalidResponse, reply)
}
