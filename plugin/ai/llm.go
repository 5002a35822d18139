// Package ai provides the generation service: the single external
// text-generation capability behind resume analysis, question generation,
// answer evaluation, and study-artifact drafting.
package ai

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// GenerationService accepts a prompt plus context and returns unstructured
// text. Implementations are assumed non-deterministic and fallible.
type GenerationService interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Collaborator failures surfaced to callers. The state machine never retries
// these internally; callers decide.
var (
	// ErrGenerationUnavailable means the service could not produce text.
	ErrGenerationUnavailable = errors.New("generation service unavailable")
	// ErrRateLimited means the service refused the call due to rate limits.
	ErrRateLimited = errors.New("generation service rate limited")
)

type openAIService struct {
	client  *openai.Client
	config  *Config
	limiter *rate.Limiter
}

// NewGenerationService creates a generation service over an OpenAI-compatible
// API endpoint.
func NewGenerationService(cfg *Config) (GenerationService, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.RequestsPerMinute)
	}

	return &openAIService{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  cfg,
		limiter: limiter,
	}, nil
}

func (s *openAIService) Complete(ctx context.Context, system, prompt string) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	messages := []openai.ChatCompletionMessage{}
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	var result string
	err := s.doWithRetry(ctx, func() error {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       s.config.Model,
			Messages:    messages,
			Temperature: s.config.Temperature,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty chat response")
		}
		result = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", classifyError(err)
	}
	return result, nil
}

// doWithRetry executes fn with exponential backoff. Rate-limit refusals are
// not retried here; the caller sees ErrRateLimited immediately.
func (s *openAIService) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < s.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if isRateLimit(err) {
				return err
			}
			if attempt < s.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("generation request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}

func isRateLimit(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

// classifyError maps transport failures onto the collaborator error taxonomy
// while keeping the original error text.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if isRateLimit(err) {
		return errors.WithMessagef(ErrRateLimited, "%v", err)
	}
	return errors.WithMessagef(ErrGenerationUnavailable, "%v", err)
}
