// Package generator asks a model for a joke, retrying transient failures and
// falling back from the conversation call shape to the raw one when a model
// rejects it.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"joke-cli/internal/apperr"
	"joke-cli/internal/config"
	"joke-cli/internal/joke"
	"joke-cli/internal/llm"
)

// Settings is what every request carries.
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float32
	TopP        float32
	Timeout     time.Duration // per attempt
}

type Generator struct {
	strategies []llm.Client
	settings   Settings
	policy     Policy
	logger     *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
	newID func() string
}

type Option func(*Generator)

// WithSleep replaces the wait between attempts.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Generator) { g.sleep = fn }
}

func New(strategies []llm.Client, settings Settings, policy Policy, logger *zap.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	g := &Generator{
		strategies: strategies,
		settings:   settings,
		policy:     policy,
		logger:     logger,
		sleep:      sleepCtx,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FromConfig builds a Generator from the loaded configuration.
func FromConfig(strategies []llm.Client, cfg *config.Config, logger *zap.Logger, opts ...Option) *Generator {
	return New(strategies, Settings{
		Model:       cfg.Model(),
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		Timeout:     cfg.Timeout,
	}, Policy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BackoffBase,
		MaxDelay:    cfg.BackoffMax,
	}, logger, opts...)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Generate returns a joke with non-empty text. An Any category is resolved to
// a concrete one before the first call and echoed in the result.
func (g *Generator) Generate(ctx context.Context, category joke.Category) (joke.Joke, error) {
	if len(g.strategies) == 0 {
		return joke.Joke{}, errors.New("no call strategies configured")
	}
	category = joke.Resolve(category)
	prompt, err := joke.Prompt(category)
	if err != nil {
		return joke.Joke{}, apperr.Wrap(apperr.KindInvalidInput, "build prompt", err)
	}
	req := llm.Request{
		Prompt:      prompt,
		Model:       g.settings.Model,
		MaxTokens:   g.settings.MaxTokens,
		Temperature: g.settings.Temperature,
		TopP:        g.settings.TopP,
	}

	strategy := 0
	var lastErr error
	for attempt := 1; attempt <= g.policy.MaxAttempts; attempt++ {
		client := g.strategies[strategy]
		log := g.logger.With(
			zap.String("strategy", client.Name()),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", g.policy.MaxAttempts),
		)

		text, model, err := g.call(ctx, client, req)
		if err == nil {
			log.Debug("joke generated", zap.String("category", string(category)))
			return joke.Joke{
				ID:       g.newID(),
				Text:     text,
				Category: category,
				Model:    model,
			}, nil
		}
		if ctx.Err() != nil {
			return joke.Joke{}, apperr.Wrap(apperr.KindUnknown, "generate joke", ctx.Err())
		}

		if apperr.Is(err, apperr.KindUnsupported) {
			if strategy+1 < len(g.strategies) {
				strategy++
				log.Info("model rejected call shape, falling back",
					zap.String("next", g.strategies[strategy].Name()), zap.Error(err))
				// a rejected shape does not use up an attempt
				attempt--
				continue
			}
			return joke.Joke{}, &apperr.Error{Kind: apperr.KindService, Op: "generate joke", Msg: "model accepts none of the supported call shapes", Err: err}
		}

		lastErr = err
		if !g.policy.Retryable(err) {
			log.Debug("non-retryable failure", zap.Error(err))
			return joke.Joke{}, err
		}
		if attempt == g.policy.MaxAttempts {
			log.Warn("attempt failed, giving up", zap.Error(err))
			break
		}

		delay := g.policy.Delay(attempt)
		log.Warn("attempt failed, retrying", zap.Duration("backoff", delay), zap.Error(err))
		if err := g.sleep(ctx, delay); err != nil {
			return joke.Joke{}, apperr.Wrap(apperr.KindUnknown, "generate joke", err)
		}
	}

	return joke.Joke{}, &apperr.Error{
		Kind: apperr.KindOf(lastErr),
		Op:   "generate joke",
		Msg:  fmt.Sprintf("giving up after %d attempts", g.policy.MaxAttempts),
		Err:  lastErr,
	}
}

// call runs one attempt under the per-attempt timeout and cleans the output.
func (g *Generator) call(ctx context.Context, client llm.Client, req llm.Request) (string, string, error) {
	callCtx := ctx
	if g.settings.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.settings.Timeout)
		defer cancel()
	}

	resp, err := client.Generate(callCtx, req)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil && !apperr.Is(err, apperr.KindTimeout) {
			err = apperr.Wrap(apperr.KindTimeout, client.Name(), err)
		}
		return "", "", err
	}

	text := joke.CleanText(resp.Content)
	if strings.TrimSpace(text) == "" {
		return "", "", apperr.New(apperr.KindMalformed, client.Name(), "response contained no joke text")
	}
	model := resp.Model
	if model == "" {
		model = req.Model
	}
	return text, model, nil
}
