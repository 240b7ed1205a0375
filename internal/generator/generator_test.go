package generator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"joke-cli/internal/apperr"
	"joke-cli/internal/config"
	"joke-cli/internal/joke"
	"joke-cli/internal/llm"
)

type step struct {
	text string
	err  error
}

// scriptedClient replays steps in order and repeats the last one.
type scriptedClient struct {
	name  string
	shape llm.Shape
	steps []step
	calls int
	reqs  []llm.Request
}

func (c *scriptedClient) Name() string    { return c.name }
func (c *scriptedClient) Shape() llm.Shape { return c.shape }

func (c *scriptedClient) Generate(_ context.Context, req llm.Request) (llm.Response, error) {
	c.reqs = append(c.reqs, req)
	s := c.steps[min(c.calls, len(c.steps)-1)]
	c.calls++
	if s.err != nil {
		return llm.Response{}, s.err
	}
	return llm.Response{Content: s.text}, nil
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func newTestGenerator(sl *sleepRecorder, clients ...llm.Client) *Generator {
	return New(clients, Settings{Model: "test-model", MaxTokens: 200, Temperature: 0.7, TopP: 0.9, Timeout: time.Second},
		Policy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 8 * time.Second},
		zap.NewNop(), WithSleep(sl.sleep))
}

func timeoutErr() error { return apperr.New(apperr.KindTimeout, "fake", "deadline exceeded") }

func TestGenerate_TwoTimeoutsThenSuccess(t *testing.T) {
	client := &scriptedClient{name: "chat", shape: llm.ShapeConversation, steps: []step{
		{err: timeoutErr()},
		{err: timeoutErr()},
		{text: "Why do programmers prefer dark mode? Because light attracts bugs."},
	}}
	sl := &sleepRecorder{}

	j, err := newTestGenerator(sl, client).Generate(context.Background(), joke.Programming)
	require.NoError(t, err)
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, joke.Programming, j.Category)
	assert.Equal(t, "Why do programmers prefer dark mode? Because light attracts bugs.", j.Text)
	assert.Equal(t, "test-model", j.Model)
	assert.NotEmpty(t, j.ID)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sl.delays)
}

func TestGenerate_EmptyEveryAttemptIsMalformed(t *testing.T) {
	client := &scriptedClient{name: "chat", shape: llm.ShapeConversation, steps: []step{{text: "   \n\t"}}}

	j, err := newTestGenerator(&sleepRecorder{}, client).Generate(context.Background(), joke.Puns)
	require.Error(t, err)
	assert.Equal(t, apperr.KindMalformed, apperr.KindOf(err))
	assert.Equal(t, 3, client.calls)
	assert.Empty(t, j.Text)
}

func TestGenerate_LeadInOnlyIsMalformed(t *testing.T) {
	client := &scriptedClient{name: "chat", shape: llm.ShapeConversation, steps: []step{{text: "Here's a joke for you:"}}}

	_, err := newTestGenerator(&sleepRecorder{}, client).Generate(context.Background(), joke.General)
	assert.Equal(t, apperr.KindMalformed, apperr.KindOf(err))
}

func TestGenerate_TimeoutsExhausted(t *testing.T) {
	client := &scriptedClient{name: "chat", shape: llm.ShapeConversation, steps: []step{{err: timeoutErr()}}}
	sl := &sleepRecorder{}

	_, err := newTestGenerator(sl, client).Generate(context.Background(), joke.General)
	assert.Equal(t, apperr.KindTimeout, apperr.KindOf(err))
	assert.Equal(t, 3, client.calls)
	assert.Len(t, sl.delays, 2, "no wait after the final attempt")
	assert.Contains(t, err.Error(), "giving up after 3 attempts")
}

func TestGenerate_NonRetryableSurfacesImmediately(t *testing.T) {
	for _, kind := range []apperr.Kind{apperr.KindAccessDenied, apperr.KindCredentials, apperr.KindService} {
		client := &scriptedClient{name: "chat", shape: llm.ShapeConversation, steps: []step{{err: apperr.New(kind, "fake", "no")}}}

		_, err := newTestGenerator(&sleepRecorder{}, client).Generate(context.Background(), joke.General)
		assert.Equal(t, kind, apperr.KindOf(err))
		assert.Equal(t, 1, client.calls, kind.String())
	}
}

func TestGenerate_FallsBackToRawShapeAndSticks(t *testing.T) {
	modern := &scriptedClient{name: "converse", shape: llm.ShapeConversation, steps: []step{
		{err: apperr.New(apperr.KindUnsupported, "converse", "model does not support Converse")},
	}}
	legacy := &scriptedClient{name: "invoke", shape: llm.ShapeRawInvoke, steps: []step{
		{err: apperr.New(apperr.KindThrottled, "invoke", "slow down")},
		{text: "A pun walks into a bar."},
	}}

	j, err := newTestGenerator(&sleepRecorder{}, modern, legacy).Generate(context.Background(), joke.Puns)
	require.NoError(t, err)
	assert.Equal(t, "A pun walks into a bar.", j.Text)
	assert.Equal(t, 1, modern.calls)
	assert.Equal(t, 2, legacy.calls)
}

func TestGenerate_NoShapeAccepted(t *testing.T) {
	unsupported := step{err: apperr.New(apperr.KindUnsupported, "fake", "unsupported")}
	modern := &scriptedClient{name: "converse", steps: []step{unsupported}}
	legacy := &scriptedClient{name: "invoke", steps: []step{unsupported}}

	_, err := newTestGenerator(&sleepRecorder{}, modern, legacy).Generate(context.Background(), joke.General)
	assert.Equal(t, apperr.KindService, apperr.KindOf(err))
}

func TestGenerate_AnyResolvesBeforeCall(t *testing.T) {
	client := &scriptedClient{name: "chat", steps: []step{{text: "Knock knock."}}}

	j, err := newTestGenerator(&sleepRecorder{}, client).Generate(context.Background(), joke.Any)
	require.NoError(t, err)
	assert.True(t, j.Category.Valid())

	want, err := joke.Prompt(j.Category)
	require.NoError(t, err)
	assert.Equal(t, want, client.reqs[0].Prompt)
	assert.Equal(t, 200, client.reqs[0].MaxTokens)
}

type slowClient struct{}

func (slowClient) Name() string    { return "slow" }
func (slowClient) Shape() llm.Shape { return llm.ShapeConversation }

func (slowClient) Generate(ctx context.Context, _ llm.Request) (llm.Response, error) {
	<-ctx.Done()
	return llm.Response{}, ctx.Err()
}

func TestGenerate_PerAttemptTimeoutIsClassified(t *testing.T) {
	g := New([]llm.Client{slowClient{}}, Settings{Model: "m", Timeout: 10 * time.Millisecond},
		Policy{MaxAttempts: 2}, zap.NewNop())

	_, err := g.Generate(context.Background(), joke.Clean)
	assert.Equal(t, apperr.KindTimeout, apperr.KindOf(err))
}

func TestGenerate_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &scriptedClient{name: "chat", steps: []step{{err: apperr.Wrap(apperr.KindUnknown, "fake", context.Canceled)}}}

	_, err := newTestGenerator(&sleepRecorder{}, client).Generate(ctx, joke.General)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, client.calls)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ModelID = "custom"
	client := &scriptedClient{name: "chat", steps: []step{{text: "ok"}}}

	g := FromConfig([]llm.Client{client}, cfg, nil)
	assert.Equal(t, "custom", g.settings.Model)
	assert.Equal(t, 3, g.policy.MaxAttempts)
	assert.Equal(t, 10*time.Second, g.settings.Timeout)
}
