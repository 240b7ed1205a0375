package llm

import (
	"context"

	"github.com/Morwran/yagpt"

	"joke-cli/internal/apperr"
)

// YandexClient talks to YandexGPT. The library picks the model, so
// Request.Model and sampling settings are not forwarded.
type YandexClient struct {
	ya       yagpt.YaGPTFace
	iamToken string
}

// NewYandex exchanges the OAuth token for an IAM token up front, so a bad
// token surfaces as a credentials error before any joke is requested.
func NewYandex(oauthToken, folderID string) (*YandexClient, error) {
	if oauthToken == "" || folderID == "" {
		return nil, apperr.New(apperr.KindCredentials, "yandex", "YANDEX_OAUTH_TOKEN and YANDEX_FOLDER_ID are required")
	}
	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindCredentials, "yandex iam init", err)
	}
	resp, err := iam.Create()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindCredentials, "yandex iam token", err)
	}

	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindCredentials, "yandex init", err)
	}

	return &YandexClient{
		ya:       ya,
		iamToken: resp.IamToken,
	}, nil
}

func (c *YandexClient) Name() string { return "yandexgpt" }
func (c *YandexClient) Shape() Shape { return ShapeConversation }

func (c *YandexClient) Generate(ctx context.Context, req Request) (Response, error) {
	messages := []yagpt.Message{{Role: "user", Content: req.Prompt}}

	resp, err := c.ya.CompletionWithCtx(ctx, c.iamToken, messages)
	if err != nil {
		if e, ok := classifyTransport(c.Name(), err); ok {
			return Response{}, e
		}
		return Response{}, apperr.Wrap(apperr.KindService, c.Name(), err)
	}
	if resp == nil || len(resp.Alternatives) == 0 {
		return Response{}, apperr.New(apperr.KindMalformed, c.Name(), "yagpt returned empty response")
	}
	out := Response{Content: resp.Alternatives[0].Message.Content, Model: yagpt.YaModelLite}
	out.PromptTokens = int(resp.Usage.InputTextTokens)
	out.CompletionTokens = int(resp.Usage.CompletionTokens)
	out.TotalTokens = int(resp.Usage.TotalTokens)
	return out, nil
}
