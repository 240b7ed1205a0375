package llm

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"joke-cli/internal/apperr"
	"joke-cli/internal/config"
)

// Factory creates the ordered strategy list for the configured provider.
type Factory struct {
	cfg *config.Config
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg}
}

// Strategies returns the call strategies for a provider, most preferred first.
// Resolving credentials happens here, so failures come back classified as
// credentials errors.
func (f *Factory) Strategies(ctx context.Context, provider config.Provider) ([]Client, error) {
	switch provider {
	case config.ProviderBedrock:
		awsCfg, err := LoadAWSConfig(ctx, f.cfg.AWSProfile, f.cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		api := bedrockruntime.NewFromConfig(awsCfg)
		return []Client{NewBedrockConverse(api), NewBedrockInvoke(api)}, nil
	case config.ProviderOpenAI:
		// local OpenAI-compatible servers behind OPENAI_BASE_URL often take no key
		if f.cfg.OpenAIAPIKey == "" && f.cfg.OpenAIBaseURL == "" {
			return nil, apperr.New(apperr.KindCredentials, "openai", "OPENAI_API_KEY is required")
		}
		return []Client{
			NewOpenAIChat(f.cfg.OpenAIAPIKey, f.cfg.OpenAIBaseURL),
			NewOpenAICompletion(f.cfg.OpenAIAPIKey, f.cfg.OpenAIBaseURL),
		}, nil
	case config.ProviderYandex:
		c, err := NewYandex(f.cfg.YandexOAuthToken, f.cfg.YandexFolderID)
		if err != nil {
			return nil, err
		}
		return []Client{c}, nil
	case config.ProviderGemini:
		c, err := NewGemini(ctx, f.cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return []Client{c}, nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
