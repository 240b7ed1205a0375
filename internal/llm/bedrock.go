package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"joke-cli/internal/apperr"
)

// BedrockAPI is the subset of the bedrockruntime client the strategies use.
type BedrockAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// LoadAWSConfig resolves AWS credentials through the SDK default chain
// (named profile, environment, shared files, instance roles) and fails with
// a credentials error when nothing usable is found. SDK-level retries are
// disabled; the generator owns retrying.
func LoadAWSConfig(ctx context.Context, profile, region string) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, &apperr.Error{Kind: apperr.KindCredentials, Op: "load aws config", Msg: profileHint(profile), Err: err}
	}
	if cfg.Credentials == nil {
		return aws.Config{}, apperr.New(apperr.KindCredentials, "load aws config", "no credential provider configured")
	}
	if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
		return aws.Config{}, &apperr.Error{Kind: apperr.KindCredentials, Op: "retrieve aws credentials", Msg: profileHint(profile), Err: err}
	}
	return cfg, nil
}

func profileHint(profile string) string {
	if profile == "" {
		return "default credential chain"
	}
	return fmt.Sprintf("profile %q", profile)
}

// BedrockConverse calls the Converse API: one user message, text blocks back.
type BedrockConverse struct {
	api BedrockAPI
}

func NewBedrockConverse(api BedrockAPI) *BedrockConverse { return &BedrockConverse{api: api} }

func (c *BedrockConverse) Name() string { return "bedrock-converse" }
func (c *BedrockConverse) Shape() Shape { return ShapeConversation }

func (c *BedrockConverse) Generate(ctx context.Context, req Request) (Response, error) {
	out, err := c.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(req.Model),
		Messages: []types.Message{{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: req.Prompt}},
		}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(req.MaxTokens)),
			Temperature: aws.Float32(req.Temperature),
			TopP:        aws.Float32(req.TopP),
		},
	})
	if err != nil {
		return Response{}, classifyBedrock(c.Name(), err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return Response{}, apperr.New(apperr.KindMalformed, c.Name(), "response carries no message")
	}
	var sb strings.Builder
	for _, block := range msg.Value.Content {
		if tb, ok := block.(*types.ContentBlockMemberText); ok {
			sb.WriteString(tb.Value)
		}
	}
	return Response{Content: sb.String(), Model: req.Model}, nil
}

// BedrockInvoke calls InvokeModel with a model-family specific JSON body.
type BedrockInvoke struct {
	api BedrockAPI
}

func NewBedrockInvoke(api BedrockAPI) *BedrockInvoke { return &BedrockInvoke{api: api} }

func (c *BedrockInvoke) Name() string { return "bedrock-invoke" }
func (c *BedrockInvoke) Shape() Shape { return ShapeRawInvoke }

type modelFamily int

const (
	familyGeneric modelFamily = iota
	familyTitan
	familyAnthropic
	familyMeta
)

func familyOf(model string) modelFamily {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "titan"):
		return familyTitan
	case strings.Contains(m, "claude") || strings.Contains(m, "anthropic"):
		return familyAnthropic
	case strings.Contains(m, "llama") || strings.Contains(m, "meta."):
		return familyMeta
	}
	return familyGeneric
}

type titanRequest struct {
	InputText            string `json:"inputText"`
	TextGenerationConfig struct {
		MaxTokenCount int      `json:"maxTokenCount"`
		Temperature   float32  `json:"temperature"`
		TopP          float32  `json:"topP"`
		StopSequences []string `json:"stopSequences"`
	} `json:"textGenerationConfig"`
}

type titanResponse struct {
	Results []struct {
		OutputText string `json:"outputText"`
	} `json:"results"`
}

type invokeResponse struct {
	Completion    string `json:"completion"`
	Generation    string `json:"generation"`
	GeneratedText string `json:"generated_text"`
	Text          string `json:"text"`
	Output        string `json:"output"`
}

func invokeBody(req Request) ([]byte, error) {
	switch familyOf(req.Model) {
	case familyTitan:
		var body titanRequest
		body.InputText = req.Prompt
		body.TextGenerationConfig.MaxTokenCount = req.MaxTokens
		body.TextGenerationConfig.Temperature = req.Temperature
		body.TextGenerationConfig.TopP = req.TopP
		body.TextGenerationConfig.StopSequences = []string{}
		return json.Marshal(body)
	case familyAnthropic:
		return json.Marshal(map[string]any{
			"prompt":               "\n\nHuman: " + req.Prompt + "\n\nAssistant:",
			"max_tokens_to_sample": req.MaxTokens,
			"temperature":          req.Temperature,
			"top_p":                req.TopP,
		})
	case familyMeta:
		return json.Marshal(map[string]any{
			"prompt":      req.Prompt,
			"max_gen_len": req.MaxTokens,
			"temperature": req.Temperature,
			"top_p":       req.TopP,
		})
	}
	return json.Marshal(map[string]any{
		"prompt":      req.Prompt,
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
		"top_p":       req.TopP,
	})
}

func parseInvokeBody(model string, body []byte) (string, error) {
	if familyOf(model) == familyTitan {
		var tr titanResponse
		if err := json.Unmarshal(body, &tr); err != nil {
			return "", err
		}
		if len(tr.Results) == 0 {
			return "", nil
		}
		return tr.Results[0].OutputText, nil
	}
	var ir invokeResponse
	if err := json.Unmarshal(body, &ir); err != nil {
		return "", err
	}
	for _, s := range []string{ir.Completion, ir.Generation, ir.GeneratedText, ir.Text, ir.Output} {
		if s != "" {
			return s, nil
		}
	}
	return "", nil
}

func (c *BedrockInvoke) Generate(ctx context.Context, req Request) (Response, error) {
	body, err := invokeBody(req)
	if err != nil {
		return Response{}, fmt.Errorf("encode invoke body: %w", err)
	}
	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(req.Model),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return Response{}, classifyBedrock(c.Name(), err)
	}
	text, err := parseInvokeBody(req.Model, out.Body)
	if err != nil {
		return Response{}, &apperr.Error{Kind: apperr.KindMalformed, Op: c.Name(), Msg: "invalid response body", Err: err}
	}
	return Response{Content: text, Model: req.Model}, nil
}

func classifyBedrock(op string, err error) error {
	if e, ok := classifyTransport(op, err); ok {
		return e
	}
	var ae smithy.APIError
	if errors.As(err, &ae) {
		kind := apperr.KindService
		switch ae.ErrorCode() {
		case "AccessDeniedException", "UnauthorizedOperation":
			kind = apperr.KindAccessDenied
		case "UnrecognizedClientException", "ExpiredTokenException", "InvalidSignatureException":
			kind = apperr.KindCredentials
		case "ThrottlingException", "TooManyRequestsException", "ServiceQuotaExceededException":
			kind = apperr.KindThrottled
		case "ServiceUnavailableException", "InternalServerException", "ModelNotReadyException":
			kind = apperr.KindUnavailable
		case "ModelTimeoutException":
			kind = apperr.KindTimeout
		case "ValidationException":
			if rejectsShape(ae.ErrorMessage()) {
				kind = apperr.KindUnsupported
			}
		case "ResourceNotFoundException":
			return &apperr.Error{Kind: apperr.KindService, Op: op, Msg: "model not found or not available in this region", Err: err}
		}
		return apperr.Wrap(kind, op, err)
	}
	if strings.Contains(err.Error(), "retrieve credentials") {
		return apperr.Wrap(apperr.KindCredentials, op, err)
	}
	return apperr.Wrap(apperr.KindService, op, err)
}
