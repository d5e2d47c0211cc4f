package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"m8translate/internal/platform/config"
	"m8translate/internal/translation/models"
	"m8translate/internal/translation/prompt"
)

const (
	tracerName   = "m8translate/translation"
	providerName = "openai"
)

var bearerPattern = regexp.MustCompile(`Bearer [A-Za-z0-9_\-.]+`)

// OpenAI translates with a chat completion in JSON mode.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	tracer      trace.Tracer
}

// NewOpenAI builds a provider for apiKey using the deployment model settings.
func NewOpenAI(cfg config.OpenAIConfig, apiKey string) *OpenAI {
	return &OpenAI{
		client:      openai.NewClientWithConfig(clientConfig(cfg, apiKey)),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		tracer:      otel.Tracer(tracerName),
	}
}

func (p *OpenAI) Name() string { return providerName }

func (p *OpenAI) Translate(ctx context.Context, req models.ProviderRequest) (*models.ProviderResult, error) {
	ctx, span := p.tracer.Start(ctx, "openai.chat_completion", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("gen_ai.request.model", p.model),
		attribute.Int("gen_ai.request.max_tokens", p.maxTokens),
		attribute.Int("translation.input_chars", len([]rune(req.Text))),
	)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		TopP:        1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		err = redact(err)
		recordError(span, err)
		return nil, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		err := fmt.Errorf("%w: no translation content received", prompt.ErrInvalidResponse)
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("gen_ai.usage.input_tokens", resp.Usage.PromptTokens),
		attribute.Int("gen_ai.usage.output_tokens", resp.Usage.CompletionTokens),
	)

	result, err := prompt.Parse(resp.Choices[0].Message.Content)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	return result, nil
}

// KeyValidator checks a company-supplied key by listing models.
type KeyValidator struct {
	cfg config.OpenAIConfig
}

func NewKeyValidator(cfg config.OpenAIConfig) *KeyValidator {
	return &KeyValidator{cfg: cfg}
}

func (v *KeyValidator) ValidateKey(ctx context.Context, apiKey string) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "openai.list_models", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	client := openai.NewClientWithConfig(clientConfig(v.cfg, apiKey))
	if _, err := client.ListModels(ctx); err != nil {
		err = redact(err)
		recordError(span, err)
		return err
	}
	return nil
}

func clientConfig(cfg config.OpenAIConfig, apiKey string) openai.ClientConfig {
	cc := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cc.HTTPClient = &http.Client{Timeout: timeout}
	return cc
}

// redact strips bearer credentials from upstream error text.
func redact(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai API error: %d - %s", apiErr.HTTPStatusCode, bearerPattern.ReplaceAllString(apiErr.Message, "Bearer ***"))
	}
	if !bearerPattern.MatchString(err.Error()) {
		return err
	}
	return errors.New(bearerPattern.ReplaceAllString(err.Error(), "Bearer ***"))
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
