package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	DefaultModel       = openai.ChatModelGPT3_5Turbo
	DefaultMaxTokens   = 1000
	DefaultTemperature = 0.7
)

// Options configures an OpenAIClient. Zero values fall back to the defaults;
// a nil Temperature means DefaultTemperature, so 0 can be requested.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       openai.ChatModel
	MaxTokens   int64
	Temperature *float64
	HTTPClient  *http.Client
}

// OpenAIClient calls a Chat Completions API.
type OpenAIClient struct {
	model       openai.ChatModel
	maxTokens   int64
	temperature float64
	client      *openai.Client
}

// NewOpenAIClient builds a client. The SDK's own retries are disabled: each
// Complete call issues exactly one request.
func NewOpenAIClient(opts Options) (*OpenAIClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	temperature := DefaultTemperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	cli := openai.NewClient(reqOpts...)
	return &OpenAIClient{
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: temperature,
		client:      &cli,
	}, nil
}

// Complete returns the first choice's content, or NoResponse when there is
// none. Non-2xx replies become *APIError; transport and decode failures are
// returned unchanged.
func (c *OpenAIClient) Complete(ctx context.Context, question, contextText string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	if question == "" {
		return "", ErrEmptyQuestion
	}

	return c.send(ctx, buildMessages(SystemPrompt(contextText), question), c.temperature)
}

// Generate sends prompt as a lone user message at the given temperature. It
// is used by batch jobs that sample the same prompt at several temperatures.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("nil openai client")
	}
	if prompt == "" {
		return "", ErrEmptyQuestion
	}
	msgs := []openai.ChatCompletionMessageParamUnion{
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(prompt),
				},
			},
		},
	}
	return c.send(ctx, msgs, temperature)
}

func (c *OpenAIClient) send(ctx context.Context, msgs []openai.ChatCompletionMessageParamUnion, temperature float64) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   openai.Int(c.maxTokens),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &APIError{Status: apiErr.StatusCode, Message: http.StatusText(apiErr.StatusCode)}
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return NoResponse, nil
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
