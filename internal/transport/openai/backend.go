// Package openai implements the embedding/classification backend over any
// OpenAI-compatible API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/creatorshield/simengine/internal/domain"
	"github.com/creatorshield/simengine/internal/metrics"
)

const providerName = "openai"

// Backend is an embedding/classification provider using the
// OpenAI-compatible API.
type Backend struct {
	client        *openai.Client
	embedModel    openai.EmbeddingModel
	classifyModel string
	dimensions    int
	logger        *zap.Logger
}

// Config holds the backend settings.
type Config struct {
	APIKey        string
	BaseURL       string
	EmbedModel    string
	ClassifyModel string
	Dimensions    int
	Logger        *zap.Logger
}

// NewBackend creates an OpenAI-compatible backend.
func NewBackend(cfg *Config) *Backend {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Backend{
		client:        openai.NewClientWithConfig(clientCfg),
		embedModel:    openai.EmbeddingModel(cfg.EmbedModel),
		classifyModel: cfg.ClassifyModel,
		dimensions:    cfg.Dimensions,
		logger:        logger,
	}
}

// Embed implements domain.Backend with transport-level metrics.
func (b *Backend) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          b.embedModel,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if b.dimensions > 0 {
		req.Dimensions = b.dimensions
	}

	start := time.Now()

	resp, err := b.client.CreateEmbeddings(ctx, req)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(providerName, "embed", "error").Inc()
		return nil, parseAPIError(err)
	}
	if len(resp.Data) == 0 {
		metrics.BackendRequestsTotal.WithLabelValues(providerName, "embed", "error").Inc()
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrBackendUnavailable)
	}

	metrics.BackendRequestsTotal.WithLabelValues(providerName, "embed", "success").Inc()
	metrics.BackendRequestDuration.WithLabelValues(providerName, "embed").Observe(time.Since(start).Seconds())

	return resp.Data[0].Embedding, nil
}

// Classify implements domain.Backend: one chat-completion call prompted to
// return a bare 0..1 likelihood for the given kind.
func (b *Backend) Classify(
	ctx context.Context, original, candidate string, kind domain.ClassifyKind,
) (float64, error) {
	op := "classify_" + string(kind)

	req := openai.ChatCompletionRequest{
		Model:       b.classifyModel,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifyPrompt(kind)},
			{Role: openai.ChatMessageRoleUser, Content: classifyInput(original, candidate)},
		},
	}

	start := time.Now()

	resp, err := b.client.CreateChatCompletion(ctx, req)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(providerName, op, "error").Inc()
		return 0, parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.BackendRequestsTotal.WithLabelValues(providerName, op, "error").Inc()
		return 0, fmt.Errorf("empty classification response: %w", domain.ErrBackendUnavailable)
	}

	score, err := parseScore(resp.Choices[0].Message.Content)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(providerName, op, "error").Inc()
		return 0, err
	}

	metrics.BackendRequestsTotal.WithLabelValues(providerName, op, "success").Inc()
	metrics.BackendRequestDuration.WithLabelValues(providerName, op).Observe(time.Since(start).Seconds())

	return score, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (b *Backend) HealthCheck(ctx context.Context) error {
	if _, err := b.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func classifyPrompt(kind domain.ClassifyKind) string {
	switch kind {
	case domain.ClassifyRemix:
		return "You assess whether a candidate piece of content is a remix or adaptation " +
			"of the original (re-edit, compilation, parody edit, format conversion). " +
			"Respond with a single number between 0 and 1, where 1 means certainly a remix. " +
			"Output only the number."
	default:
		return "You assess whether a candidate piece of content is transformative commentary " +
			"on the original (critique, review, reaction, educational analysis). " +
			"Respond with a single number between 0 and 1, where 1 means certainly transformative commentary. " +
			"Output only the number."
	}
}

func classifyInput(original, candidate string) string {
	return "ORIGINAL:\n" + original + "\n\nCANDIDATE:\n" + candidate
}

// parseScore extracts the bare 0..1 number the prompt demands. Anything
// else is a malformed response the caller degrades on.
func parseScore(content string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(content), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed classification response %q: %w", content, domain.ErrBackendUnavailable)
	}
	if v < 0 || v > 1 {
		return 0, fmt.Errorf("classification score %f out of range: %w", v, domain.ErrBackendUnavailable)
	}
	return v, nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors wrap domain.ErrBackendUnavailable so the semantic provider
// recognizes them as degradable.
func parseAPIError(err error) error {
	wrap := domain.ErrBackendUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("backend API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("backend API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("backend API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("backend request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
