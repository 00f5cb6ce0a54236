// Package gemini implements the embedding/classification backend over the
// Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/creatorshield/simengine/internal/domain"
	"github.com/creatorshield/simengine/internal/metrics"
)

const providerName = "gemini"

// Backend is an embedding/classification provider using the Gemini API.
type Backend struct {
	client        *genai.Client
	embedModel    string
	classifyModel string
	dimensions    int32
	logger        *zap.Logger
}

// Config holds the backend settings.
type Config struct {
	APIKey        string
	EmbedModel    string
	ClassifyModel string
	Dimensions    int
	Logger        *zap.Logger
}

// NewBackend creates a Gemini backend.
func NewBackend(ctx context.Context, cfg *Config) (*Backend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Backend{
		client:        client,
		embedModel:    cfg.EmbedModel,
		classifyModel: cfg.ClassifyModel,
		dimensions:    int32(cfg.Dimensions),
		logger:        logger,
	}, nil
}

// Embed implements domain.Backend via EmbedContent.
func (b *Backend) Embed(ctx context.Context, text string) ([]float32, error) {
	var cfg *genai.EmbedContentConfig
	if b.dimensions > 0 {
		cfg = &genai.EmbedContentConfig{OutputDimensionality: genai.Ptr(b.dimensions)}
	}

	start := time.Now()

	resp, err := b.client.Models.EmbedContent(ctx, b.embedModel, genai.Text(text), cfg)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(providerName, "embed", "error").Inc()
		return nil, fmt.Errorf("embed content: %w", domain.ErrBackendUnavailable)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		metrics.BackendRequestsTotal.WithLabelValues(providerName, "embed", "error").Inc()
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrBackendUnavailable)
	}

	metrics.BackendRequestsTotal.WithLabelValues(providerName, "embed", "success").Inc()
	metrics.BackendRequestDuration.WithLabelValues(providerName, "embed").Observe(time.Since(start).Seconds())

	return resp.Embeddings[0].Values, nil
}

// Classify implements domain.Backend: one GenerateContent call prompted to
// return a bare 0..1 likelihood for the given kind.
func (b *Backend) Classify(
	ctx context.Context, original, candidate string, kind domain.ClassifyKind,
) (float64, error) {
	op := "classify_" + string(kind)

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: classifyPrompt(kind)}},
		},
	}
	input := "ORIGINAL:\n" + original + "\n\nCANDIDATE:\n" + candidate

	start := time.Now()

	resp, err := b.client.Models.GenerateContent(ctx, b.classifyModel, genai.Text(input), cfg)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(providerName, op, "error").Inc()
		return 0, fmt.Errorf("generate content: %w", domain.ErrBackendUnavailable)
	}

	score, err := parseScore(resp.Text())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(providerName, op, "error").Inc()
		return 0, err
	}

	metrics.BackendRequestsTotal.WithLabelValues(providerName, op, "success").Inc()
	metrics.BackendRequestDuration.WithLabelValues(providerName, op).Observe(time.Since(start).Seconds())

	return score, nil
}

// HealthCheck verifies API availability with a minimal token-count call.
func (b *Backend) HealthCheck(ctx context.Context) error {
	if _, err := b.client.Models.CountTokens(ctx, b.classifyModel, genai.Text("ping"), nil); err != nil {
		return fmt.Errorf("count tokens: %w", err)
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
