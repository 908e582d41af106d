package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	maxBatchSize = 128
	// maxInputRunes keeps a single input well below the model's token limit.
	maxInputRunes = 8000
)

var ErrNoEmbedding = errors.New("no embedding returned")

// Client embeds portfolio texts for semantic search.
type Client struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewClient(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.EmbeddingModel(model),
	}
}

// Embed returns one vector per text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += maxBatchSize {
		end := min(start+maxBatchSize, len(texts))

		batch := make([]string, 0, end-start)
		for _, t := range texts[start:end] {
			batch = append(batch, clip(t))
		}

		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: batch,
			Model: c.model,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding items %d-%d: %w", start, end, err)
		}

		for _, emb := range resp.Data {
			if emb.Index < 0 || start+emb.Index >= end {
				return nil, fmt.Errorf("embedding index %d out of range", emb.Index)
			}
			vectors[start+emb.Index] = emb.Embedding
		}
	}
	return vectors, nil
}

func (c *Client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vecs, err := c.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 || vecs[0] == nil {
		return nil, ErrNoEmbedding
	}
	return vecs[0], nil
}

func clip(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return " "
	}
	r := []rune(s)
	if len(r) > maxInputRunes {
		return string(r[:maxInputRunes])
	}
	return s
}
