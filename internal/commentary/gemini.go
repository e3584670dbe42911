package commentary

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DoyleJ11/worldcup-draw-backend/internal/engine"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API endpoint; empty uses the SDK default.
	BaseURL string
	Timeout time.Duration
}

// GeminiClient asks Gemini for commentary through the genai SDK.
type GeminiClient struct {
	cfg Config

	once   sync.Once
	client *genai.Client
	err    error
}

func NewGeminiClient(cfg Config) *GeminiClient {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &GeminiClient{cfg: cfg}
}

func (c *GeminiClient) sdk(ctx context.Context) (*genai.Client, error) {
	c.once.Do(func() {
		c.client, c.err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      c.cfg.APIKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{BaseURL: c.cfg.BaseURL},
		})
	})
	return c.client, c.err
}

func (c *GeminiClient) Summarize(ctx context.Context, groups []engine.Group) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNoAPIKey
	}
	client, err := c.sdk(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: client: %v", ErrUpstream, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(Prompt(groups)), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyAnswer
	}
	return text, nil
}
