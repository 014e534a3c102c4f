package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"visioncheck/domain/core"
	"visioncheck/domain/vision"
	"visioncheck/ports"
)

// OpenAICompatConfig holds the settings of one chat-completions
// provider. Several commercial models expose this wire format, so the
// same adapter serves any of them through BaseURL.
type OpenAICompatConfig struct {
	Name        string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// OpenAICompat generates reports through an OpenAI-compatible chat
// completions endpoint in JSON mode.
type OpenAICompat struct {
	cfg    OpenAICompatConfig
	client *http.Client
	log    *zap.Logger
	now    func() time.Time
}

// NewOpenAICompat creates a chat-completions report generator.
func NewOpenAICompat(cfg OpenAICompatConfig, log *zap.Logger) (*OpenAICompat, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", cfg.Name)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OpenAICompat{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
		now:    time.Now,
	}, nil
}

var _ ports.ReportGenerator = (*OpenAICompat)(nil)

// responseFormat forces structured output from chat models.
type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature,omitempty"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate produces a validated report for one scored result.
func (c *OpenAICompat) Generate(ctx context.Context, req ports.ReportRequest) (*vision.Report, error) {
	started := c.now()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: baseInstruction},
			{Role: "user", Content: BuildPrompt(req)},
		},
		Temperature:    c.cfg.Temperature,
		MaxTokens:      c.cfg.MaxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	c.log.Debug("requesting chat report",
		zap.String("provider", c.cfg.Name),
		zap.String("testType", string(req.TestType)),
		zap.String("model", c.cfg.Model))

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrReportFailed, c.cfg.Name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", core.ErrReportFailed, c.cfg.Name, err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrInvalidReport, c.cfg.Name, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		c.log.Warn("chat provider rejected request",
			zap.String("provider", c.cfg.Name),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		return nil, fmt.Errorf("%w: %s: %s", core.ErrReportFailed, c.cfg.Name, msg)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: %s: no choices", core.ErrEmptyResponse, c.cfg.Name)
	}

	payload, err := parsePayload(parsed.Choices[0].Message.Content)
	if err != nil {
		c.log.Warn("chat payload rejected",
			zap.String("provider", c.cfg.Name), zap.Error(err))
		return nil, err
	}
	return buildReport(req.TestType, payload, started, c.now())
}
