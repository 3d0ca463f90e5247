package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/pylearn-backend/internal/platform/ctxutil"
	"github.com/yungbote/pylearn-backend/internal/platform/httpx"
	"github.com/yungbote/pylearn-backend/internal/platform/logger"
	"github.com/yungbote/pylearn-backend/internal/platform/promptstyle"
)

// Client is the OpenAI API surface the generators use.
type Client interface {
	// Plain text (no schema)
	GenerateText(ctx context.Context, system string, user string) (string, error)

	// Structured outputs (json_schema)
	GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error)

	// Text-to-speech. Returns encoded audio bytes in the requested format.
	SynthesizeSpeech(ctx context.Context, text string, opts SpeechOptions) ([]byte, error)
}

type SpeechOptions struct {
	Voice  string
	Format string // "mp3" | "wav" | "aac"
	Speed  float64
}

type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	SpeechModel string
	Voice       string
	Timeout     time.Duration
	MaxRetries  int
	Temperature *float64
}

type client struct {
	log         *logger.Logger
	baseURL     string
	apiKey      string
	model       string
	speechModel string
	voice       string
	httpClient  *http.Client
	maxRetries  int
	temperature *float64
}

// ConfigFromEnv reads OPENAI_* variables. A missing key is an error.
func ConfigFromEnv() (Config, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return Config{}, fmt.Errorf("missing OPENAI_API_KEY")
	}
	cfg := Config{
		BaseURL:     strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		APIKey:      apiKey,
		Model:       strings.TrimSpace(os.Getenv("OPENAI_MODEL")),
		SpeechModel: strings.TrimSpace(os.Getenv("OPENAI_TTS_MODEL")),
		Voice:       strings.TrimSpace(os.Getenv("OPENAI_TTS_VOICE")),
		Timeout:     180 * time.Second,
		MaxRetries:  4,
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.Timeout = time.Duration(parsed) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_MAX_RETRIES")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			cfg.MaxRetries = parsed
		}
	}
	// Temperature: default 0.2; "off" omits it for models that reject the parameter.
	temp := 0.2
	cfg.Temperature = &temp
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("OPENAI_TEMPERATURE"))); v != "" {
		if v == "off" || v == "none" || v == "false" {
			cfg.Temperature = nil
		} else if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = &f
		}
	}
	return cfg, nil
}

func NewClient(log *logger.Logger) (Client, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewClientWithConfig(log, cfg)
}

func NewClientWithConfig(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing api key")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4.1-mini"
	}
	speechModel := cfg.SpeechModel
	if speechModel == "" {
		speechModel = "gpt-4o-mini-tts"
	}
	voice := cfg.Voice
	if voice == "" {
		voice = "alloy"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	return &client{
		log:         log.With("service", "OpenAIClient"),
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		model:       model,
		speechModel: speechModel,
		voice:       voice,
		httpClient:  &http.Client{Timeout: timeout},
		maxRetries:  cfg.MaxRetries,
		temperature: cfg.Temperature,
	}, nil
}

func (c *client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if reqID := ctxutil.RequestID(ctx); reqID != "" {
		req.Header.Set("X-Client-Request-Id", reqID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &httpx.StatusError{Service: "openai", StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

// do runs the request with retries and returns the raw body of the successful attempt.
func (c *client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	ctx = ctxutil.Default(ctx)
	var out []byte
	err := httpx.Retry(ctx, c.maxRetries, func(ctx context.Context) (*http.Response, error) {
		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			out = raw
		}
		return resp, err
	}, func(attempt int, sleep time.Duration, err error) {
		c.log.Warn("OpenAI request retrying",
			"path", path,
			"attempt", attempt,
			"max_retries", c.maxRetries,
			"sleep", sleep.String(),
			"error", err.Error(),
		)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// -------------------- Responses API --------------------

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`

	Text *struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text,omitempty"`

	Temperature *float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type == "message" && item.Role == "assistant" {
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					out.WriteString(c.Text)
				}
			}
		}
	}
	return out.String()
}

func (c *client) respond(ctx context.Context, req responsesRequest) (string, error) {
	raw, err := c.do(ctx, http.MethodPost, "/v1/responses", req)
	if err != nil {
		return "", err
	}
	var resp responsesResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("openai decode error: %w", err)
	}
	if resp.Refusal != "" {
		return "", fmt.Errorf("model refused: %s", resp.Refusal)
	}
	text := extractOutputText(resp)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no output_text found in response")
	}
	return text, nil
}

func (c *client) GenerateText(ctx context.Context, system string, user string) (string, error) {
	req := responsesRequest{
		Model: c.model,
		Input: []inputMessage{
			{Role: "system", Content: promptstyle.ApplySystem(system, "text")},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
	}
	return c.respond(ctx, req)
}

func (c *client) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	if schemaName == "" {
		return nil, errors.New("schemaName required")
	}
	if schema == nil {
		return nil, errors.New("schema required")
	}
	req := responsesRequest{
		Model: c.model,
		Input: []inputMessage{
			{Role: "system", Content: promptstyle.ApplySystem(system, "json")},
			{Role: "user", Content: user},
		},
		Temperature: c.temperature,
	}
	req.Text = &struct {
		Format map[string]any `json:"format,omitempty"`
	}{
		Format: map[string]any{
			"type":   "json_schema",
			"name":   schemaName,
			"schema": schema,
			"strict": true,
		},
	}

	jsonText, err := c.respond(ctx, req)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(jsonText), &obj); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w", err)
	}
	return obj, nil
}

// -------------------- Speech --------------------

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format,omitempty"`
	Speed          float64 `json:"speed,omitempty"`
}

// maxSpeechInput is the API limit on characters per speech request.
const maxSpeechInput = 4096

func (c *client) SynthesizeSpeech(ctx context.Context, text string, opts SpeechOptions) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("speech input required")
	}
	if len([]rune(text)) > maxSpeechInput {
		text = string([]rune(text)[:maxSpeechInput])
		c.log.Warn("Speech input truncated", "limit", maxSpeechInput)
	}
	voice := opts.Voice
	if voice == "" {
		voice = c.voice
	}
	format := opts.Format
	if format == "" {
		format = "mp3"
	}
	return c.do(ctx, http.MethodPost, "/v1/audio/speech", speechRequest{
		Model:          c.speechModel,
		Input:          text,
		Voice:          voice,
		ResponseFormat: format,
		Speed:          opts.Speed,
	})
}
