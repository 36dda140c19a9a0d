package enhancer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	defaultModel     = "claude-haiku-4-5"
	maxTokens        = 2048
)

// Anthropic streams enhancement output from the Messages API over SSE.
type Anthropic struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

func NewAnthropic(apiKey, model string) *Anthropic {
	if model == "" {
		model = defaultModel
	}
	return &Anthropic{
		apiURL: anthropicURL,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{},
	}
}

// NewAnthropicFromEnv reads ANTHROPIC_API_KEY.
func NewAnthropicFromEnv(model string) (*Anthropic, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, errors.New("set ANTHROPIC_API_KEY environment variable")
	}
	return NewAnthropic(key, model), nil
}

func (a *Anthropic) Name() string { return "anthropic" }

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Stream    bool      `json:"stream"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *Anthropic) Enhance(ctx context.Context, transcript, mode string, emit func(string) error) error {
	if strings.TrimSpace(transcript) == "" {
		return &Error{Kind: KindEmpty, Provider: a.Name(), Msg: "empty transcript"}
	}
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	payload, err := json.Marshal(messagesRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		Stream:    true,
		System:    PromptForMode(mode),
		Messages:  []message{{Role: "user", Content: transcript}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.apiURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return context.Canceled
		}
		return &Error{Kind: KindNetwork, Provider: a.Name(), Msg: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &Error{
			Kind:     kindForStatus(resp.StatusCode),
			Provider: a.Name(),
			Status:   resp.StatusCode,
			Msg:      strings.TrimSpace(string(body)),
		}
	}
	return a.readStream(ctx, resp.Body, emit)
}

func (a *Anthropic) readStream(ctx context.Context, body io.Reader, emit func(string) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	sawText := false
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			continue // malformed keepalive or unknown event
		}
		switch ev.Type {
		case "content_block_delta":
			if ev.Delta.Type == "text_delta" && ev.Delta.Text != "" {
				sawText = true
				if err := emit(ev.Delta.Text); err != nil {
					return err
				}
			}
		case "error":
			return &Error{Kind: KindNetwork, Provider: a.Name(), Msg: ev.Error.Message}
		case "message_stop":
			if !sawText {
				return &Error{Kind: KindEmpty, Provider: a.Name(), Msg: "stream ended with no text"}
			}
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &Error{Kind: KindNetwork, Provider: a.Name(), Msg: err.Error()}
	}
	if !sawText {
		return &Error{Kind: KindEmpty, Provider: a.Name(), Msg: "stream ended with no text"}
	}
	return nil
}
