package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// whisperAPI speaks the OpenAI-compatible /audio/transcriptions multipart
// protocol. OpenAI and Groq differ only in endpoint and model name.
type whisperAPI struct {
	name   string
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

func (w *whisperAPI) Name() string { return w.name }

func (w *whisperAPI) Transcribe(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", req.FileName)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(req.Audio); err != nil {
		return "", err
	}
	writer.WriteField("model", w.model)
	writer.WriteField("response_format", "json")
	if req.Language != "" {
		writer.WriteField("language", req.Language)
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.apiURL, &body)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+w.apiKey)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", context.Canceled
		}
		return "", &Error{Kind: KindNetwork, Provider: w.name, Msg: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &Error{Kind: KindNetwork, Provider: w.name, Msg: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			Kind:     kindForStatus(resp.StatusCode),
			Provider: w.name,
			Status:   resp.StatusCode,
			Msg:      excerpt(respBody),
		}
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &Error{Kind: KindNetwork, Provider: w.name, Msg: "unparseable response: " + excerpt(respBody)}
	}
	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		return "", &Error{Kind: KindEmpty, Provider: w.name, Msg: "transcription returned no text"}
	}
	return text, nil
}

func excerpt(b []byte) string {
	s := string(b)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

// NewOpenAI builds the OpenAI Whisper transcriber. Model defaults to
// whisper-1.
func NewOpenAI(apiKey, model string) Transcriber {
	if model == "" {
		model = "whisper-1"
	}
	return &whisperAPI{
		name:   "openai",
		apiURL: "https://api.openai.com/v1/audio/transcriptions",
		apiKey: apiKey,
		model:  model,
		client: &http.Client{},
	}
}

// NewGroq builds the Groq transcriber on their OpenAI-compatible endpoint.
func NewGroq(apiKey string) Transcriber {
	return &whisperAPI{
		name:   "groq",
		apiURL: "https://api.groq.com/openai/v1/audio/transcriptions",
		apiKey: apiKey,
		model:  "whisper-large-v3-turbo",
		client: &http.Client{},
	}
}
