package transcriber

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testAPI(url string) *whisperAPI {
	return &whisperAPI{
		name:   "test",
		apiURL: url,
		apiKey: "key",
		model:  "whisper-1",
		client: &http.Client{},
	}
}

func TestTranscribeSuccess(t *testing.T) {
	var gotAuth, gotModel, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		if f, hdr, err := r.FormFile("file"); err == nil {
			gotFile = hdr.Filename
			f.Close()
		}
		w.Write([]byte(`{"text":" hello world "}`))
	}))
	defer srv.Close()

	text, err := testAPI(srv.URL).Transcribe(context.Background(), Request{
		Audio:       []byte("RIFFxxxx"),
		FileName:    "recording.wav",
		ContentType: "audio/wav",
		SampleRate:  16000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if text != "hello world" {
		t.Errorf("text = %q", text)
	}
	if gotAuth != "Bearer key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotModel != "whisper-1" {
		t.Errorf("model field = %q", gotModel)
	}
	if gotFile != "recording.wav" {
		t.Errorf("file name = %q", gotFile)
	}
}

func TestTranscribeTypedFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Kind
	}{
		{"unauthorized", 401, `{"error":"bad key"}`, KindUnauthorized},
		{"forbidden", 403, `{}`, KindUnauthorized},
		{"rate_limited", 429, `{}`, KindRateLimited},
		{"server_error", 500, `{}`, KindNetwork},
		{"empty_text", 200, `{"text":"  "}`, KindEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := testAPI(srv.URL).Transcribe(context.Background(), Request{FileName: "a.wav"})
			var terr *Error
			if !errors.As(err, &terr) {
				t.Fatalf("err = %v, want *transcriber.Error", err)
			}
			if terr.Kind != tt.want {
				t.Errorf("kind = %v, want %v", terr.Kind, tt.want)
			}
		})
	}
}

func TestTranscribeNetworkFailure(t *testing.T) {
	_, err := testAPI("http://127.0.0.1:1").Transcribe(context.Background(), Request{FileName: "a.wav"})
	var terr *Error
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want *transcriber.Error", err)
	}
	if terr.Kind != KindNetwork {
		t.Errorf("kind = %v, want network", terr.Kind)
	}
}

func TestTranscribeCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testAPI(srv.URL).Transcribe(ctx, Request{FileName: "a.wav"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
