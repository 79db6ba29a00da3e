package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/lawhelper/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestOpenAIProvider_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"answer\":\"ok\"}"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", srv.URL+"/v1/", "", srv.Client())
	text, err := p.Complete(context.Background(), Request{System: "sys", Prompt: "question"})
	require.NoError(t, err)
	assert.Equal(t, `{"answer":"ok"}`, text)

	assert.Equal(t, defaultOpenAIModel, got.Model)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "sys"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "question"}, got.Messages[1])
}

func TestOpenAIProvider_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer empty" {
			_, _ = w.Write([]byte(`{"choices":[]}`))
			return
		}
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewOpenAIProvider("sk", srv.URL, "gpt-x", srv.Client()).Complete(context.Background(), Request{})
	assert.ErrorContains(t, err, "status 429")

	_, err = NewOpenAIProvider("empty", srv.URL, "gpt-x", srv.Client()).Complete(context.Background(), Request{})
	assert.ErrorContains(t, err, "empty choices")
}

func TestGeminiProvider_Complete(t *testing.T) {
	orig := generateContent
	t.Cleanup(func() { generateContent = orig })

	var gotModel string
	var gotCfg *genai.GenerateContentConfig
	generateContent = func(_ context.Context, _ *genai.Client, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotModel, gotCfg = model, cfg
		return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(`{"answer":"ok"}`, genai.RoleModel)},
		}}, nil
	}

	p, err := NewGeminiProvider(context.Background(), "key", "")
	require.NoError(t, err)
	text, err := p.Complete(context.Background(), Request{System: "sys", Prompt: "q"})
	require.NoError(t, err)
	assert.Equal(t, `{"answer":"ok"}`, text)
	assert.Equal(t, defaultGeminiModel, gotModel)
	assert.Equal(t, "application/json", gotCfg.ResponseMIMEType)

	generateContent = func(context.Context, *genai.Client, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return nil, errors.New("quota exceeded")
	}
	_, err = p.Complete(context.Background(), Request{})
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewProvider(ctx, &config.Config{AIProvider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Name())

	p, err = NewProvider(ctx, &config.Config{AIProvider: "OpenAI", OpenAIAPIKey: "sk", AIModel: "gpt-4.1"})
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
	assert.Equal(t, "gpt-4.1", p.Model())

	_, err = NewProvider(ctx, &config.Config{AIProvider: "openai"})
	assert.ErrorContains(t, err, "OPENAI_API_KEY")

	_, err = NewProvider(ctx, &config.Config{AIProvider: "gemini"})
	assert.ErrorContains(t, err, "GEMINI_API_KEY")

	_, err = NewProvider(ctx, &config.Config{AIProvider: "claude-local"})
	assert.ErrorContains(t, err, "unknown ai provider")
}

func TestNewProvider_DetectsFromKeys(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		cfg      config.Config
		wantName string
		wantErr  error
	}{
		{name: "openai key", cfg: config.Config{OpenAIAPIKey: "sk"}, wantName: "openai"},
		{name: "openai wins over gemini", cfg: config.Config{OpenAIAPIKey: "sk", GeminiAPIKey: "g"}, wantName: "openai"},
		{name: "debug falls back to mock", cfg: config.Config{Debug: true}, wantName: "mock"},
		{name: "nothing configured", cfg: config.Config{}, wantErr: ErrNoProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(ctx, &tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, p.Name())
		})
	}
}

func TestNewProvider_OpenAIKeyFromEnv(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("LOG_DEBUG", "")
	t.Setenv("OPENAI_API_KEY", "sk-live")

	cfg, err := config.LoadConfig(nil)
	require.NoError(t, err)

	p, err := NewProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())
}

func TestMockProvider_UnknownOperation(t *testing.T) {
	_, err := NewMockProvider().Complete(context.Background(), Request{Operation: "poetry"})
	assert.Error(t, err)
}
