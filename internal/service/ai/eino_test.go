package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/violet/backend/internal/model/chat"
)

type recordingModel struct {
	input []*schema.Message
}

func (m *recordingModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.input = input
	return schema.AssistantMessage("Hello boss!", nil), nil
}

func (m *recordingModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m.input = input
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage("Hello boss!", nil)}), nil
}

func (m *recordingModel) BindTools(_ []*schema.ToolInfo) error { return nil }

func TestEinoProviderMessageOrder(t *testing.T) {
	ctx := context.Background()
	rec := &recordingModel{}

	p, err := NewEinoProvider(ctx, "fake", rec)
	require.NoError(t, err)
	assert.Equal(t, "fake", p.Name())

	reply, err := p.Generate(ctx, Prompt{
		System: "be brief {not a placeholder}",
		History: []chat.Turn{
			{Speaker: chat.User, Text: "hi"},
			{Speaker: chat.Assistant, Text: "Hello!"},
		},
		Query: "time?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello boss!", reply)

	require.Len(t, rec.input, 4)
	assert.Equal(t, schema.System, rec.input[0].Role)
	assert.Equal(t, "be brief {not a placeholder}", rec.input[0].Content)
	assert.Equal(t, schema.User, rec.input[1].Role)
	assert.Equal(t, schema.Assistant, rec.input[2].Role)
	assert.Equal(t, "time?", rec.input[3].Content)
}

func TestOpenAIProviderGenerate(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Sure thing, boss."}}]}`)
	}))
	defer srv.Close()

	providers := NewOpenAIProviders("test-key", srv.URL+"/", []string{"gpt-4o-mini"}, srv.Client(), option.WithMaxRetries(0))
	require.Len(t, providers, 1)
	assert.Equal(t, "openai/gpt-4o-mini", providers[0].Name())

	reply, err := providers[0].Generate(context.Background(), Prompt{
		System:  "SYS",
		History: []chat.Turn{{Speaker: chat.User, Text: "hi"}},
		Query:   "help",
	})
	require.NoError(t, err)
	assert.Equal(t, "Sure thing, boss.", reply)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "help", got.Messages[2].Content)
}

func TestOpenAIProviderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"bad key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	providers := NewOpenAIProviders("bad", srv.URL+"/", []string{"m"}, srv.Client(), option.WithMaxRetries(0))
	_, err := providers[0].Generate(context.Background(), Prompt{Query: "q"})
	assert.Error(t, err)
}
