package llmservice

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"hr-rag/internal/config"
)

type fakeModel struct {
	reply   string
	err     error
	prompts []string
	opts    llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, opt := range options {
		opt(&f.opts)
	}
	for _, m := range messages {
		for _, p := range m.Parts {
			if text, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, text.Text)
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.reply == "" {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestGenerate_ReturnsReplyVerbatim(t *testing.T) {
	model := &fakeModel{reply: "  You get 20 days.\n"}
	client := NewWithModel(model, 0)

	got, err := client.Generate(context.Background(), "how many vacation days?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "  You get 20 days.\n" {
		t.Errorf("answer = %q, want the reply unchanged", got)
	}
	if len(model.prompts) != 1 || model.prompts[0] != "how many vacation days?" {
		t.Errorf("prompts sent = %v", model.prompts)
	}
	if model.opts.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", model.opts.Temperature)
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{name: "remote failure", model: &fakeModel{err: errors.New("rate limited")}},
		{name: "no choices", model: &fakeModel{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWithModel(tt.model, 0).Generate(context.Background(), "q"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNew(t *testing.T) {
	if _, err := New(&config.LLMConfig{Provider: "gemini"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	client, err := New(&config.LLMConfig{Provider: config.ProviderOpenAI, BaseURL: "http://127.0.0.1:1/v1", Key: "test", Model: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.temperature != 0 {
		t.Errorf("temperature = %v", client.temperature)
	}
}
