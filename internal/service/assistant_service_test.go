package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dispute-service/internal/llm"
	"github.com/spec-kit/dispute-service/internal/vector"
)

type fakeModel struct {
	reply      string
	generated  []string
	embedErr   error
	generating error
}

func (f *fakeModel) GenerateContent(_ context.Context, prompt string, _ []llm.Message) (string, error) {
	if f.generating != nil {
		return "", f.generating
	}
	f.generated = append(f.generated, prompt)
	return f.reply, nil
}

func (f *fakeModel) Embed(_ context.Context, _ string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeIndex struct {
	matches  []vector.Match
	queryErr error
	upserted []vector.Point
}

func (f *fakeIndex) Upsert(_ context.Context, points []vector.Point) error {
	f.upserted = append(f.upserted, points...)
	return nil
}

func (f *fakeIndex) Query(_ context.Context, _ []float32, _ int) ([]vector.Match, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.matches, nil
}

func TestChatUsesRetrievedContext(t *testing.T) {
	model := &fakeModel{reply: "UPI failures reverse in T+1 days."}
	index := &fakeIndex{matches: []vector.Match{
		{ID: "policy-0", Score: 0.9, Metadata: map[string]string{"text": "UPI auto-reversal policy text"}},
	}}
	svc := NewAssistantService(model, index, nil)

	reply, err := svc.Chat(context.Background(), "when is my UPI refund due?", nil)
	require.NoError(t, err)

	assert.True(t, reply.UsedRetrieval)
	assert.False(t, reply.ShouldEscalate)
	require.Len(t, model.generated, 1)
	assert.Contains(t, model.generated[0], "UPI auto-reversal policy text")
}

func TestChatFallsBackWhenRetrievalFails(t *testing.T) {
	model := &fakeModel{reply: "answer"}
	index := &fakeIndex{queryErr: errors.New("index down")}
	svc := NewAssistantService(model, index, nil)

	reply, err := svc.Chat(context.Background(), "what is the TAT for L2?", nil)
	require.NoError(t, err)

	assert.False(t, reply.UsedRetrieval)
	require.Len(t, model.generated, 1)
	assert.Contains(t, model.generated[0], "Turnaround Time", "static policy context used")
}

func TestChatWithoutIndexUsesFallback(t *testing.T) {
	model := &fakeModel{reply: "answer"}
	svc := NewAssistantService(model, nil, nil)

	reply, err := svc.Chat(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.False(t, reply.UsedRetrieval)
}

func TestChatEscalationTriggers(t *testing.T) {
	model := &fakeModel{reply: "escalating"}
	svc := NewAssistantService(model, nil, nil)

	for _, message := range []string{
		"I think this is FRAUD",
		"this looks like a scam",
		"urgent please help",
		"I am unsatisfied with the resolution",
	} {
		reply, err := svc.Chat(context.Background(), message, nil)
		require.NoError(t, err)
		assert.True(t, reply.ShouldEscalate, "message %q", message)
	}

	reply, err := svc.Chat(context.Background(), "where is my refund?", nil)
	require.NoError(t, err)
	assert.False(t, reply.ShouldEscalate)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	svc := NewAssistantService(&fakeModel{}, nil, nil)
	_, err := svc.Chat(context.Background(), "   ", nil)
	assert.Error(t, err)
}

func TestExtractDisputeDetailsCleansMarkdownFences(t *testing.T) {
	model := &fakeModel{reply: "```json\n{\"amount\": 4500, \"issueCategory\": \"UPI Transaction\", \"channel\": \"Mobile App\", \"priority\": \"L2\"}\n```"}
	svc := NewAssistantService(model, nil, nil)

	details, err := svc.ExtractDisputeDetails(context.Background(), []llm.Message{
		{Role: "user", Content: "I lost 4500 on a UPI payment in the app"},
	})
	require.NoError(t, err)

	require.NotNil(t, details.Amount)
	assert.Equal(t, 4500.0, *details.Amount)
	assert.Equal(t, "UPI Transaction", details.IssueCategory)
	assert.Equal(t, "Mobile App", details.Channel)
	assert.Equal(t, "L2", details.Priority)
}

func TestExtractDisputeDetailsNullAmount(t *testing.T) {
	model := &fakeModel{reply: `{"amount": null, "issueCategory": "General Inquiry", "channel": "Chatbot", "priority": "L3"}`}
	svc := NewAssistantService(model, nil, nil)

	details, err := svc.ExtractDisputeDetails(context.Background(), []llm.Message{
		{Role: "user", Content: "just a question"},
	})
	require.NoError(t, err)
	assert.Nil(t, details.Amount)
	assert.Equal(t, "L3", details.Priority)
}

func TestExtractDisputeDetailsUnparseableReply(t *testing.T) {
	model := &fakeModel{reply: "I could not find any JSON to give you"}
	svc := NewAssistantService(model, nil, nil)

	_, err := svc.ExtractDisputeDetails(context.Background(), []llm.Message{
		{Role: "user", Content: "hi"},
	})
	assert.Error(t, err)
}

func TestExtractDisputeDetailsRequiresHistory(t *testing.T) {
	svc := NewAssistantService(&fakeModel{}, nil, nil)
	_, err := svc.ExtractDisputeDetails(context.Background(), nil)
	assert.Error(t, err)
}

func TestKnowledgeIngestChunksAndUpserts(t *testing.T) {
	model := &fakeModel{}
	index := &fakeIndex{}
	svc := NewKnowledgeService(model, index, nil, nil)

	text := strings.Repeat("policy ", 400) // ~2800 chars, 3 chunks
	chunks, err := svc.IngestDocument(context.Background(), "policy.txt", "text/plain", []byte(text))
	require.NoError(t, err)

	assert.Equal(t, 3, chunks)
	require.Len(t, index.upserted, 3)
	assert.Equal(t, "policy.txt-0", index.upserted[0].ID)
	assert.Equal(t, "policy.txt", index.upserted[0].Metadata["filename"])
	assert.NotEmpty(t, index.upserted[0].Metadata["text"])
}

func TestKnowledgeIngestRejectsUnsupportedType(t *testing.T) {
	svc := NewKnowledgeService(&fakeModel{}, &fakeIndex{}, nil, nil)
	_, err := svc.IngestDocument(context.Background(), "table.xlsx", "application/vnd.ms-excel", []byte("x"))
	assert.Error(t, err)
}

func TestKnowledgeIngestRequiresIndex(t *testing.T) {
	svc := NewKnowledgeService(&fakeModel{}, nil, nil, nil)
	_, err := svc.IngestDocument(context.Background(), "policy.txt", "text/plain", []byte("text"))
	assert.Error(t, err)
}

func TestChunkTextBoundaries(t *testing.T) {
	assert.Nil(t, chunkText("   ", 10))
	assert.Equal(t, []string{"abc"}, chunkText("abc", 10))
	assert.Equal(t, []string{"abcde", "fghij", "k"}, chunkText("abcdefghijk", 5))
}
