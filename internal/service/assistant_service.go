package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/dispute-service/internal/llm"
	"github.com/spec-kit/dispute-service/internal/vector"
	apperrors "github.com/spec-kit/dispute-service/pkg/util"
)

const retrievalTopK = 3

// fallbackContext is the static policy used when retrieval is not
// configured or fails mid-request.
const fallbackContext = `
You are a Bank Dispute Resolution Assistant. Use the following policy to answer questions:

1. Turnaround Time (TAT):
   - L0 (Critical/Fraud): 4 Hours.
   - L1 (High Priority): 24 Hours.
   - L2 (Medium): 48 Hours.
   - L3 (Low): 3-5 Working Days.

2. Escalation Policy:
   - If a user mentions "fraud", "scam", or "urgent", mark as L0.
   - If a user is unsatisfied, offer to lodge a formal dispute.

3. Refund Policy:
   - UPI failures are auto-reversed in T+1 days.
   - Credit Card disputes take 7-14 days.

Answer the user's question based on this context. Be polite and professional.
`

// AssistantService wraps the hosted model with retrieval-augmented
// context and chat-history field extraction.
type AssistantService struct {
	model  llm.Client
	index  vector.Index
	logger *zap.Logger
}

// ChatReply is the assistant's answer plus routing hints for the UI.
type ChatReply struct {
	Content        string
	ShouldEscalate bool
	UsedRetrieval  bool
}

// ExtractedDetails holds dispute fields pulled out of a conversation.
// Pointer fields are nil when the model could not find a value.
type ExtractedDetails struct {
	Amount        *float64 `json:"amount"`
	IssueCategory string   `json:"issueCategory"`
	Channel       string   `json:"channel"`
	Priority      string   `json:"priority"`
}

// NewAssistantService constructs the service. The index may be nil, in
// which case every answer uses the static policy context.
func NewAssistantService(model llm.Client, index vector.Index, logger *zap.Logger) *AssistantService {
	return &AssistantService{model: model, index: index, logger: logger}
}

// Chat answers one user message with conversation history. Retrieval
// failures degrade to the static policy context rather than erroring.
func (s *AssistantService) Chat(ctx context.Context, message string, history []llm.Message) (*ChatReply, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}

	contextBlock := fallbackContext
	usedRetrieval := false
	if s.index != nil {
		if retrieved, ok := s.retrieve(ctx, message); ok {
			contextBlock = retrieved
			usedRetrieval = true
		}
	}

	prompt := fmt.Sprintf("Context: %s\n\nUser Question: %s\n\nAnswer:", contextBlock, message)
	answer, err := s.model.GenerateContent(ctx, prompt, history)
	if err != nil {
		return nil, err
	}

	return &ChatReply{
		Content:        answer,
		ShouldEscalate: shouldEscalate(message),
		UsedRetrieval:  usedRetrieval,
	}, nil
}

// ExtractDisputeDetails asks the model to pull dispute fields out of a
// chat transcript and parses its JSON reply.
func (s *AssistantService) ExtractDisputeDetails(ctx context.Context, history []llm.Message) (*ExtractedDetails, error) {
	if len(history) == 0 {
		return nil, apperrors.NewValidationError("chat history required", nil)
	}

	var transcript strings.Builder
	for _, msg := range history {
		transcript.WriteString(msg.Role)
		transcript.WriteString(": ")
		transcript.WriteString(msg.Content)
		transcript.WriteString("\n")
	}

	prompt := fmt.Sprintf(`Analyze the following chat history between a user and a bank support assistant.
Extract the following details if present:
- amount: The amount of money involved (number only).
- issueCategory: The category of the issue (e.g., "UPI Transaction", "Credit Card", "Fraud", "General Inquiry").
- channel: The channel where the issue occurred (default to "Chatbot" if not specified, but try to infer like "Mobile App", "Net Banking").
- priority: The priority level based on urgency (L0 for fraud/urgent, L1 for high, L2 for medium, L3 for low).

Chat History:
%s

Return the result as a JSON object with keys: amount, issueCategory, channel, priority.
If a field is not found, use null or a reasonable default.
Do not include markdown formatting in the response, just the raw JSON string.`, transcript.String())

	raw, err := s.model.GenerateContent(ctx, prompt, nil)
	if err != nil {
		return nil, err
	}

	details, err := parseExtraction(raw)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("unparseable extraction reply", zap.Error(err))
		}
		return nil, apperrors.NewDomainError("EXTRACTION_FAILED", "could not extract dispute details", 502, nil)
	}
	return details, nil
}

// parseExtraction tolerates the model wrapping its JSON in markdown
// code fences despite instructions.
func parseExtraction(raw string) (*ExtractedDetails, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var details ExtractedDetails
	if err := json.Unmarshal([]byte(cleaned), &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (s *AssistantService) retrieve(ctx context.Context, message string) (string, bool) {
	embedding, err := s.model.Embed(ctx, message)
	if err != nil {
		s.logRetrievalFailure(err)
		return "", false
	}
	matches, err := s.index.Query(ctx, embedding, retrievalTopK)
	if err != nil {
		s.logRetrievalFailure(err)
		return "", false
	}
	if len(matches) == 0 {
		return "", false
	}

	chunks := make([]string, 0, len(matches))
	for _, match := range matches {
		if text := match.Metadata["text"]; text != "" {
			chunks = append(chunks, text)
		}
	}
	if len(chunks) == 0 {
		return "", false
	}

	return fmt.Sprintf(`You are a Bank Dispute Resolution Assistant.
Use the following retrieved context to answer the user's question.
If the answer is not in the context, say you don't know and advise them to contact support.

Retrieved Context:
%s`, strings.Join(chunks, "\n\n")), true
}

func (s *AssistantService) logRetrievalFailure(err error) {
	if s.logger != nil {
		s.logger.Warn("retrieval failed, using static policy context", zap.Error(err))
	}
}

func shouldEscalate(message string) bool {
	lower := strings.ToLower(message)
	for _, trigger := range []string{"fraud", "scam", "urgent", "unsatisfied"} {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}
