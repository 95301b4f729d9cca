// Package llm adapts the OpenAI chat API into the tier-4 relationship
// verifier used by the decision system.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/config"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/decision"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

const systemPrompt = `You verify company relationships extracted from SEC filings.
Given a sentence, a mentioned company and a claimed relationship type, judge
whether the sentence supports the relationship. Respond with JSON only:
{"verified": bool, "confidence": number between 0 and 1, "reasoning": string}`

// chatClient is the slice of the OpenAI client the verifier needs.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// verdict is the JSON shape the model is instructed to return.
type verdict struct {
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// OpenAIVerifier implements decision.Verifier on top of the chat completions
// API, in JSON mode with temperature 0 so repeated calls on the same sentence
// agree.
type OpenAIVerifier struct {
	client chatClient
	model  string
	logger logging.Logger
}

var _ decision.Verifier = (*OpenAIVerifier)(nil)

// NewOpenAIVerifier builds a verifier from the platform OpenAI config.
func NewOpenAIVerifier(cfg config.OpenAIConfig, log logging.Logger) *OpenAIVerifier {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIVerifier{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.ChatModel,
		logger: log,
	}
}

// Verify asks the model whether the sentence supports the claimed
// relationship.
func (v *OpenAIVerifier) Verify(ctx context.Context, req decision.VerificationRequest) (decision.VerificationResult, error) {
	if req.Sentence == "" {
		return decision.VerificationResult{}, errors.New(errors.ErrCodeValidation, "sentence is empty")
	}

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       v.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: v.userPrompt(req)},
		},
	})
	if err != nil {
		return decision.VerificationResult{}, errors.Wrap(err, errors.ErrCodeVerifierError, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return decision.VerificationResult{}, errors.New(errors.ErrCodeVerifierError, "chat completion returned no choices")
	}

	var out verdict
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return decision.VerificationResult{}, errors.Wrap(err, errors.ErrCodeVerifierError, "verifier returned malformed JSON")
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		return decision.VerificationResult{}, errors.Newf(errors.ErrCodeVerifierError,
			"verifier confidence %.3f outside [0, 1]", out.Confidence)
	}

	v.logger.Debug("verified relationship mention",
		logging.String("mention", req.Mention),
		logging.String("type", req.RelationshipType),
		logging.Bool("verified", out.Verified),
		logging.Float64("confidence", out.Confidence))

	return decision.VerificationResult{
		Verified:   out.Verified,
		Confidence: out.Confidence,
		Reasoning:  out.Reasoning,
	}, nil
}

func (v *OpenAIVerifier) userPrompt(req decision.VerificationRequest) string {
	return fmt.Sprintf(
		"Sentence: %s\nMention: %s\nCompany: %s\nClaimed relationship: %s",
		req.Sentence, req.Mention, req.CompanyName, req.RelationshipType)
}
