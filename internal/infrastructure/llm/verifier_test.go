package llm

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CompanyGraph-Intelligence/internal/domain/decision"
	"github.com/turtacn/CompanyGraph-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompanyGraph-Intelligence/pkg/errors"
)

type fakeChatClient struct {
	content string
	err     error
	gotReq  openai.ChatCompletionRequest
}

func (f *fakeChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.gotReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func newVerifier(fake *fakeChatClient) *OpenAIVerifier {
	return &OpenAIVerifier{
		client: fake,
		model:  "gpt-4o-mini",
		logger: logging.NewNopLogger(),
	}
}

func verificationRequest() decision.VerificationRequest {
	return decision.VerificationRequest{
		Mention:          "Taiwan Semiconductor",
		Sentence:         "We rely on Taiwan Semiconductor for substantially all of our wafer production.",
		RelationshipType: "HAS_SUPPLIER",
		CompanyName:      "Taiwan Semiconductor Manufacturing Company",
	}
}

func TestOpenAIVerifier_Verify(t *testing.T) {
	t.Parallel()
	fake := &fakeChatClient{content: `{"verified": true, "confidence": 0.87, "reasoning": "explicit reliance on the supplier"}`}
	v := newVerifier(fake)

	result, err := v.Verify(context.Background(), verificationRequest())

	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.InDelta(t, 0.87, result.Confidence, 1e-9)
	assert.Equal(t, "explicit reliance on the supplier", result.Reasoning)
}

func TestOpenAIVerifier_RequestShape(t *testing.T) {
	t.Parallel()
	fake := &fakeChatClient{content: `{"verified": false, "confidence": 0.2, "reasoning": "no"}`}
	v := newVerifier(fake)

	_, err := v.Verify(context.Background(), verificationRequest())
	require.NoError(t, err)

	req := fake.gotReq
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Zero(t, req.Temperature)
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[1].Content, "HAS_SUPPLIER")
	assert.Contains(t, req.Messages[1].Content, "Taiwan Semiconductor Manufacturing Company")
}

func TestOpenAIVerifier_EmptySentence(t *testing.T) {
	t.Parallel()
	v := newVerifier(&fakeChatClient{})
	_, err := v.Verify(context.Background(), decision.VerificationRequest{Mention: "Acme"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestOpenAIVerifier_APIError(t *testing.T) {
	t.Parallel()
	v := newVerifier(&fakeChatClient{err: assert.AnError})
	_, err := v.Verify(context.Background(), verificationRequest())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeVerifierError))
}

func TestOpenAIVerifier_MalformedJSON(t *testing.T) {
	t.Parallel()
	v := newVerifier(&fakeChatClient{content: "certainly! here is the answer"})
	_, err := v.Verify(context.Background(), verificationRequest())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeVerifierError))
}

func TestOpenAIVerifier_ConfidenceOutOfRange(t *testing.T) {
	t.Parallel()
	v := newVerifier(&fakeChatClient{content: `{"verified": true, "confidence": 1.4, "reasoning": "over"}`})
	_, err := v.Verify(context.Background(), verificationRequest())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeVerifierError))
}
