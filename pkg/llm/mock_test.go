package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLLMClient_RecordsCalls(t *testing.T) {
	mock := NewMockLLMClient()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, systemMessage string, temperature float64) (*GenerateResponseResult, error) {
		return &GenerateResponseResult{Content: "echo: " + prompt}, nil
	}

	result, err := mock.GenerateResponse(context.Background(), "hello", "sys", 0)
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", result.Content)
	assert.Equal(t, 1, mock.Calls())
	assert.Equal(t, []string{"hello"}, mock.Prompts)
	assert.Equal(t, []string{"sys"}, mock.SystemMessages)

	mock.Reset()
	assert.Equal(t, 0, mock.Calls())
	assert.Empty(t, mock.Prompts)
}

func TestMockLLMClient_Defaults(t *testing.T) {
	mock := &MockLLMClient{}
	result, err := mock.GenerateResponse(context.Background(), "p", "s", 0)
	require.NoError(t, err)
	assert.Empty(t, result.Content)
	assert.Equal(t, "mock-model", mock.GetModel())
	assert.Equal(t, "http://mock-endpoint", mock.GetEndpoint())
}
