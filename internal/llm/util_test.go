package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock_PlainJSON(t *testing.T) {
	input := `{"key": "value"}`
	assert.Equal(t, input, CleanJSONBlock(input))
}

func TestCleanJSONBlock_JSONFence(t *testing.T) {
	input := "```json\n{\"key\": \"value\"}\n```"
	assert.Equal(t, `{"key": "value"}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_GenericFence(t *testing.T) {
	input := "```\n{\"key\": \"value\"}\n```"
	assert.Equal(t, `{"key": "value"}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_FenceWithLanguageIdentifier(t *testing.T) {
	input := "```javascript\n{\"key\": \"value\"}\n```"
	assert.Equal(t, `{"key": "value"}`, CleanJSONBlock(input))
}

func TestCleanJSONBlock_EmbeddedBackticksSurvive(t *testing.T) {
	input := "```json\n{\"note\": \"uses `go test`\"}\n```"
	assert.Equal(t, "{\"note\": \"uses `go test`\"}", CleanJSONBlock(input))
}

func TestCleanJSONBlock_Whitespace(t *testing.T) {
	input := "  \n {\"key\": 1} \n "
	assert.Equal(t, `{"key": 1}`, CleanJSONBlock(input))
}
