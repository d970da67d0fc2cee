package agent

import (
	"strings"
	"testing"
	"time"

	"drakyn/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantOK    bool
		wantTool  string
		wantArgs  map[string]any
		wantReson string
	}{
		{
			name:   "plain prose",
			text:   "The capital of France is Paris.",
			wantOK: false,
		},
		{
			name:      "bare object",
			text:      `{"tool":"search_files","args":{"pattern":"*.py"},"reasoning":"need files"}`,
			wantOK:    true,
			wantTool:  "search_files",
			wantArgs:  map[string]any{"pattern": "*.py"},
			wantReson: "need files",
		},
		{
			name:     "embedded in prose",
			text:     "Let me look that up.\n{\"tool\": \"get_weather\", \"args\": {\"location\": \"Paris\"}}\nOne moment.",
			wantOK:   true,
			wantTool: "get_weather",
			wantArgs: map[string]any{"location": "Paris"},
		},
		{
			name:     "fenced code block",
			text:     "I'll search.\n```json\n{\n  \"tool\": \"search_files\",\n  \"args\": {\"pattern\": \"*.go\"}\n}\n```",
			wantOK:   true,
			wantTool: "search_files",
			wantArgs: map[string]any{"pattern": "*.go"},
		},
		{
			name:     "braces inside strings",
			text:     `{"tool":"write","args":{"text":"func main() { }"},"reasoning":"a } in here"}`,
			wantOK:   true,
			wantTool: "write",
			wantArgs: map[string]any{"text": "func main() { }"},
		},
		{
			name:     "escaped quotes inside strings",
			text:     `{"tool":"echo","args":{"msg":"she said \"hi {\""}}`,
			wantOK:   true,
			wantTool: "echo",
			wantArgs: map[string]any{"msg": `she said "hi {"`},
		},
		{
			name:     "empty args object",
			text:     `{"tool":"list_tools","args":{}}`,
			wantOK:   true,
			wantTool: "list_tools",
			wantArgs: map[string]any{},
		},
		{
			name:   "trailing comma",
			text:   `{"tool":"search_files","args":{"pattern":"*.py"},}`,
			wantOK: false,
		},
		{
			name:   "unbalanced braces",
			text:   `{"tool":"search_files","args":{"pattern":"*.py"}`,
			wantOK: false,
		},
		{
			name:   "missing args",
			text:   `{"tool":"search_files"}`,
			wantOK: false,
		},
		{
			name:   "args is not an object",
			text:   `{"tool":"search_files","args":["*.py"]}`,
			wantOK: false,
		},
		{
			name:   "null args",
			text:   `{"tool":"search_files","args":null}`,
			wantOK: false,
		},
		{
			name:   "tool is not a string",
			text:   `{"tool":42,"args":{}}`,
			wantOK: false,
		},
		{
			name:   "empty tool name",
			text:   `{"tool":"","args":{}}`,
			wantOK: false,
		},
		{
			name:     "non-string reasoning is dropped",
			text:     `{"tool":"t","args":{},"reasoning":7}`,
			wantOK:   true,
			wantTool: "t",
			wantArgs: map[string]any{},
		},
		{
			name:     "unrelated object before the call",
			text:     `Config is {"debug": true}. Now: {"tool":"t","args":{"a":1}}`,
			wantOK:   true,
			wantTool: "t",
			wantArgs: map[string]any{"a": float64(1)},
		},
		{
			name:     "call nested in a wrapper object",
			text:     `{"action": {"tool":"inner","args":{}}}`,
			wantOK:   true,
			wantTool: "inner",
			wantArgs: map[string]any{},
		},
		{
			name:   "lone brace",
			text:   "use { and } carefully",
			wantOK: false,
		},
		{
			name:   "empty",
			text:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, ok := Extract(tt.text)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantTool, call.Tool)
			assert.Equal(t, tt.wantArgs, call.Args)
			assert.Equal(t, tt.wantReson, call.Reasoning)
		})
	}
}

func TestExtractorPolicy(t *testing.T) {
	verbose := "For example, a call looks like " +
		`{"tool":"example_tool","args":{"x":1}}` +
		". Here is my real call:\n" +
		`{"tool":"search_files","args":{"pattern":"*.md"},"reasoning":"find docs"}`
	terse := `{"tool":"search_files","args":{"pattern":"*.md"}}`

	tests := []struct {
		name   string
		policy model.ExtractPolicy
		text   string
		want   string
	}{
		{name: "first on verbose", policy: model.ExtractFirst, text: verbose, want: "example_tool"},
		{name: "last on verbose", policy: model.ExtractLast, text: verbose, want: "search_files"},
		{name: "zero value on verbose", text: verbose, want: "example_tool"},
		{name: "first on terse", policy: model.ExtractFirst, text: terse, want: "search_files"},
		{name: "last on terse", policy: model.ExtractLast, text: terse, want: "search_files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, ok := Extractor{Policy: tt.policy}.Extract(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, call.Tool)
		})
	}
}

func TestCandidates(t *testing.T) {
	text := `{"tool":"a","args":{}} junk {"tool":"b","args":{"k":"v"}} {"tool":"c"}`
	calls := Candidates(text)
	require.Len(t, calls, 2)
	assert.Equal(t, "a", calls[0].Tool)
	assert.Equal(t, "b", calls[1].Tool)
}

func TestExtractNeverPanics(t *testing.T) {
	inputs := []string{
		"{", "}", "{{{{", "}}}}", `{"`, `{"tool":"`, `{"tool":"x","args":{"a":"\`,
		"\x00{\x00}", `{"tool":"x","args":{}}}}}`, "```json\n{\n```",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Extract(in) }, "input %q", in)
	}
}

func TestExtractUnbalancedBracesIsLinear(t *testing.T) {
	call := `{"tool":"search_files","args":{"pattern":"*.go"}}`
	text := strings.Repeat("{", 200000) + " " + call + " " + strings.Repeat("{ \"", 1000)

	start := time.Now()
	got, ok := Extract(text)
	elapsed := time.Since(start)

	require.True(t, ok)
	assert.Equal(t, "search_files", got.Tool)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestExtractNestedInsideUnclosedBrace(t *testing.T) {
	got, ok := Extract(`{ draft: {"tool":"a","args":{}} and a stray "quote`)
	require.True(t, ok)
	assert.Equal(t, "a", got.Tool)
}
