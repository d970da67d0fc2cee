package provider

import (
	"strings"
	"testing"

	"drakyn/model"
	"drakyn/prompt"
	"drakyn/provider/testutil"
)

func TestToTurns(t *testing.T) {
	messages := []model.Message{
		{Role: model.RoleSystem, Content: "sys"},
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: `{"tool":"search","args":{}}`},
		{Role: model.RoleTool, Name: "search", Content: `{"hits":1}`},
		{Role: model.RoleAssistant, Content: `{"tool":"open","args":{}}`},
		{Role: model.RoleTool, Name: "open", Content: `"page"`},
	}

	turns := toTurns(messages, true)
	if len(turns) != len(messages) {
		t.Fatalf("len(turns) = %d, want %d", len(turns), len(messages))
	}

	wantRoles := []string{"system", "user", "assistant", "user", "assistant", "user"}
	for i, want := range wantRoles {
		if turns[i].Role != want {
			t.Errorf("turns[%d].Role = %q, want %q", i, turns[i].Role, want)
		}
	}

	if turns[3].Content != "Tool 'search' returned:\n{\"hits\":1}" {
		t.Errorf("first tool turn = %q", turns[3].Content)
	}
	if strings.Contains(turns[3].Content, prompt.FormatReminder) {
		t.Error("reminder should only be appended to the latest tool turn")
	}
	if !strings.HasPrefix(turns[5].Content, "Tool 'open' returned:\n\"page\"") {
		t.Errorf("latest tool turn = %q", turns[5].Content)
	}
	if !strings.HasSuffix(turns[5].Content, prompt.FormatReminder) {
		t.Error("latest tool turn is missing the format reminder")
	}
}

func TestToTurnsWithoutTools(t *testing.T) {
	messages := []model.Message{
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleTool, Content: "x"},
	}

	turns := toTurns(messages, false)
	if turns[1].Content != "Tool 'tool' returned:\nx" {
		t.Errorf("tool turn = %q", turns[1].Content)
	}
}

func TestToTurnsDoesNotModifyInput(t *testing.T) {
	messages := []model.Message{{Role: model.RoleTool, Name: "a", Content: "x"}}
	_ = toTurns(messages, true)
	if messages[0].Content != "x" || messages[0].Role != model.RoleTool {
		t.Errorf("input mutated: %+v", messages[0])
	}
}

func TestSplitSystem(t *testing.T) {
	turns := []turn{
		{Role: "system", Content: "a"},
		{Role: "user", Content: "q"},
		{Role: "system", Content: "b"},
	}

	system, rest := splitSystem(turns)
	if system != "a\n\nb" {
		t.Errorf("system = %q", system)
	}
	if len(rest) != 1 || rest[0].Content != "q" {
		t.Errorf("rest = %+v", rest)
	}
}

func TestConvertToOllamaMessages(t *testing.T) {
	tests := []struct {
		name  string
		input []model.Message
		want  []string
	}{
		{
			name:  "empty slice",
			input: []model.Message{},
			want:  []string{},
		},
		{
			name:  "single message",
			input: []model.Message{{Role: "user", Content: "Hello"}},
			want:  []string{"user:Hello"},
		},
		{
			name: "tool message becomes user turn",
			input: []model.Message{
				{Role: "user", Content: "Hello"},
				{Role: "assistant", Content: "call"},
				{Role: "tool", Name: "t", Content: "ok"},
			},
			want: []string{"user:Hello", "assistant:call", "user:Tool 't' returned:\nok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertToOllamaMessages(tt.input, false)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if s := got[i].Role + ":" + got[i].Content; s != tt.want[i] {
					t.Errorf("[%d] = %q, want %q", i, s, tt.want[i])
				}
			}
		})
	}
}

func TestConvertToOpenAIMessages(t *testing.T) {
	got := ConvertToOpenAIMessages([]model.Message{
		{Role: "system", Content: "s"},
		{Role: "user", Content: "u"},
		{Role: "assistant", Content: "a"},
		{Role: "tool", Name: "t", Content: "r"},
	}, false)

	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[0].OfSystem == nil {
		t.Error("[0] should be a system message")
	}
	if got[1].OfUser == nil {
		t.Error("[1] should be a user message")
	}
	if got[2].OfAssistant == nil {
		t.Error("[2] should be an assistant message")
	}
	if got[3].OfUser == nil {
		t.Error("[3] tool result should be sent as a user message")
	}
}

func TestRenderTranscript(t *testing.T) {
	system, text := renderTranscript([]model.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "call"},
		{Role: "tool", Name: "t", Content: "r"},
	}, false)

	if system != "be brief" {
		t.Errorf("system = %q", system)
	}
	want := "hi\n\n[Assistant]: call\n\nTool 't' returned:\nr"
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

func TestConvertToAnthropicMessages(t *testing.T) {
	msgs, system := convertToAnthropicMessages([]model.Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "call"},
		{Role: "tool", Name: "t", Content: "r"},
	}, true)

	if len(system) != 1 || system[0].Text != "sys" {
		t.Errorf("system blocks = %+v", system)
	}
	if len(msgs) != 3 {
		t.Fatalf("len(msgs) = %d, want 3", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[1].Role != "assistant" || msgs[2].Role != "user" {
		t.Errorf("roles = %s %s %s", msgs[0].Role, msgs[1].Role, msgs[2].Role)
	}
}

func TestSplitSystemFixtureConversation(t *testing.T) {
	system, rest := splitSystem(toTurns(testutil.TestMessages(), true))

	if system != "You are a helpful assistant." {
		t.Errorf("system = %q", system)
	}
	if len(rest) != 3 {
		t.Fatalf("len(rest) = %d, want 3", len(rest))
	}
	last := rest[2]
	if last.Role != model.RoleUser {
		t.Errorf("tool turn role = %q, want user", last.Role)
	}
	if !strings.HasPrefix(last.Content, "Tool 'search_files' returned:") {
		t.Errorf("tool turn = %q", last.Content)
	}
	if !strings.HasSuffix(last.Content, prompt.FormatReminder) {
		t.Error("reminder missing from last tool turn")
	}
}
