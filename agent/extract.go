package agent

import (
	"encoding/json"

	"drakyn/model"
)

// Extractor finds a structured tool call inside free-form completion text.
//
// A candidate is any balanced {...} region that decodes as a JSON object with
// a non-empty string "tool" and an object "args". "reasoning" is optional.
// Prose, fenced code blocks and narrative around the object are ignored.
// Anything that fails to decode (unbalanced braces, trailing commas, wrong
// field types) is simply not a candidate.
type Extractor struct {
	// Policy picks between several valid candidates. The zero value selects
	// the first one.
	Policy model.ExtractPolicy
}

// Extract applies the default first-candidate policy.
func Extract(text string) (model.ToolCall, bool) {
	return Extractor{}.Extract(text)
}

// Extract returns the selected tool call, or false when the text holds none.
func (e Extractor) Extract(text string) (model.ToolCall, bool) {
	var (
		found model.ToolCall
		ok    bool
	)
	scanCandidates(text, func(call model.ToolCall) bool {
		found, ok = call, true
		return e.Policy == model.ExtractLast
	})
	return found, ok
}

// Candidates returns every valid tool call in text, in order of appearance.
func Candidates(text string) []model.ToolCall {
	var calls []model.ToolCall
	scanCandidates(text, func(call model.ToolCall) bool {
		calls = append(calls, call)
		return true
	})
	return calls
}

// scanCandidates walks text left to right and hands each valid call to visit
// until visit returns false. After an accepted candidate scanning resumes
// past its closing brace; after a rejected one it resumes one byte after the
// opening brace so nested objects are still considered.
func scanCandidates(text string, visit func(model.ToolCall) bool) {
	closes := make(map[int]int)
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		end, seen := closes[i]
		if !seen {
			matchBraces(text, i, closes)
			end = closes[i]
		}
		if end < 0 {
			continue
		}
		call, ok := decodeCall(text[i : end+1])
		if !ok {
			continue
		}
		if !visit(call) {
			return
		}
		i = end
	}
}

// matchBraces scans text from the brace at start to the end of input and
// records, for every opening brace outside a JSON string, the index of its
// closing brace (or -1 when it never closes). A brace seen outside a string
// is in the same scanner state as a fresh scan started there, so each
// recorded entry is final and the text is walked once per string context.
func matchBraces(text string, start int, closes map[int]int) {
	var open []int
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			open = append(open, i)
		case '}':
			if n := len(open); n > 0 {
				closes[open[n-1]] = i
				open = open[:n-1]
			}
		}
	}
	for _, i := range open {
		closes[i] = -1
	}
}

func decodeCall(raw string) (model.ToolCall, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return model.ToolCall{}, false
	}

	var name string
	toolRaw, ok := fields["tool"]
	if !ok || json.Unmarshal(toolRaw, &name) != nil || name == "" {
		return model.ToolCall{}, false
	}

	var args map[string]any
	argsRaw, ok := fields["args"]
	if !ok || json.Unmarshal(argsRaw, &args) != nil || args == nil {
		return model.ToolCall{}, false
	}

	var reasoning string
	if r, ok := fields["reasoning"]; ok {
		// Non-string reasoning is dropped rather than rejecting the call.
		_ = json.Unmarshal(r, &reasoning)
	}

	return model.ToolCall{Tool: name, Args: args, Reasoning: reasoning}, true
}
