package task

import "strings"

// ParseDeterministicCall extracts a tool name and its JSON argument object
// from a nextSteps string matching the grammar:
//
//	"Call " TOOL_NAME "(" JSON_OBJECT ")"
//
// Anything after the closing paren is human commentary and ignored. ok is
// false if the prefix does not match or the JSON object is not balanced;
// callers MUST fall back to the LLM continuation path in that case, never
// treat it as a hard error.
func ParseDeterministicCall(nextSteps string) (toolName, argsJSON string, ok bool) {
	const prefix = "Call "
	s := strings.TrimSpace(nextSteps)
	if !strings.HasPrefix(s, prefix) {
		return "", "", false
	}
	rest := s[len(prefix):]

	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return "", "", false
	}
	name := strings.TrimSpace(rest[:open])
	if name == "" {
		return "", "", false
	}

	body := rest[open+1:]
	jsonStart := strings.IndexByte(body, '{')
	if jsonStart < 0 {
		return "", "", false
	}

	depth := 0
	end := -1
	for i := jsonStart; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end != -1 {
			break
		}
	}
	if end == -1 {
		return "", "", false
	}

	// A closing paren must follow the JSON object (commentary may follow
	// after that, and is ignored).
	afterJSON := strings.TrimLeft(body[end+1:], " \t")
	if !strings.HasPrefix(afterJSON, ")") {
		return "", "", false
	}

	return name, body[jsonStart : end+1], true
}
