package ai

import (
	"encoding/json"
	"math/rand"
	"net/url"
	"strconv"
	"strings"
)

const (
	synthesisBaseURL = "https://image.pollinations.ai/"

	// rawPromptLimit caps how much raw model text is forwarded as a prompt
	// when no structured action can be parsed.
	rawPromptLimit = 500
)

// SynthesisReference converts the model's textual output into an image
// synthesis URL. It first tries to parse an embedded image-generation action
// (various JSON shapes); failing that, the raw text itself becomes the
// prompt, truncated and with JSON braces stripped. It never fails: malformed
// or doubly-encoded payloads fall through to the raw-text path.
func SynthesisReference(modelText string) string {
	if prompt, ok := promptFromModelText(modelText); ok {
		return BuildSynthesisURL(prompt)
	}
	return BuildSynthesisURL(rawPrompt(modelText))
}

// BuildSynthesisURL builds the image service URL for a prompt, with a
// randomized seed so repeated prompts yield distinct renders.
func BuildSynthesisURL(prompt string) string {
	q := url.Values{}
	q.Set("prompt", prompt)
	q.Set("seed", strconv.Itoa(rand.Intn(100_000_000)))
	return synthesisBaseURL + "?" + q.Encode()
}

// promptFromModelText locates a JSON object in the model text and extracts an
// image prompt from whichever shape matches:
//
//   - {"action_input": "<JSON-encoded object with prompt/text>"}
//   - {"action_input": {"prompt": ...}} or {"action_input": "plain prompt"}
//   - flat {"prompt": ...} or {"text": ...}
func promptFromModelText(s string) (string, bool) {
	s = stripCodeFences(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err != nil {
		return "", false
	}

	if v, ok := obj["action_input"]; ok {
		switch input := v.(type) {
		case string:
			// action_input may itself be a JSON-encoded object.
			var inner map[string]any
			if err := json.Unmarshal([]byte(input), &inner); err == nil {
				if p, ok := promptField(inner); ok {
					return p, true
				}
			}
			if strings.TrimSpace(input) != "" {
				return input, true
			}
		case map[string]any:
			if p, ok := promptField(input); ok {
				return p, true
			}
		}
	}

	return promptField(obj)
}

func promptField(m map[string]any) (string, bool) {
	for _, key := range []string{"prompt", "text"} {
		if s, ok := m[key].(string); ok && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

// rawPrompt prepares raw model text for use as a prompt: first 500
// characters, JSON braces stripped.
func rawPrompt(s string) string {
	if len(s) > rawPromptLimit {
		s = s[:rawPromptLimit]
	}
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")
	return strings.TrimSpace(s)
}

func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
