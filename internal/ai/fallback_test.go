package ai

import (
	"net/url"
	"strings"
	"testing"
)

func TestPromptFromDoubleEncodedActionInput(t *testing.T) {
	prompt, ok := promptFromModelText(`{"action_input": "{\"prompt\":\"a red fox\"}"}`)
	if !ok {
		t.Fatal("no prompt extracted from action_input payload")
	}
	if prompt != "a red fox" {
		t.Errorf("prompt = %q, want %q", prompt, "a red fox")
	}

	ref := SynthesisReference(`{"action_input": "{\"prompt\":\"a red fox\"}"}`)
	u, err := url.Parse(ref)
	if err != nil {
		t.Fatalf("synthesis reference is not a well-formed URL: %v", err)
	}
	if u.Scheme != "https" {
		t.Errorf("scheme = %q, want https", u.Scheme)
	}
	if got := u.Query().Get("prompt"); got != "a red fox" {
		t.Errorf("prompt query parameter = %q, want %q", got, "a red fox")
	}
	if !strings.Contains(ref, "prompt=a+red+fox") {
		t.Errorf("reference %q does not contain the URL-encoded prompt", ref)
	}
	if u.Query().Get("seed") == "" {
		t.Error("reference has no seed parameter")
	}
}

func TestPromptShapes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"flat prompt", `{"prompt": "neon city"}`, "neon city"},
		{"flat text", `{"text": "a glass orb"}`, "a glass orb"},
		{"action_input object", `{"action": "generate_image", "action_input": {"prompt": "storm clouds"}}`, "storm clouds"},
		{"action_input plain string", `{"action_input": "two ravens"}`, "two ravens"},
		{"fenced json", "```json\n{\"prompt\": \"mountain lake\"}\n```", "mountain lake"},
		{"json embedded in prose", `Sure! Here you go: {"prompt": "old lighthouse"} - enjoy`, "old lighthouse"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := promptFromModelText(tc.in)
			if !ok {
				t.Fatalf("no prompt extracted from %q", tc.in)
			}
			if got != tc.want {
				t.Errorf("prompt = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUnparsableTextFallsBackToRawPrompt(t *testing.T) {
	if _, ok := promptFromModelText("I cannot make that."); ok {
		t.Fatal("extracted a prompt from plain prose")
	}

	ref := SynthesisReference("I cannot make that.")
	u, err := url.Parse(ref)
	if err != nil {
		t.Fatalf("fallback reference is not a well-formed URL: %v", err)
	}
	if got := u.Query().Get("prompt"); got != "I cannot make that." {
		t.Errorf("fallback prompt = %q, want the raw text", got)
	}
}

func TestRawPromptTruncatesAndStripsBraces(t *testing.T) {
	long := "{" + strings.Repeat("x", 600) + "}"
	got := rawPrompt(long)
	if len(got) > rawPromptLimit {
		t.Errorf("raw prompt length = %d, want <= %d", len(got), rawPromptLimit)
	}
	if strings.ContainsAny(got, "{}") {
		t.Error("raw prompt still contains JSON braces")
	}
}

func TestMalformedActionPayloadNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"{",
		"}{",
		`{"action_input": 42}`,
		`{"action_input": "{\"prompt\": }"}`, // doubly-encoded and malformed
		`{"prompt": null}`,
		"```json\nnot json at all\n```",
	}
	for _, in := range inputs {
		if ref := SynthesisReference(in); ref == "" {
			t.Errorf("SynthesisReference(%q) returned empty reference", in)
		}
	}
}
