package ai_test

import (
	"testing"

	"speclens/ai"
)

func TestCleanJSONContentStripsFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"chatter before", "Here is the JSON you asked for:\n{\"a\":1}", `{"a":1}`},
		{"heading before", "## Result\n{\"a\":1}", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ai.CleanJSONContent(tc.in); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractJSONPayload(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"object with trailing prose", `{"a":1} hope that helps!`, `{"a":1}`},
		{"array", `[1,2,3]`, `[1,2,3]`},
		{"fenced object", "```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`},
		{"prefix prose", "Sure thing {\"a\":1}", `{"a":1}`},
		{"no payload", "I cannot answer that.", ""},
		{"unterminated", "{\"a\":1", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ai.ExtractJSONPayload(tc.in); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
