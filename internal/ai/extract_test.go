package ai

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fenced with commentary",
			input: "Plan:\n```json\n{\"a\":1}\n```\nThanks",
			want:  `{"a":1}`,
		},
		{
			name:  "bare object",
			input: `{"title":"Unité"}`,
			want:  `{"title":"Unité"}`,
		},
		{
			name:  "array",
			input: "Here you go: [1, 2, 3] done",
			want:  "[1, 2, 3]",
		},
		{
			name:  "object opens before array",
			input: `note {"items":[1,2]} trailing [ignored]`,
			want:  `{"items":[1,2]}`,
		},
		{
			name:  "array opens before object",
			input: `[{"a":1},{"b":2}] and then {"c":3}`,
			want:  `[{"a":1},{"b":2}]`,
		},
		{
			name:  "no json at all",
			input: "désolé, je ne peux pas répondre",
			want:  EmptyJSON,
		},
		{
			name:  "unparseable fragment",
			input: "{not valid json}",
			want:  EmptyJSON,
		},
		{
			name:  "empty input",
			input: "",
			want:  EmptyJSON,
		},
		{
			name:  "closer before opener only",
			input: "} nothing here",
			want:  EmptyJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.input); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractJSON_NeverPanicsAlwaysParseable(t *testing.T) {
	inputs := []string{"{", "[", "]}", "```json", "{{{{", "[[", "{\"a\":}", "[}"}
	for _, in := range inputs {
		got := ExtractJSON(in)
		if got != EmptyJSON {
			t.Errorf("ExtractJSON(%q) = %q, want sentinel", in, got)
		}
	}
}
