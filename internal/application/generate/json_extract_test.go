package generate

import (
	"encoding/json"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain object",
			in:   `{"outline":"x"}`,
			want: `{"outline":"x"}`,
		},
		{
			name: "markdown fence",
			in:   "```json\n{\"content\":\"prose\"}\n```",
			want: `{"content":"prose"}`,
		},
		{
			name: "fence without language",
			in:   "```\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "surrounding prose",
			in:   "Here is the result:\n{\"keywords\":[\"a\",\"b\"]}\nHope it helps!",
			want: `{"keywords":["a","b"]}`,
		},
		{
			name: "array value",
			in:   "result: [1, 2, 3] done",
			want: `[1, 2, 3]`,
		},
		{
			name: "no json at all",
			in:   "The rain hammered the ridge all night.",
			want: "The rain hammered the ridge all night.",
		},
		{
			name: "empty",
			in:   "   ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONObject(tt.in); got != tt.want {
				t.Fatalf("ExtractJSONObject(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractJSONObjectNestedBraces(t *testing.T) {
	in := "```json\n{\"content\":\"a {quoted} brace\",\"compliance\":{\"isCompliant\":true}}\n```"
	got := ExtractJSONObject(in)

	var payload struct {
		Content    string `json:"content"`
		Compliance struct {
			IsCompliant bool `json:"isCompliant"`
		} `json:"compliance"`
	}
	if err := json.Unmarshal([]byte(got), &payload); err != nil {
		t.Fatalf("extracted text is not valid JSON: %v\n%s", err, got)
	}
	if !payload.Compliance.IsCompliant {
		t.Fatal("expected isCompliant to survive extraction")
	}
}
