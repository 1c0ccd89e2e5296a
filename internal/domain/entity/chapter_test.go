package entity

import "testing"

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"spaces only", "   ", 0},
		{"simple", "one two three", 3},
		{"extra whitespace", "one two  three", 3},
		{"newlines and tabs", "one\ntwo\tthree\n\nfour", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountWords(tt.in); got != tt.want {
				t.Fatalf("CountWords(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestChapterSetContent(t *testing.T) {
	var c Chapter
	c.SetContent("alpha beta gamma")
	if c.WordCount != 3 {
		t.Fatalf("WordCount = %d, want 3", c.WordCount)
	}

	c.SetContent("")
	if c.WordCount != 0 {
		t.Fatalf("WordCount after clearing = %d, want 0", c.WordCount)
	}
}
