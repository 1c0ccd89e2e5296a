package entity

import "testing"

func TestBookSplitTitle(t *testing.T) {
	tests := []struct {
		name         string
		title        string
		subtitle     string
		wantSplit    bool
		wantTitle    string
		wantSubtitle string
	}{
		{
			name:         "splits on colon",
			title:        "The Silent Echo: A Mystery in the Mountains",
			wantSplit:    true,
			wantTitle:    "The Silent Echo",
			wantSubtitle: "A Mystery in the Mountains",
		},
		{
			name:         "no colon",
			title:        "The Silent Echo",
			wantSplit:    false,
			wantTitle:    "The Silent Echo",
			wantSubtitle: "",
		},
		{
			name:         "subtitle already set",
			title:        "Main: Other",
			subtitle:     "Existing",
			wantSplit:    false,
			wantTitle:    "Main: Other",
			wantSubtitle: "Existing",
		},
		{
			name:         "trailing colon",
			title:        "Main:",
			wantSplit:    false,
			wantTitle:    "Main:",
			wantSubtitle: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Book{Title: tt.title, Subtitle: tt.subtitle}
			if got := b.SplitTitle(); got != tt.wantSplit {
				t.Fatalf("SplitTitle() = %v, want %v", got, tt.wantSplit)
			}
			if b.Title != tt.wantTitle {
				t.Fatalf("Title = %q, want %q", b.Title, tt.wantTitle)
			}
			if b.Subtitle != tt.wantSubtitle {
				t.Fatalf("Subtitle = %q, want %q", b.Subtitle, tt.wantSubtitle)
			}
		})
	}
}
