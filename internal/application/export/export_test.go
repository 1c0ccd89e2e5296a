package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"bookforge-api/internal/domain/entity"
)

func testBook() *entity.Book {
	return &entity.Book{
		ID:         1,
		Title:      "The Silent Echo",
		Subtitle:   "A Mystery in the Mountains",
		AuthorName: "Eleanor Vance",
		Category:   "Mystery",
		Outline:    "A woman returns to her hometown.",
		Keywords:   []string{"mountain mystery", "small town secrets"},
		Copyright:  "All rights reserved.",
	}
}

func testChapters() []*entity.Chapter {
	return []*entity.Chapter{
		{ID: 1, BookID: 1, Title: "The Return", Order: 1, Content: "She arrived at dusk.\n\nThe house was dark."},
		{ID: 2, BookID: 1, Title: "The Letter", Order: 2, Content: "The envelope had no stamp."},
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := writePDF(context.Background(), &buf, testBook(), testChapters()); err != nil {
		t.Fatalf("writePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("output does not start with a PDF header")
	}
}

func TestWritePDFZeroChapters(t *testing.T) {
	var buf bytes.Buffer
	if err := writePDF(context.Background(), &buf, testBook(), nil); err != nil {
		t.Fatalf("writePDF with zero chapters: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected a non-empty document")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("output does not start with a PDF header")
	}
}

func TestWritePDFSkipsBadImage(t *testing.T) {
	chapters := testChapters()
	chapters[0].ImageURL = "data:image/png;base64,not-base64!!"

	var buf bytes.Buffer
	if err := writePDF(context.Background(), &buf, testBook(), chapters); err != nil {
		t.Fatalf("writePDF with bad image: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatal("output does not start with a PDF header")
	}
}

func TestWriteProjectZIP(t *testing.T) {
	var buf bytes.Buffer
	if err := writeProjectZIP(context.Background(), &buf, testBook(), testChapters()); err != nil {
		t.Fatalf("writeProjectZIP: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	members := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		members[f.Name] = string(data)
	}

	manuscript, ok := members["manuscript.txt"]
	if !ok {
		t.Fatal("manuscript.txt missing from archive")
	}
	if !strings.Contains(manuscript, "CHAPTER 1: The Return") {
		t.Fatalf("manuscript missing chapter heading:\n%s", manuscript)
	}
	if !strings.HasPrefix(manuscript, "The Silent Echo\nA Mystery in the Mountains\nBy Eleanor Vance\n") {
		t.Fatalf("manuscript header malformed:\n%s", manuscript)
	}

	var chapters []entity.Chapter
	if err := json.Unmarshal([]byte(members["chapter_data.json"]), &chapters); err != nil {
		t.Fatalf("chapter_data.json is not valid JSON: %v", err)
	}
	if len(chapters) != 2 {
		t.Fatalf("chapter_data.json has %d chapters, want 2", len(chapters))
	}

	metadata := members["metadata_pack.txt"]
	if !strings.Contains(metadata, "Keywords: mountain mystery, small town secrets") {
		t.Fatalf("metadata pack missing keywords:\n%s", metadata)
	}

	var bible map[string]any
	if err := json.Unmarshal([]byte(members["series_bible.json"]), &bible); err != nil {
		t.Fatalf("series_bible.json is not valid JSON: %v", err)
	}
	if bible["title"] != "The Silent Echo" {
		t.Fatalf("series bible title = %v", bible["title"])
	}

	if _, ok := members["cover.png"]; ok {
		t.Fatal("cover.png present without a cover image")
	}
}

func TestWriteProjectZIPIncludesCover(t *testing.T) {
	book := testBook()
	book.CoverImageURL = "data:image/png;base64,aGVsbG8="

	var buf bytes.Buffer
	if err := writeProjectZIP(context.Background(), &buf, book, nil); err != nil {
		t.Fatalf("writeProjectZIP: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	found := false
	for _, f := range zr.File {
		if f.Name == "cover.png" {
			found = true
			rc, _ := f.Open()
			data, _ := io.ReadAll(rc)
			rc.Close()
			if string(data) != "hello" {
				t.Fatalf("cover.png content = %q, want decoded payload", data)
			}
		}
	}
	if !found {
		t.Fatal("cover.png missing from archive")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Silent Echo", "The_Silent_Echo"},
		{"Shadow of Obsession: Book 2!", "Shadow_of_Obsession__Book_2_"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitParagraphs(t *testing.T) {
	in := "First paragraph.\n\nSecond paragraph.\n\n\n\nThird.\r\n\r\n"
	got := splitParagraphs(in)
	want := []string{"First paragraph.", "Second paragraph.", "Third."}
	if len(got) != len(want) {
		t.Fatalf("got %d paragraphs, want %d: %q", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("paragraph %d = %q, want %q", i, got[i], want[i])
		}
	}
}
