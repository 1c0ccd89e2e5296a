package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"bookforge-api/internal/application/export"
	"bookforge-api/internal/config"
	"bookforge-api/internal/domain/entity"
	"bookforge-api/internal/interfaces/http/handler"
	"bookforge-api/internal/interfaces/http/router"
)

type memBookRepo struct {
	books  map[int]*entity.Book
	nextID int
}

func newMemBookRepo(books ...*entity.Book) *memBookRepo {
	repo := &memBookRepo{books: make(map[int]*entity.Book), nextID: 1}
	for _, b := range books {
		repo.books[b.ID] = b
		if b.ID >= repo.nextID {
			repo.nextID = b.ID + 1
		}
	}
	return repo
}

func (r *memBookRepo) List(ctx context.Context) ([]*entity.Book, error) {
	out := make([]*entity.Book, 0, len(r.books))
	for _, b := range r.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memBookRepo) GetByID(ctx context.Context, id int) (*entity.Book, error) {
	return r.books[id], nil
}

func (r *memBookRepo) Create(ctx context.Context, book *entity.Book) error {
	book.ID = r.nextID
	r.nextID++
	r.books[book.ID] = book
	return nil
}

func (r *memBookRepo) Update(ctx context.Context, book *entity.Book) error {
	r.books[book.ID] = book
	return nil
}

func (r *memBookRepo) Delete(ctx context.Context, id int) error {
	delete(r.books, id)
	return nil
}

type memChapterRepo struct {
	chapters map[int]*entity.Chapter
	nextID   int
}

func newMemChapterRepo(chapters ...*entity.Chapter) *memChapterRepo {
	repo := &memChapterRepo{chapters: make(map[int]*entity.Chapter), nextID: 1}
	for _, c := range chapters {
		repo.chapters[c.ID] = c
		if c.ID >= repo.nextID {
			repo.nextID = c.ID + 1
		}
	}
	return repo
}

func (r *memChapterRepo) ListByBook(ctx context.Context, bookID int) ([]*entity.Chapter, error) {
	out := make([]*entity.Chapter, 0)
	for _, c := range r.chapters {
		if c.BookID == bookID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *memChapterRepo) GetByID(ctx context.Context, id int) (*entity.Chapter, error) {
	return r.chapters[id], nil
}

func (r *memChapterRepo) Create(ctx context.Context, chapter *entity.Chapter) error {
	chapter.ID = r.nextID
	r.nextID++
	r.chapters[chapter.ID] = chapter
	return nil
}

func (r *memChapterRepo) Update(ctx context.Context, chapter *entity.Chapter) error {
	r.chapters[chapter.ID] = chapter
	return nil
}

func (r *memChapterRepo) Delete(ctx context.Context, id int) error {
	delete(r.chapters, id)
	return nil
}

func (r *memChapterRepo) DeleteByBook(ctx context.Context, bookID int) error {
	for id, c := range r.chapters {
		if c.BookID == bookID {
			delete(r.chapters, id)
		}
	}
	return nil
}

func (r *memChapterRepo) CountByBook(ctx context.Context, bookID int) (int64, error) {
	var n int64
	for _, c := range r.chapters {
		if c.BookID == bookID {
			n++
		}
	}
	return n, nil
}

func newTestEngine(bookRepo *memBookRepo, chapterRepo *memChapterRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.App.Env = "test"

	r := router.New(cfg, router.Handlers{
		Health:   handler.NewHealthHandler(nil, nil),
		Book:     handler.NewBookHandler(bookRepo),
		Chapter:  handler.NewChapterHandler(bookRepo, chapterRepo, nil),
		Generate: handler.NewGenerateHandler(nil),
		Export:   handler.NewExportHandler(export.NewService(bookRepo, chapterRepo)),
	}, nil)
	return r.Engine()
}

func doRequest(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestGetBookNotFound(t *testing.T) {
	engine := newTestEngine(newMemBookRepo(), newMemChapterRepo())

	w := doRequest(t, engine, http.MethodGet, "/api/books/7", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp["message"] != "Book not found" {
		t.Fatalf("message = %q", resp["message"])
	}
}

func TestCreateBookValidation(t *testing.T) {
	engine := newTestEngine(newMemBookRepo(), newMemChapterRepo())

	// 缺少必填的 authorName
	w := doRequest(t, engine, http.MethodPost, "/api/books", `{"title":"No Author"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCreateBook(t *testing.T) {
	bookRepo := newMemBookRepo()
	engine := newTestEngine(bookRepo, newMemChapterRepo())

	w := doRequest(t, engine, http.MethodPost, "/api/books",
		`{"title":"The Silent Echo","authorName":"Eleanor Vance"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var book entity.Book
	if err := json.Unmarshal(w.Body.Bytes(), &book); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if book.ID == 0 {
		t.Fatal("expected assigned id in response")
	}
	if book.Language != "English" {
		t.Fatalf("Language = %q, want default English", book.Language)
	}
}

func TestUpdateBookPartial(t *testing.T) {
	bookRepo := newMemBookRepo(&entity.Book{ID: 1, Title: "Old", AuthorName: "A", Category: "Mystery"})
	engine := newTestEngine(bookRepo, newMemChapterRepo())

	w := doRequest(t, engine, http.MethodPut, "/api/books/1", `{"title":"New"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	book, _ := bookRepo.GetByID(context.Background(), 1)
	if book.Title != "New" {
		t.Fatalf("Title = %q, want New", book.Title)
	}
	if book.Category != "Mystery" {
		t.Fatal("untouched field was modified")
	}
}

func TestUpdateRoutesAcceptPutAndPatch(t *testing.T) {
	bookRepo := newMemBookRepo(&entity.Book{ID: 1, Title: "T", AuthorName: "A"})
	chapterRepo := newMemChapterRepo(&entity.Chapter{ID: 2, BookID: 1, Title: "Ch", Order: 1})
	engine := newTestEngine(bookRepo, chapterRepo)

	for _, tc := range []struct {
		method, path, body string
	}{
		{http.MethodPut, "/api/books/1", `{"subtitle":"Sub"}`},
		{http.MethodPatch, "/api/books/1", `{"subtitle":"Sub"}`},
		{http.MethodPut, "/api/chapters/2", `{"summary":"S"}`},
		{http.MethodPatch, "/api/chapters/2", `{"summary":"S"}`},
	} {
		w := doRequest(t, engine, tc.method, tc.path, tc.body)
		if w.Code != http.StatusOK {
			t.Fatalf("%s %s = %d, want 200: %s", tc.method, tc.path, w.Code, w.Body.String())
		}
	}
}

func TestUpdateBookEmptyBodyIsNoOp(t *testing.T) {
	original := &entity.Book{
		ID:         1,
		Title:      "The Silent Echo",
		Subtitle:   "A Mystery in the Mountains",
		AuthorName: "Eleanor Vance",
		Category:   "Mystery",
		Keywords:   []string{"mountain mystery"},
	}
	bookRepo := newMemBookRepo(original)
	engine := newTestEngine(bookRepo, newMemChapterRepo())

	w := doRequest(t, engine, http.MethodPut, "/api/books/1", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	book, _ := bookRepo.GetByID(context.Background(), 1)
	if book.Title != "The Silent Echo" || book.Subtitle != "A Mystery in the Mountains" ||
		book.AuthorName != "Eleanor Vance" || book.Category != "Mystery" {
		t.Fatalf("empty update changed fields: %+v", book)
	}
	if len(book.Keywords) != 1 || book.Keywords[0] != "mountain mystery" {
		t.Fatalf("empty update changed keywords: %v", book.Keywords)
	}
}

func TestUpdateBookLastWriteWins(t *testing.T) {
	bookRepo := newMemBookRepo(&entity.Book{ID: 1, Title: "T", AuthorName: "A"})
	engine := newTestEngine(bookRepo, newMemChapterRepo())

	// 无并发控制，后写覆盖先写
	if w := doRequest(t, engine, http.MethodPut, "/api/books/1", `{"outline":"first"}`); w.Code != http.StatusOK {
		t.Fatalf("first update status = %d", w.Code)
	}
	if w := doRequest(t, engine, http.MethodPut, "/api/books/1", `{"outline":"second"}`); w.Code != http.StatusOK {
		t.Fatalf("second update status = %d", w.Code)
	}

	book, _ := bookRepo.GetByID(context.Background(), 1)
	if book.Outline != "second" {
		t.Fatalf("Outline = %q, want last write to win", book.Outline)
	}
}

func TestDeleteChapter(t *testing.T) {
	chapterRepo := newMemChapterRepo(&entity.Chapter{ID: 3, BookID: 1, Title: "Ch", Order: 1})
	engine := newTestEngine(newMemBookRepo(), chapterRepo)

	w := doRequest(t, engine, http.MethodDelete, "/api/chapters/3", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if got, _ := chapterRepo.GetByID(context.Background(), 3); got != nil {
		t.Fatal("chapter still present after delete")
	}

	w = doRequest(t, engine, http.MethodDelete, "/api/chapters/3", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
}

func TestListChaptersEmpty(t *testing.T) {
	bookRepo := newMemBookRepo(&entity.Book{ID: 1, Title: "T", AuthorName: "A"})
	engine := newTestEngine(bookRepo, newMemChapterRepo())

	w := doRequest(t, engine, http.MethodGet, "/api/books/1/chapters", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var chapters []entity.Chapter
	if err := json.Unmarshal(w.Body.Bytes(), &chapters); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(chapters) != 0 {
		t.Fatalf("got %d chapters, want 0", len(chapters))
	}
}

func TestExportProjectHeaders(t *testing.T) {
	bookRepo := newMemBookRepo(&entity.Book{ID: 1, Title: "The Silent Echo", AuthorName: "Eleanor Vance"})
	engine := newTestEngine(bookRepo, newMemChapterRepo())

	w := doRequest(t, engine, http.MethodGet, "/api/books/1/export-project", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("Content-Type = %q", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "The_Silent_Echo_KDP_Package.zip") {
		t.Fatalf("Content-Disposition = %q", cd)
	}
}

func TestExportPDFNotFound(t *testing.T) {
	engine := newTestEngine(newMemBookRepo(), newMemChapterRepo())

	w := doRequest(t, engine, http.MethodGet, "/api/books/9/export-pdf", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestInvalidIDReturnsBadRequest(t *testing.T) {
	engine := newTestEngine(newMemBookRepo(), newMemChapterRepo())

	w := doRequest(t, engine, http.MethodGet, "/api/books/abc", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
