package postgres

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bookforge-api/internal/domain/entity"
)

// newTestClient 基于内存 SQLite 创建客户端
// 连接池限制为单连接，保证所有操作落在同一个内存库上
func newTestClient(t *testing.T) *Client {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	client := NewClientWithDB(db)
	if err := client.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return client
}

func seedBook(t *testing.T, repo *BookRepository) *entity.Book {
	t.Helper()

	book := &entity.Book{
		Title:          "The Silent Echo",
		AuthorName:     "Eleanor Vance",
		Language:       "English",
		Category:       "Mystery",
		TargetChapters: 12,
		IsKdpCompliant: true,
	}
	if err := repo.Create(context.Background(), book); err != nil {
		t.Fatalf("create book: %v", err)
	}
	return book
}

func TestBookRepositoryRoundTrip(t *testing.T) {
	client := newTestClient(t)
	repo := NewBookRepository(client)
	ctx := context.Background()

	book := seedBook(t, repo)
	if book.ID == 0 {
		t.Fatal("expected generated id")
	}

	got, err := repo.GetByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if got == nil {
		t.Fatal("book not found after create")
	}
	if got.Title != "The Silent Echo" || got.AuthorName != "Eleanor Vance" {
		t.Fatalf("unexpected book: %+v", got)
	}
}

func TestBookRepositoryGetMissingReturnsNil(t *testing.T) {
	client := newTestClient(t)
	repo := NewBookRepository(client)

	got, err := repo.GetByID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("expected nil error for missing book, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil book, got %+v", got)
	}
}

func TestBookRepositoryKeywordsRoundTrip(t *testing.T) {
	client := newTestClient(t)
	repo := NewBookRepository(client)
	ctx := context.Background()

	book := seedBook(t, repo)
	book.Keywords = []string{"mountain mystery", "small town secrets"}
	if err := repo.Update(ctx, book); err != nil {
		t.Fatalf("update book: %v", err)
	}

	got, err := repo.GetByID(ctx, book.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if len(got.Keywords) != 2 || got.Keywords[0] != "mountain mystery" {
		t.Fatalf("keywords not persisted: %v", got.Keywords)
	}
}

func TestBookRepositoryCascadeDelete(t *testing.T) {
	client := newTestClient(t)
	bookRepo := NewBookRepository(client)
	chapterRepo := NewChapterRepository(client)
	ctx := context.Background()

	book := seedBook(t, bookRepo)
	for i := 1; i <= 3; i++ {
		chapter := &entity.Chapter{BookID: book.ID, Title: "Ch", Order: i}
		if err := chapterRepo.Create(ctx, chapter); err != nil {
			t.Fatalf("create chapter %d: %v", i, err)
		}
	}

	if err := bookRepo.Delete(ctx, book.ID); err != nil {
		t.Fatalf("delete book: %v", err)
	}

	if got, _ := bookRepo.GetByID(ctx, book.ID); got != nil {
		t.Fatal("book still present after delete")
	}
	count, err := chapterRepo.CountByBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("count chapters: %v", err)
	}
	if count != 0 {
		t.Fatalf("%d chapters survived cascade delete", count)
	}
}

func TestChapterRepositoryListOrdering(t *testing.T) {
	client := newTestClient(t)
	bookRepo := NewBookRepository(client)
	chapterRepo := NewChapterRepository(client)
	ctx := context.Background()

	book := seedBook(t, bookRepo)

	// 乱序创建，含重复 order
	for _, c := range []*entity.Chapter{
		{BookID: book.ID, Title: "Third", Order: 3},
		{BookID: book.ID, Title: "First", Order: 1},
		{BookID: book.ID, Title: "Second A", Order: 2},
		{BookID: book.ID, Title: "Second B", Order: 2},
	} {
		if err := chapterRepo.Create(ctx, c); err != nil {
			t.Fatalf("create chapter: %v", err)
		}
	}

	chapters, err := chapterRepo.ListByBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("list chapters: %v", err)
	}
	if len(chapters) != 4 {
		t.Fatalf("got %d chapters, want 4", len(chapters))
	}

	wantTitles := []string{"First", "Second A", "Second B", "Third"}
	for i, want := range wantTitles {
		if chapters[i].Title != want {
			t.Fatalf("position %d = %q, want %q", i, chapters[i].Title, want)
		}
	}
}

func TestChapterRepositoryDeleteByBook(t *testing.T) {
	client := newTestClient(t)
	bookRepo := NewBookRepository(client)
	chapterRepo := NewChapterRepository(client)
	ctx := context.Background()

	book := seedBook(t, bookRepo)
	other := seedBook(t, bookRepo)

	if err := chapterRepo.Create(ctx, &entity.Chapter{BookID: book.ID, Title: "Mine", Order: 1}); err != nil {
		t.Fatalf("create chapter: %v", err)
	}
	if err := chapterRepo.Create(ctx, &entity.Chapter{BookID: other.ID, Title: "Theirs", Order: 1}); err != nil {
		t.Fatalf("create chapter: %v", err)
	}

	if err := chapterRepo.DeleteByBook(ctx, book.ID); err != nil {
		t.Fatalf("delete by book: %v", err)
	}

	if count, _ := chapterRepo.CountByBook(ctx, book.ID); count != 0 {
		t.Fatalf("book still has %d chapters", count)
	}
	if count, _ := chapterRepo.CountByBook(ctx, other.ID); count != 1 {
		t.Fatalf("other book chapters affected, count = %d", count)
	}
}

func TestTxManagerRollsBackOnError(t *testing.T) {
	client := newTestClient(t)
	bookRepo := NewBookRepository(client)
	txManager := NewTxManager(client)
	ctx := context.Background()

	wantErr := context.Canceled
	err := txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := bookRepo.Create(txCtx, &entity.Book{Title: "Doomed", AuthorName: "Nobody"}); err != nil {
			return err
		}
		return wantErr
	})
	if err == nil {
		t.Fatal("expected error from transaction")
	}

	books, err := bookRepo.List(ctx)
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) != 0 {
		t.Fatalf("rollback failed, %d books present", len(books))
	}
}

func TestTxManagerNestedReusesTransaction(t *testing.T) {
	client := newTestClient(t)
	bookRepo := NewBookRepository(client)
	txManager := NewTxManager(client)
	ctx := context.Background()

	err := txManager.WithTransaction(ctx, func(outer context.Context) error {
		return txManager.WithTransaction(outer, func(inner context.Context) error {
			return bookRepo.Create(inner, &entity.Book{Title: "Nested", AuthorName: "Writer"})
		})
	})
	if err != nil {
		t.Fatalf("nested transaction: %v", err)
	}

	books, err := bookRepo.List(ctx)
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("got %d books, want 1", len(books))
	}
}
