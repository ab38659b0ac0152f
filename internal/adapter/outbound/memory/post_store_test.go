package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/wispcms/wispgate/internal/domain/content"
)

func TestPostStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewPostStore()

	post := &content.Post{
		ID:        "post-1",
		Slug:      "hello-world",
		Title:     "Hello World",
		Text:      "first post",
		AuthorID:  "user-1",
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Create(ctx, post); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := store.GetBySlug(ctx, "hello-world")
	if err != nil {
		t.Fatalf("GetBySlug() error: %v", err)
	}
	if got.Title != "Hello World" || got.AuthorID != "user-1" {
		t.Errorf("GetBySlug() = %+v, want original post", got)
	}

	// Mutating the returned copy must not touch the store.
	got.Title = "mutated"
	again, _ := store.GetBySlug(ctx, "hello-world")
	if again.Title != "Hello World" {
		t.Error("store mutated through returned copy")
	}
}

func TestPostStore_DuplicateSlug(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewPostStore()

	if err := store.Create(ctx, &content.Post{ID: "a", Slug: "same"}); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	err := store.Create(ctx, &content.Post{ID: "b", Slug: "same"})
	if !errors.Is(err, content.ErrDuplicateSlug) {
		t.Errorf("Create() error = %v, want ErrDuplicateSlug", err)
	}
}

func TestPostStore_GetNonExistent(t *testing.T) {
	t.Parallel()

	store := NewPostStore()
	_, err := store.GetBySlug(context.Background(), "missing")
	if !errors.Is(err, content.ErrPostNotFound) {
		t.Errorf("GetBySlug() error = %v, want ErrPostNotFound", err)
	}
}

func TestPostStore_ListNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewPostStore()

	base := time.Now().UTC()
	for i := 0; i < 4; i++ {
		err := store.Create(ctx, &content.Post{
			ID:        fmt.Sprintf("post-%d", i),
			Slug:      fmt.Sprintf("slug-%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 4 {
		t.Fatalf("List() = %d posts, want 4", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Errorf("List() not newest-first at index %d", i)
		}
	}
	if list[0].Slug != "slug-3" {
		t.Errorf("List()[0].Slug = %q, want %q", list[0].Slug, "slug-3")
	}
}
