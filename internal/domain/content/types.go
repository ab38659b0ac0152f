// Package content contains the domain types for published posts.
//
// Content persistence is deliberately thin here: the content service exists
// so that a second backend exercises the same dispatch contract as the
// session authority. Full schema design lives with the content services.
package content

import (
	"context"
	"errors"
	"time"
)

// Post is a published blog entry.
type Post struct {
	// ID is the unique identifier for this post.
	ID string
	// Slug is the unique URL fragment.
	Slug string
	// Title is the display title.
	Title string
	// Text is the post body.
	Text string
	// AuthorID references the account that created the post.
	AuthorID string
	// CreatedAt is when the post was created (UTC).
	CreatedAt time.Time
}

// Store provides post persistence.
type Store interface {
	// Create inserts a new post.
	// Returns ErrDuplicateSlug if the slug is taken.
	Create(ctx context.Context, p *Post) error

	// GetBySlug retrieves a post by slug.
	// Returns ErrPostNotFound if no such post exists.
	GetBySlug(ctx context.Context, slug string) (*Post, error)

	// List returns all posts ordered by CreatedAt descending.
	List(ctx context.Context) ([]*Post, error)
}

// Store errors.
var (
	ErrPostNotFound  = errors.New("post not found")
	ErrDuplicateSlug = errors.New("slug already exists")
)
