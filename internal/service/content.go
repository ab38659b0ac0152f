package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wispcms/wispgate/internal/domain/content"
	"github.com/wispcms/wispgate/internal/domain/rpc"
)

// ContentService is the post backend, reached through the RPC dispatcher
// under target service "content". It exists alongside the session authority
// so that more than one backend exercises the same dispatch, deadline and
// error contract.
type ContentService struct {
	posts  content.Store
	logger *slog.Logger
}

// NewContentService creates the content backend over the given post store.
func NewContentService(posts content.Store, logger *slog.Logger) *ContentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentService{posts: posts, logger: logger}
}

// Mount registers every content operation on the registry.
func (c *ContentService) Mount(r *Registry) {
	r.Register(OpCreatePost, decode(c.CreatePost))
	r.Register(OpGetPost, decode(c.GetPost))
	r.Register(OpListPosts, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return c.ListPosts(ctx)
	})
}

// CreatePost inserts a new post. Slugs are unique.
func (c *ContentService) CreatePost(ctx context.Context, req CreatePostRequest) (any, error) {
	slug := strings.TrimSpace(req.Slug)
	if slug == "" || strings.TrimSpace(req.Title) == "" {
		return nil, rpc.NewAppError(rpc.CodeBadRequest, "slug and title are required")
	}

	p := &content.Post{
		ID:        uuid.New().String(),
		Slug:      slug,
		Title:     req.Title,
		Text:      req.Text,
		AuthorID:  req.AuthorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.posts.Create(ctx, p); err != nil {
		return nil, err
	}

	c.logger.Info("post created", "slug", p.Slug, "author_id", p.AuthorID)
	return postView(p), nil
}

// GetPost fetches a post by slug.
func (c *ContentService) GetPost(ctx context.Context, req GetPostRequest) (any, error) {
	p, err := c.posts.GetBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	return postView(p), nil
}

// ListPosts returns all posts, newest first.
func (c *ContentService) ListPosts(ctx context.Context) (any, error) {
	posts, err := c.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	resp := &ListPostsResponse{Posts: make([]PostView, 0, len(posts))}
	for _, p := range posts {
		resp.Posts = append(resp.Posts, *postView(p))
	}
	return resp, nil
}

// postView maps a post to its external shape.
func postView(p *content.Post) *PostView {
	return &PostView{
		ID:        p.ID,
		Slug:      p.Slug,
		Title:     p.Title,
		Text:      p.Text,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt,
	}
}
