package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/wispcms/wispgate/internal/domain/content"
)

// PostStore implements content.Store with an in-memory map keyed by slug.
// Thread-safe for concurrent access.
type PostStore struct {
	mu    sync.RWMutex
	posts map[string]*content.Post // slug -> post
}

// NewPostStore creates an empty in-memory post store.
func NewPostStore() *PostStore {
	return &PostStore{
		posts: make(map[string]*content.Post),
	}
}

// Create inserts a new post. The slug must be unique.
func (s *PostStore) Create(ctx context.Context, p *content.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[p.Slug]; ok {
		return content.ErrDuplicateSlug
	}
	postCopy := *p
	s.posts[p.Slug] = &postCopy
	return nil
}

// GetBySlug retrieves a post by slug. Returns a copy to prevent mutation.
func (s *PostStore) GetBySlug(ctx context.Context, slug string) (*content.Post, error) {
	s.mu.RLock()
	p, ok := s.posts[slug]
	s.mu.RUnlock()

	if !ok {
		return nil, content.ErrPostNotFound
	}
	postCopy := *p
	return &postCopy, nil
}

// List returns all posts ordered by CreatedAt descending.
func (s *PostStore) List(ctx context.Context) ([]*content.Post, error) {
	s.mu.RLock()
	result := make([]*content.Post, 0, len(s.posts))
	for _, p := range s.posts {
		postCopy := *p
		result = append(result, &postCopy)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Slug < result[j].Slug
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Compile-time interface verification.
var _ content.Store = (*PostStore)(nil)
