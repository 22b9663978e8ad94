package notifications

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage keeps notifications in process memory. It backs tests and
// the server when no database is configured.
type MemoryStorage struct {
	mu    sync.RWMutex
	items []Notification
	last  time.Time
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Create(ctx context.Context, n Notification) (*Notification, error) {
	if err := validateInsert(n); err != nil {
		return nil, err
	}
	n = normalize(n)

	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	for _, existing := range s.items {
		if existing.ID == n.ID {
			return nil, errors.Join(ErrStorage, fmt.Errorf("duplicate id %s", n.ID))
		}
	}

	// CreatedAt strictly increases so insertion order equals display order.
	now := time.Now().UTC()
	if !now.After(s.last) {
		now = s.last.Add(time.Nanosecond)
	}
	s.last = now

	n.CreatedAt = now
	n.IsRead = false
	n.ReadAt = nil
	n.Metadata = maps.Clone(n.Metadata)
	s.items = append(s.items, n)

	out := clone(n)
	return &out, nil
}

func (s *MemoryStorage) Get(ctx context.Context, id uuid.UUID, owner Owner) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.items {
		if n.ID == id && ownedBy(n, owner) {
			out := clone(n)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) List(ctx context.Context, owner Owner, opts ListOptions) (*Page, error) {
	opts = opts.Normalize()

	s.mu.RLock()
	matched := make([]Notification, 0)
	for _, n := range s.items {
		if n.RecipientRole != owner.Role {
			continue
		}
		if owner.RecipientID != "" && n.RecipientID != owner.RecipientID {
			continue
		}
		if opts.UnreadOnly && n.IsRead {
			continue
		}
		matched = append(matched, clone(n))
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, newestFirst)

	total := int64(len(matched))
	start := min(opts.Offset, len(matched))
	end := min(start+opts.Limit, len(matched))
	return newPage(matched[start:end], total, opts), nil
}

func (s *MemoryStorage) MarkRead(ctx context.Context, id uuid.UUID, owner Owner) (*Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		n := &s.items[i]
		if n.ID != id || !ownedBy(*n, owner) {
			continue
		}
		if !n.IsRead {
			now := time.Now().UTC()
			n.IsRead = true
			n.ReadAt = &now
		}
		out := clone(*n)
		return &out, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStorage) MarkAllRead(ctx context.Context, owner Owner) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	var updated int64
	for i := range s.items {
		n := &s.items[i]
		if n.IsRead || !ownedBy(*n, owner) {
			continue
		}
		n.IsRead = true
		n.ReadAt = &now
		updated++
	}
	return updated, nil
}

func (s *MemoryStorage) CountUnread(ctx context.Context, owner Owner) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, n := range s.items {
		if !n.IsRead && ownedBy(n, owner) {
			count++
		}
	}
	return count, nil
}

func ownedBy(n Notification, owner Owner) bool {
	return n.RecipientRole == owner.Role && n.RecipientID == owner.RecipientID
}

func newestFirst(a, b Notification) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return bytes.Compare(b.ID[:], a.ID[:])
}

// clone detaches the returned record from stored state.
func clone(n Notification) Notification {
	n.Metadata = maps.Clone(n.Metadata)
	if n.ReadAt != nil {
		t := *n.ReadAt
		n.ReadAt = &t
	}
	return n
}
