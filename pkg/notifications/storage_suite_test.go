package notifications_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// runStorageSuite exercises the Storage contract. newStorage must return an
// empty store on every call.
func runStorageSuite(t *testing.T, newStorage func(t *testing.T) notifications.Storage) {
	ctx := context.Background()
	admin7 := notifications.Owner{Role: notifications.RoleAdmin, RecipientID: "7"}

	create := func(t *testing.T, s notifications.Storage, n notifications.Notification) *notifications.Notification {
		t.Helper()
		out, err := s.Create(ctx, n)
		require.NoError(t, err)
		return out
	}

	t.Run("create assigns defaults", func(t *testing.T) {
		s := newStorage(t)
		n := create(t, s, notifications.Notification{
			Role:        notifications.RoleAdmin,
			RecipientID: "7",
			Title:       "New Student Registered",
			Message:     "Jane Doe has registered as student",
			Metadata:    map[string]any{"email": "jane@example.com"},
		})

		assert.NotEqual(t, uuid.Nil, n.ID)
		assert.Equal(t, notifications.RoleAdmin, n.RecipientRole)
		assert.Equal(t, notifications.DefaultType, n.Type)
		assert.False(t, n.IsRead)
		assert.Nil(t, n.ReadAt)
		assert.False(t, n.CreatedAt.IsZero())
		assert.Equal(t, "jane@example.com", n.Metadata["email"])
	})

	t.Run("create requires role title message", func(t *testing.T) {
		s := newStorage(t)
		_, err := s.Create(ctx, notifications.Notification{Title: " "})
		assert.ErrorIs(t, err, notifications.ErrValidation)
	})

	// Scenario 1.
	t.Run("list and count after create", func(t *testing.T) {
		s := newStorage(t)
		create(t, s, notifications.Notification{Role: notifications.RoleAdmin, RecipientID: "7", Title: "older", Message: "m"})
		n := create(t, s, notifications.Notification{
			Role:        notifications.RoleAdmin,
			RecipientID: "7",
			Title:       "New Student Registered",
			Message:     "Jane Doe has registered as student",
		})

		page, err := s.List(ctx, admin7, notifications.ListOptions{})
		require.NoError(t, err)
		require.Len(t, page.Notifications, 2)
		assert.Equal(t, n.ID, page.Notifications[0].ID)
		assert.False(t, page.Notifications[0].IsRead)
		assert.EqualValues(t, 2, page.Total)

		count, err := s.CountUnread(ctx, admin7)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)
	})

	// Scenario 2.
	t.Run("mark read", func(t *testing.T) {
		s := newStorage(t)
		n := create(t, s, notifications.Notification{Role: notifications.RoleAdmin, RecipientID: "7", Title: "t", Message: "m"})

		read, err := s.MarkRead(ctx, n.ID, admin7)
		require.NoError(t, err)
		assert.True(t, read.IsRead)
		require.NotNil(t, read.ReadAt)

		count, err := s.CountUnread(ctx, admin7)
		require.NoError(t, err)
		assert.Zero(t, count)

		again, err := s.MarkRead(ctx, n.ID, admin7)
		require.NoError(t, err)
		assert.True(t, again.IsRead)
		assert.True(t, read.ReadAt.Equal(*again.ReadAt), "readAt keeps its first value")
	})

	// Scenario 3 and P3.
	t.Run("mark read checks ownership", func(t *testing.T) {
		s := newStorage(t)
		n := create(t, s, notifications.Notification{Role: notifications.RoleAdmin, RecipientID: "7", Title: "t", Message: "m"})

		foreign := []notifications.Owner{
			{Role: notifications.RoleAdmin, RecipientID: "999"},
			{Role: notifications.RoleAdmin},
			{Role: notifications.RoleStudent, RecipientID: "7"},
		}
		for _, owner := range foreign {
			_, err := s.MarkRead(ctx, n.ID, owner)
			assert.ErrorIs(t, err, notifications.ErrNotFound)
		}

		got, err := s.Get(ctx, n.ID, admin7)
		require.NoError(t, err)
		assert.False(t, got.IsRead)
	})

	t.Run("mark read unknown id", func(t *testing.T) {
		s := newStorage(t)
		_, err := s.MarkRead(ctx, uuid.New(), admin7)
		assert.ErrorIs(t, err, notifications.ErrNotFound)
	})

	// Scenario 4.
	t.Run("mark all read", func(t *testing.T) {
		s := newStorage(t)
		student42 := notifications.Owner{Role: notifications.RoleStudent, RecipientID: "42"}
		for range 3 {
			create(t, s, notifications.Notification{Role: notifications.RoleStudent, RecipientID: "42", Title: "t", Message: "m"})
		}
		other := create(t, s, notifications.Notification{Role: notifications.RoleStudent, RecipientID: "43", Title: "t", Message: "m"})

		updated, err := s.MarkAllRead(ctx, student42)
		require.NoError(t, err)
		assert.EqualValues(t, 3, updated)

		page, err := s.List(ctx, student42, notifications.ListOptions{UnreadOnly: true})
		require.NoError(t, err)
		assert.Empty(t, page.Notifications)
		assert.Zero(t, page.Total)

		updated, err = s.MarkAllRead(ctx, student42)
		require.NoError(t, err)
		assert.Zero(t, updated)

		untouched, err := s.Get(ctx, other.ID, other.Owner())
		require.NoError(t, err)
		assert.False(t, untouched.IsRead)
	})

	// Scenario 6 and P5.
	t.Run("pagination", func(t *testing.T) {
		s := newStorage(t)
		company := notifications.Owner{Role: notifications.RoleCompany}
		created := make([]uuid.UUID, 0, 5)
		for i := range 5 {
			n := create(t, s, notifications.Notification{
				Role:        notifications.RoleCompany,
				RecipientID: []string{"", "1", "2", "", "3"}[i],
				Title:       "t",
				Message:     "m",
			})
			created = append(created, n.ID)
		}

		first, err := s.List(ctx, company, notifications.ListOptions{Limit: 2, Offset: 0})
		require.NoError(t, err)
		assert.Len(t, first.Notifications, 2)
		assert.True(t, first.HasMore)
		assert.EqualValues(t, 5, first.Total)

		last, err := s.List(ctx, company, notifications.ListOptions{Limit: 2, Offset: 4})
		require.NoError(t, err)
		assert.Len(t, last.Notifications, 1)
		assert.False(t, last.HasMore)

		var seen []uuid.UUID
		for offset := 0; ; offset += 2 {
			page, err := s.List(ctx, company, notifications.ListOptions{Limit: 2, Offset: offset})
			require.NoError(t, err)
			assert.Equal(t, offset+2 < int(page.Total), page.HasMore)
			for i, n := range page.Notifications {
				if i > 0 {
					assert.False(t, n.CreatedAt.After(page.Notifications[i-1].CreatedAt))
				}
				seen = append(seen, n.ID)
			}
			if !page.HasMore {
				break
			}
		}

		want := make([]uuid.UUID, len(created))
		for i, id := range created {
			want[len(created)-1-i] = id
		}
		assert.Equal(t, want, seen)

		beyond, err := s.List(ctx, company, notifications.ListOptions{Limit: 2, Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, beyond.Notifications)
		assert.False(t, beyond.HasMore)
	})

	t.Run("list filters by recipient role", func(t *testing.T) {
		s := newStorage(t)
		create(t, s, notifications.Notification{Role: notifications.RoleAdmin, RecipientRole: notifications.RoleMentor, Title: "t", Message: "m"})

		mentors, err := s.List(ctx, notifications.Owner{Role: notifications.RoleMentor}, notifications.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, mentors.Notifications, 1)

		admins, err := s.List(ctx, notifications.Owner{Role: notifications.RoleAdmin}, notifications.ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, admins.Notifications)
	})

	t.Run("role wide rows are owned by the empty recipient", func(t *testing.T) {
		s := newStorage(t)
		roleWide := create(t, s, notifications.Notification{Role: notifications.RoleMentor, Title: "t", Message: "m"})
		create(t, s, notifications.Notification{Role: notifications.RoleMentor, RecipientID: "3", Title: "t", Message: "m"})

		count, err := s.CountUnread(ctx, notifications.Owner{Role: notifications.RoleMentor})
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		_, err = s.MarkRead(ctx, roleWide.ID, notifications.Owner{Role: notifications.RoleMentor, RecipientID: "3"})
		assert.ErrorIs(t, err, notifications.ErrNotFound)

		read, err := s.MarkRead(ctx, roleWide.ID, notifications.Owner{Role: notifications.RoleMentor})
		require.NoError(t, err)
		assert.True(t, read.IsRead)
	})

	// P2.
	t.Run("read state never reverts", func(t *testing.T) {
		s := newStorage(t)
		n := create(t, s, notifications.Notification{Role: notifications.RoleAdmin, RecipientID: "7", Title: "t", Message: "m"})
		_, err := s.MarkRead(ctx, n.ID, admin7)
		require.NoError(t, err)

		_, err = s.MarkAllRead(ctx, admin7)
		require.NoError(t, err)
		_, err = s.MarkRead(ctx, n.ID, admin7)
		require.NoError(t, err)

		got, err := s.Get(ctx, n.ID, admin7)
		require.NoError(t, err)
		assert.True(t, got.IsRead)
	})

	// P1.
	t.Run("ids are unique", func(t *testing.T) {
		s := newStorage(t)
		seen := make(map[uuid.UUID]bool)
		for range 50 {
			n := create(t, s, notifications.Notification{Role: notifications.RoleStudent, Title: "t", Message: "m"})
			assert.False(t, seen[n.ID])
			seen[n.ID] = true
		}
	})
}
