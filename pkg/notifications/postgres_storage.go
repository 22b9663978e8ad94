package notifications

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/notifykit/pkg/pg"
)

// PostgresStorage stores notifications in the table created by Migrations.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

var _ Storage = (*PostgresStorage)(nil)

func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

const notificationColumns = `id, role, recipient_role, COALESCE(recipient_id, '') AS recipient_id,
	notification_type, title, message, COALESCE(link, '') AS link, metadata,
	is_read, read_at, created_at`

// Empty recipient ids are stored as NULL, so ownership comparisons use
// IS NOT DISTINCT FROM NULLIF($n, '').
const (
	insertNotification = `
INSERT INTO notifications (id, role, recipient_role, recipient_id, notification_type, title, message, link, metadata)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), $9)
RETURNING ` + notificationColumns

	getNotification = `
SELECT ` + notificationColumns + `
FROM notifications
WHERE id = $1 AND recipient_role = $2 AND recipient_id IS NOT DISTINCT FROM NULLIF($3, '')`

	countNotifications = `
SELECT COUNT(*)
FROM notifications
WHERE recipient_role = $1
  AND ($2::text = '' OR recipient_id = $2::text)
  AND ($3::boolean = FALSE OR is_read = FALSE)`

	listNotifications = `
SELECT ` + notificationColumns + `
FROM notifications
WHERE recipient_role = $1
  AND ($2::text = '' OR recipient_id = $2::text)
  AND ($3::boolean = FALSE OR is_read = FALSE)
ORDER BY created_at DESC, id DESC
LIMIT $4 OFFSET $5`

	markNotificationRead = `
UPDATE notifications
SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
WHERE id = $1 AND recipient_role = $2 AND recipient_id IS NOT DISTINCT FROM NULLIF($3, '')
RETURNING ` + notificationColumns

	markAllNotificationsRead = `
UPDATE notifications
SET is_read = TRUE, read_at = NOW()
WHERE recipient_role = $1 AND recipient_id IS NOT DISTINCT FROM NULLIF($2, '') AND is_read = FALSE`

	countUnreadNotifications = `
SELECT COUNT(*)
FROM notifications
WHERE recipient_role = $1 AND recipient_id IS NOT DISTINCT FROM NULLIF($2, '') AND is_read = FALSE`
)

func (s *PostgresStorage) Create(ctx context.Context, n Notification) (*Notification, error) {
	if err := validateInsert(n); err != nil {
		return nil, err
	}
	n = normalize(n)
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}

	rows, err := s.pool.Query(ctx, insertNotification,
		n.ID, n.Role, n.RecipientRole, n.RecipientID, n.Type,
		n.Title, n.Message, n.Link, n.Metadata,
	)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	out, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Notification])
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return &out, nil
}

func (s *PostgresStorage) Get(ctx context.Context, id uuid.UUID, owner Owner) (*Notification, error) {
	rows, err := s.pool.Query(ctx, getNotification, id, owner.Role, owner.RecipientID)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return collectOne(rows)
}

func (s *PostgresStorage) List(ctx context.Context, owner Owner, opts ListOptions) (*Page, error) {
	opts = opts.Normalize()

	var total int64
	err := s.pool.QueryRow(ctx, countNotifications, owner.Role, owner.RecipientID, opts.UnreadOnly).Scan(&total)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	if total == 0 || int64(opts.Offset) >= total {
		return newPage(nil, total, opts), nil
	}

	rows, err := s.pool.Query(ctx, listNotifications,
		owner.Role, owner.RecipientID, opts.UnreadOnly, opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[Notification])
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return newPage(items, total, opts), nil
}

func (s *PostgresStorage) MarkRead(ctx context.Context, id uuid.UUID, owner Owner) (*Notification, error) {
	rows, err := s.pool.Query(ctx, markNotificationRead, id, owner.Role, owner.RecipientID)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return collectOne(rows)
}

func (s *PostgresStorage) MarkAllRead(ctx context.Context, owner Owner) (int64, error) {
	tag, err := s.pool.Exec(ctx, markAllNotificationsRead, owner.Role, owner.RecipientID)
	if err != nil {
		return 0, errors.Join(ErrStorage, err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStorage) CountUnread(ctx context.Context, owner Owner) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, countUnreadNotifications, owner.Role, owner.RecipientID).Scan(&count); err != nil {
		return 0, errors.Join(ErrStorage, err)
	}
	return count, nil
}

func collectOne(rows pgx.Rows) (*Notification, error) {
	n, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Notification])
	switch {
	case pg.IsNotFoundError(err):
		return nil, ErrNotFound
	case err != nil:
		return nil, errors.Join(ErrStorage, err)
	}
	return &n, nil
}
