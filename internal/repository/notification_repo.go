package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"user-management-service/internal/domain"
	"user-management-service/pkg/xerrors"
)

// NotificationRepository is the append-only in-app notification log.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	List(ctx context.Context) ([]*domain.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
	ListByUserAndPriority(ctx context.Context, userID uuid.UUID, priority domain.NotificationPriority) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type notificationRepo struct {
	db *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, title, message, priority, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`,
		n.ID,
		n.UserID,
		n.Title,
		n.Message,
		n.Priority,
		n.Read,
	).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

const notificationSelect = `
	SELECT id, user_id, title, message, priority, read, created_at
	FROM notifications
`

func (r *notificationRepo) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	row := r.db.QueryRow(ctx, notificationSelect+` WHERE id = $1`, id)
	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

func (r *notificationRepo) List(ctx context.Context) ([]*domain.Notification, error) {
	return r.queryMany(ctx, notificationSelect+` ORDER BY created_at DESC`)
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	return r.queryMany(ctx,
		notificationSelect+` WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
}

func (r *notificationRepo) ListByUserAndPriority(ctx context.Context, userID uuid.UUID, priority domain.NotificationPriority) ([]*domain.Notification, error) {
	return r.queryMany(ctx,
		notificationSelect+` WHERE user_id = $1 AND priority = $2 ORDER BY created_at DESC`,
		userID, priority,
	)
}

func (r *notificationRepo) MarkRead(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

func (r *notificationRepo) queryMany(ctx context.Context, query string, args ...any) ([]*domain.Notification, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", rows.Err())
	}
	return notifications, nil
}

func scanNotification(row rowScanner) (*domain.Notification, error) {
	n := &domain.Notification{}
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Title,
		&n.Message,
		&n.Priority,
		&n.Read,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return n, nil
}
