package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"user-management-service/internal/domain"
)

// EmailLogRepository records every delivery attempt so failed best-effort
// sends stay auditable without ever failing the triggering operation.
type EmailLogRepository interface {
	Record(ctx context.Context, log *domain.EmailLog) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.EmailLog, error)
}

type emailLogRepo struct {
	db *pgxpool.Pool
}

func NewEmailLogRepository(db *pgxpool.Pool) EmailLogRepository {
	return &emailLogRepo{db: db}
}

func (r *emailLogRepo) Record(ctx context.Context, log *domain.EmailLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO email_logs (id, user_id, recipient_email, subject, email_type, delivery_status, error_message, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		log.ID,
		log.UserID,
		log.RecipientEmail,
		log.Subject,
		log.EmailType,
		log.DeliveryStatus,
		log.ErrorMessage,
		log.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record email log: %w", err)
	}
	return nil
}

func (r *emailLogRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.EmailLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, recipient_email, subject, email_type, delivery_status, error_message, sent_at
		FROM email_logs
		WHERE user_id = $1
		ORDER BY sent_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query email logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.EmailLog
	for rows.Next() {
		l := &domain.EmailLog{}
		err := rows.Scan(
			&l.ID,
			&l.UserID,
			&l.RecipientEmail,
			&l.Subject,
			&l.EmailType,
			&l.DeliveryStatus,
			&l.ErrorMessage,
			&l.SentAt,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating email logs: %w", rows.Err())
	}
	return logs, nil
}
