package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"user-management-service/internal/domain"
	"user-management-service/pkg/xerrors"
)

// UserRepository is the durable record of accounts. An Address is created,
// replaced and removed in lockstep with its owning user.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepo{db: db}
}

const userSelect = `
	SELECT u.id, u.first_name, u.last_name, u.email, u.password,
	       u.date_of_birth, u.phone_number, u.gender, u.role,
	       u.created_at, u.updated_at,
	       a.id, a.street, a.city, a.state, a.country, a.postal_code,
	       a.created_at, a.updated_at
	FROM users u
	LEFT JOIN addresses a ON a.id = u.address_id
`

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var addressID *uuid.UUID
		if user.Address != nil {
			if err := insertAddress(ctx, tx, user.Address); err != nil {
				return fmt.Errorf("failed to create address: %w", err)
			}
			addressID = &user.Address.ID
		}

		err := tx.QueryRow(ctx, `
			INSERT INTO users (
				id, first_name, last_name, email, password,
				date_of_birth, phone_number, gender, role, address_id,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
			RETURNING created_at, updated_at
		`,
			user.ID,
			user.FirstName,
			user.LastName,
			user.Email,
			user.Password,
			user.DateOfBirth,
			user.PhoneNumber,
			user.Gender,
			user.Role,
			addressID,
		).Scan(&user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			if xerrors.ParsePGErrorCode(err) == xerrors.PGUniqueViolation {
				return xerrors.ErrEmailAlreadyInUse
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

func insertAddress(ctx context.Context, tx pgx.Tx, addr *domain.Address) error {
	return tx.QueryRow(ctx, `
		INSERT INTO addresses (id, street, city, state, country, postal_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`,
		addr.ID,
		addr.Street,
		addr.City,
		addr.State,
		addr.Country,
		addr.PostalCode,
	).Scan(&addr.CreatedAt, &addr.UpdatedAt)
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRow(ctx, userSelect+` WHERE u.id = $1`, id)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, userSelect+` WHERE u.email = $1`, email)
	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *userRepo) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, userSelect+` ORDER BY u.created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating users: %w", rows.Err())
	}
	return users, nil
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// Update replaces scalar fields and the owned address in one transaction.
// The address is created if the user had none, updated in place otherwise.
func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var addressID *uuid.UUID
		if user.Address != nil {
			tag, err := tx.Exec(ctx, `
				UPDATE addresses
				SET street = $2, city = $3, state = $4, country = $5,
				    postal_code = $6, updated_at = NOW()
				WHERE id = $1
			`,
				user.Address.ID,
				user.Address.Street,
				user.Address.City,
				user.Address.State,
				user.Address.Country,
				user.Address.PostalCode,
			)
			if err != nil {
				return fmt.Errorf("failed to update address: %w", err)
			}
			if tag.RowsAffected() == 0 {
				if err := insertAddress(ctx, tx, user.Address); err != nil {
					return fmt.Errorf("failed to create address: %w", err)
				}
			}
			addressID = &user.Address.ID
		}

		tag, err := tx.Exec(ctx, `
			UPDATE users
			SET first_name = $2, last_name = $3, email = $4,
			    date_of_birth = $5, phone_number = $6, gender = $7,
			    role = $8, address_id = COALESCE($9, address_id),
			    updated_at = NOW()
			WHERE id = $1
		`,
			user.ID,
			user.FirstName,
			user.LastName,
			user.Email,
			user.DateOfBirth,
			user.PhoneNumber,
			user.Gender,
			user.Role,
			addressID,
		)
		if err != nil {
			if xerrors.ParsePGErrorCode(err) == xerrors.PGUniqueViolation {
				return xerrors.ErrEmailAlreadyInUse
			}
			return fmt.Errorf("failed to update user: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return xerrors.ErrUserNotFound
		}
		return nil
	})
}

// Delete removes the user and then its owned address.
func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var addressID *uuid.UUID
		err := tx.QueryRow(ctx, `DELETE FROM users WHERE id = $1 RETURNING address_id`, id).
			Scan(&addressID)
		if errors.Is(err, pgx.ErrNoRows) {
			return xerrors.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		if addressID != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, addressID); err != nil {
				return fmt.Errorf("failed to delete address: %w", err)
			}
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var (
		addrID                       *uuid.UUID
		street, city, state          *string
		country, postalCode          *string
		addrCreatedAt, addrUpdatedAt *time.Time
	)

	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Password,
		&user.DateOfBirth,
		&user.PhoneNumber,
		&user.Gender,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
		&addrID,
		&street,
		&city,
		&state,
		&country,
		&postalCode,
		&addrCreatedAt,
		&addrUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if addrID != nil {
		addr := &domain.Address{
			ID:         *addrID,
			Street:     deref(street),
			City:       deref(city),
			State:      deref(state),
			Country:    deref(country),
			PostalCode: deref(postalCode),
		}
		if addrCreatedAt != nil {
			addr.CreatedAt = *addrCreatedAt
		}
		if addrUpdatedAt != nil {
			addr.UpdatedAt = *addrUpdatedAt
		}
		user.Address = addr
	}

	return user, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
