package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/auth-service/internal/domain"
)

// UserRepository defines persistence access for accounts. Each call is a
// single statement; a single-row UPDATE is the only atomicity the core
// relies on.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `
        id, name, email, password_hash,
        access_signing_key, refresh_signing_key,
        is_active, email_verified, status,
        failed_login_attempts, locked_until, lock_reason, status_reason,
        verification_code, verification_expires_at,
        renewal_code, renewal_expires_at,
        last_login_at, last_login_ip,
        created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (
            id, name, email, password_hash,
            access_signing_key, refresh_signing_key,
            is_active, email_verified, status,
            verification_code, verification_expires_at
        )
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.AccessSigningKey,
		user.RefreshSigningKey,
		user.IsActive,
		user.EmailVerified,
		user.Status,
		user.VerificationCode,
		user.VerificationExpiresAt,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET
            name=$1, email=$2, password_hash=$3,
            access_signing_key=$4, refresh_signing_key=$5,
            is_active=$6, email_verified=$7, status=$8,
            failed_login_attempts=$9, locked_until=$10, lock_reason=$11, status_reason=$12,
            verification_code=$13, verification_expires_at=$14,
            renewal_code=$15, renewal_expires_at=$16,
            last_login_at=$17, last_login_ip=$18,
            updated_at=NOW()
        WHERE id=$19
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.AccessSigningKey,
		user.RefreshSigningKey,
		user.IsActive,
		user.EmailVerified,
		user.Status,
		user.FailedLoginAttempts,
		user.LockedUntil,
		user.LockReason,
		user.StatusReason,
		user.VerificationCode,
		user.VerificationExpiresAt,
		user.RenewalCode,
		user.RenewalExpiresAt,
		user.LastLoginAt,
		user.LastLoginIP,
		user.ID,
	).Scan(&user.UpdatedAt)
	if err == pgx.ErrNoRows {
		return pgx.ErrNoRows
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.AccessSigningKey,
		&user.RefreshSigningKey,
		&user.IsActive,
		&user.EmailVerified,
		&user.Status,
		&user.FailedLoginAttempts,
		&user.LockedUntil,
		&user.LockReason,
		&user.StatusReason,
		&user.VerificationCode,
		&user.VerificationExpiresAt,
		&user.RenewalCode,
		&user.RenewalExpiresAt,
		&user.LastLoginAt,
		&user.LastLoginIP,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
