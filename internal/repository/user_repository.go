package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tunepulse/tunepulse-api/internal/domain"
)

// ErrDuplicateEmail signals a unique violation on users.email.
var ErrDuplicateEmail = errors.New("email already registered")

// ProfilePatch describes a partial profile update. Nil fields are left
// untouched; the whole patch is applied as one UPDATE so concurrent updates
// cannot interleave a partial write.
type ProfilePatch struct {
	UserName                *string
	ImageURL                *string
	PendingEmail            *string
	IsVerified              *bool
	EmailChangeToken        *string
	EmailChangeTokenExpires *time.Time
}

// UserRepository defines persistence access for accounts. The Consume*
// methods implement the single-use token contract: validation and effect are
// one atomic compare-and-clear statement, so two racing requests cannot both
// spend the same token. They return pgx.ErrNoRows when no live token matches.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*domain.User, error)
	SetImageURL(ctx context.Context, id, url string) error

	SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error
	ConsumeVerificationToken(ctx context.Context, token string) (*domain.User, error)
	ClearExpiredVerificationToken(ctx context.Context, token string) (bool, error)

	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	ConsumeResetToken(ctx context.Context, token, newPasswordHash string) (*domain.User, error)
	ClearExpiredResetToken(ctx context.Context, token string) (bool, error)

	ConsumeEmailChangeToken(ctx context.Context, token string) (*domain.User, error)
	ClearExpiredEmailChangeToken(ctx context.Context, token string) (bool, error)
}

const userColumns = `id, user_name, email, password_hash, image_url, is_verified,
       verification_token, verification_token_expires,
       pending_email, email_change_token, email_change_token_expires,
       reset_password_token, reset_password_expires,
       created_at, updated_at`

type userRepository struct {
	db DB
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (user_name, email, password_hash, image_url)
        VALUES ($1, $2, $3, $4)
        RETURNING id, is_verified, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		user.UserName,
		user.Email,
		user.PasswordHash,
		user.ImageURL,
	).Scan(&user.ID, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchOne(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

// UpdateProfile applies the patch in a single statement; COALESCE keeps
// columns whose patch field is nil.
func (r *userRepository) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*domain.User, error) {
	const query = `
        UPDATE users SET
            user_name                  = COALESCE($2, user_name),
            image_url                  = COALESCE($3, image_url),
            pending_email              = COALESCE($4, pending_email),
            is_verified                = COALESCE($5, is_verified),
            email_change_token         = COALESCE($6, email_change_token),
            email_change_token_expires = COALESCE($7, email_change_token_expires),
            updated_at                 = NOW()
        WHERE id=$1
        RETURNING ` + userColumns

	return r.fetchOne(ctx, query, id,
		patch.UserName,
		patch.ImageURL,
		patch.PendingEmail,
		patch.IsVerified,
		patch.EmailChangeToken,
		patch.EmailChangeTokenExpires,
	)
}

func (r *userRepository) SetImageURL(ctx context.Context, id, url string) error {
	return r.exec(ctx, `UPDATE users SET image_url=$2, updated_at=NOW() WHERE id=$1`, id, url)
}

func (r *userRepository) SetVerificationToken(ctx context.Context, id, token string, expires time.Time) error {
	const query = `
        UPDATE users SET verification_token=$2, verification_token_expires=$3, updated_at=NOW()
        WHERE id=$1`
	return r.exec(ctx, query, id, token, expires)
}

func (r *userRepository) ConsumeVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	const query = `
        UPDATE users SET is_verified=true, verification_token=NULL,
            verification_token_expires=NULL, updated_at=NOW()
        WHERE verification_token=$1 AND verification_token_expires > NOW()
        RETURNING ` + userColumns
	return r.fetchOne(ctx, query, token)
}

func (r *userRepository) ClearExpiredVerificationToken(ctx context.Context, token string) (bool, error) {
	const query = `
        UPDATE users SET verification_token=NULL, verification_token_expires=NULL, updated_at=NOW()
        WHERE verification_token=$1 AND verification_token_expires <= NOW()`
	return r.execAffected(ctx, query, token)
}

func (r *userRepository) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	const query = `
        UPDATE users SET reset_password_token=$2, reset_password_expires=$3, updated_at=NOW()
        WHERE id=$1`
	return r.exec(ctx, query, id, token, expires)
}

func (r *userRepository) ConsumeResetToken(ctx context.Context, token, newPasswordHash string) (*domain.User, error) {
	const query = `
        UPDATE users SET password_hash=$2, reset_password_token=NULL,
            reset_password_expires=NULL, updated_at=NOW()
        WHERE reset_password_token=$1 AND reset_password_expires > NOW()
        RETURNING ` + userColumns
	return r.fetchOne(ctx, query, token, newPasswordHash)
}

func (r *userRepository) ClearExpiredResetToken(ctx context.Context, token string) (bool, error) {
	const query = `
        UPDATE users SET reset_password_token=NULL, reset_password_expires=NULL, updated_at=NOW()
        WHERE reset_password_token=$1 AND reset_password_expires <= NOW()`
	return r.execAffected(ctx, query, token)
}

// ConsumeEmailChangeToken promotes pending_email to email. Confirming a new
// address also re-verifies the account.
func (r *userRepository) ConsumeEmailChangeToken(ctx context.Context, token string) (*domain.User, error) {
	const query = `
        UPDATE users SET email=pending_email, pending_email=NULL,
            email_change_token=NULL, email_change_token_expires=NULL,
            is_verified=true, updated_at=NOW()
        WHERE email_change_token=$1 AND email_change_token_expires > NOW()
              AND pending_email IS NOT NULL
        RETURNING ` + userColumns
	return r.fetchOne(ctx, query, token)
}

func (r *userRepository) ClearExpiredEmailChangeToken(ctx context.Context, token string) (bool, error) {
	const query = `
        UPDATE users SET pending_email=NULL, email_change_token=NULL,
            email_change_token_expires=NULL, updated_at=NOW()
        WHERE email_change_token=$1 AND email_change_token_expires <= NOW()`
	return r.execAffected(ctx, query, token)
}

func (r *userRepository) fetchOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.UserName,
		&user.Email,
		&user.PasswordHash,
		&user.ImageURL,
		&user.IsVerified,
		&user.VerificationToken,
		&user.VerificationTokenExpires,
		&user.PendingEmail,
		&user.EmailChangeToken,
		&user.EmailChangeTokenExpires,
		&user.ResetPasswordToken,
		&user.ResetPasswordExpires,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) execAffected(ctx context.Context, query string, args ...any) (bool, error) {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
