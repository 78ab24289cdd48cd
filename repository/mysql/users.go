package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"marketplace-service/models"
	"marketplace-service/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = "id, username, email, user_type, password_hash, first_name, last_name, phone_number, address, created_at, updated_at"

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.PhoneNumber, &u.Address, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	u.CreatedAt = now()
	u.UpdatedAt = u.CreatedAt
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO users (username, email, user_type, password_hash, first_name, last_name, phone_number, address, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		u.Username, u.Email, u.Role, u.PasswordHash, u.FirstName, u.LastName, u.PhoneNumber, u.Address, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", translate(err))
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

func (r *userRepository) UpdateProfile(ctx context.Context, u *models.User) error {
	u.UpdatedAt = now()
	return mustAffect(conn(ctx, r.db).ExecContext(ctx,
		"UPDATE users SET first_name = ?, last_name = ?, email = ?, phone_number = ?, address = ?, updated_at = ? WHERE id = ?",
		u.FirstName, u.LastName, u.Email, u.PhoneNumber, u.Address, u.UpdatedAt, u.ID,
	))
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return mustAffect(conn(ctx, r.db).ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		passwordHash, now(), userID,
	))
}

type resetTokenRepository struct {
	db *sql.DB
}

func NewResetTokenRepository(db *sql.DB) repository.ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

func (r *resetTokenRepository) Create(ctx context.Context, t *models.PasswordResetToken) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now()
	}
	res, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO password_reset_tokens (user_id, token, created_at, expires_at, is_used) VALUES (?, ?, ?, ?, ?)",
		t.UserID, t.Token, t.CreatedAt, t.ExpiresAt, t.IsUsed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reset token: %w", translate(err))
	}
	t.ID, err = res.LastInsertId()
	return err
}

func (r *resetTokenRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT id, user_id, token, created_at, expires_at, is_used FROM password_reset_tokens WHERE token = ?"+lockClause(ctx),
		token,
	).Scan(&t.ID, &t.UserID, &t.Token, &t.CreatedAt, &t.ExpiresAt, &t.IsUsed)
	if err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *resetTokenRepository) MarkUsed(ctx context.Context, id int64) error {
	return mustAffect(conn(ctx, r.db).ExecContext(ctx,
		"UPDATE password_reset_tokens SET is_used = TRUE WHERE id = ?", id,
	))
}
