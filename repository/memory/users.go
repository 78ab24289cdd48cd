package memory

import (
	"context"
	"fmt"
	"strings"

	"marketplace-service/models"
	"marketplace-service/repository"
)

type userRepository struct {
	db *DB
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.view(ctx, func(st *state) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Username, u.Username) {
				return fmt.Errorf("%w: username %s", repository.ErrDuplicate, u.Username)
			}
			if strings.EqualFold(existing.Email, u.Email) {
				return fmt.Errorf("%w: email %s", repository.ErrDuplicate, u.Email)
			}
		}
		u.ID = st.next("users")
		u.CreatedAt = now()
		u.UpdatedAt = u.CreatedAt
		st.users[u.ID] = *u
		return nil
	})
}

func (r *userRepository) find(ctx context.Context, match func(models.User) bool) (*models.User, error) {
	var found *models.User
	err := r.db.view(ctx, func(st *state) error {
		for _, u := range st.users {
			if match(u) {
				found = &u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.find(ctx, func(u models.User) bool { return u.ID == id })
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(ctx, func(u models.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(ctx, func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepository) UpdateProfile(ctx context.Context, u *models.User) error {
	return r.db.view(ctx, func(st *state) error {
		current, ok := st.users[u.ID]
		if !ok {
			return repository.ErrNotFound
		}
		for _, other := range st.users {
			if other.ID != u.ID && strings.EqualFold(other.Email, u.Email) {
				return fmt.Errorf("%w: email %s", repository.ErrDuplicate, u.Email)
			}
		}
		current.FirstName = u.FirstName
		current.LastName = u.LastName
		current.Email = u.Email
		current.PhoneNumber = u.PhoneNumber
		current.Address = u.Address
		current.UpdatedAt = now()
		u.UpdatedAt = current.UpdatedAt
		st.users[u.ID] = current
		return nil
	})
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.db.view(ctx, func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return repository.ErrNotFound
		}
		u.PasswordHash = passwordHash
		u.UpdatedAt = now()
		st.users[userID] = u
		return nil
	})
}

type resetTokenRepository struct {
	db *DB
}

func (r *resetTokenRepository) Create(ctx context.Context, t *models.PasswordResetToken) error {
	return r.db.view(ctx, func(st *state) error {
		if _, ok := st.users[t.UserID]; !ok {
			return repository.ErrNotFound
		}
		for _, existing := range st.tokens {
			if existing.Token == t.Token {
				return fmt.Errorf("%w: reset token", repository.ErrDuplicate)
			}
		}
		t.ID = st.next("tokens")
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now()
		}
		st.tokens[t.ID] = *t
		return nil
	})
}

func (r *resetTokenRepository) GetByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var found *models.PasswordResetToken
	err := r.db.view(ctx, func(st *state) error {
		for _, t := range st.tokens {
			if t.Token == token {
				found = &t
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return found, err
}

func (r *resetTokenRepository) MarkUsed(ctx context.Context, id int64) error {
	return r.db.view(ctx, func(st *state) error {
		t, ok := st.tokens[id]
		if !ok {
			return repository.ErrNotFound
		}
		t.IsUsed = true
		st.tokens[id] = t
		return nil
	})
}
