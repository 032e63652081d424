// Package sqlite stores users in an embedded sqlite file. It is the default
// store for local development.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/geocoder89/wellbot/internal/domain/user"
	"github.com/geocoder89/wellbot/internal/observability"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type UsersRepo struct {
	db      *sql.DB
	metrics *observability.Prom
}

func NewUsersRepo(db *sql.DB, metrics *observability.Prom) *UsersRepo {
	return &UsersRepo{db: db, metrics: metrics}
}

const userColumns = `id, name, email, password_hash, language, created_at, updated_at`

func (r *UsersRepo) Create(ctx context.Context, in user.NewUser) (user.User, error) {
	now := time.Now().UTC()
	u := user.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Language:     user.LanguageOrDefault(in.Language),
		CreatedAt:    now.Truncate(time.Second),
		UpdatedAt:    now.Truncate(time.Second),
	}

	err := r.metrics.ObserveDB("users.create", func() error {
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO users (name, email, password_hash, language, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			u.Name, u.Email, u.PasswordHash, u.Language, now.Unix(), now.Unix(),
		)
		if err != nil {
			return err
		}
		u.ID, err = res.LastInsertId()
		return err
	})

	if err != nil {
		var liteErr *moderncsqlite.Error
		if errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return user.User{}, user.ErrEmailAlreadyUsed
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.get_by_email", `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	return r.getOne(ctx, "users.get_by_id", `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *UsersRepo) getOne(ctx context.Context, op, query string, arg any) (user.User, error) {
	var (
		u                user.User
		created, updated int64
		found            = true
	)

	err := r.metrics.ObserveDB(op, func() error {
		err := r.db.QueryRowContext(ctx, query, arg).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.Language,
			&created,
			&updated,
		)
		if errors.Is(err, sql.ErrNoRows) {
			found = false
			return nil
		}
		return err
	})

	if err != nil {
		return user.User{}, err
	}
	if !found {
		return user.User{}, user.ErrNotFound
	}

	u.CreatedAt = time.Unix(created, 0).UTC()
	u.UpdatedAt = time.Unix(updated, 0).UTC()

	return u, nil
}
