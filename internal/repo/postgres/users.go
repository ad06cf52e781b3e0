package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/recipehub/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `user_id, username, email, password_hash, first_name, last_name, is_admin, created_at, updated_at`

type UsersRepo struct {
	base
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool, obs Observer) *UsersRepo {
	return &UsersRepo{base: base{obs: obs}, pool: pool}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (r *UsersRepo) getOne(ctx context.Context, op, where string, arg any) (user.User, error) {
	var u user.User

	err := r.observe(op, func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` = $1`, arg))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) FindByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "users.find_by_email", "email", email)
}

func (r *UsersRepo) FindByUsername(ctx context.Context, username string) (user.User, error) {
	return r.getOne(ctx, "users.find_by_username", "username", username)
}

func (r *UsersRepo) FindByID(ctx context.Context, id int64) (user.User, error) {
	return r.getOne(ctx, "users.find_by_id", "user_id", id)
}

func (r *UsersRepo) Insert(ctx context.Context, nu user.NewUser) (user.User, error) {
	var u user.User

	err := r.observe("users.insert", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (username, email, password_hash, first_name, last_name, is_admin)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING `+userColumns,
			nu.Username, nu.Email, nu.PasswordHash, nu.FirstName, nu.LastName, nu.IsAdmin,
		))
		return err
	})

	if err != nil {
		return user.User{}, mapUserErr(err)
	}

	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, id int64, upd user.ProfileUpdate) (user.User, error) {
	var u user.User

	err := r.observe("users.update", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
			 SET username = $2, email = $3, first_name = $4, last_name = $5, updated_at = NOW()
			 WHERE user_id = $1
			 RETURNING `+userColumns,
			id, upd.Username, upd.Email, upd.FirstName, upd.LastName,
		))
		return err
	})

	if err != nil {
		return user.User{}, mapUserErr(err)
	}

	return u, nil
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.execOne(ctx, "users.update_password",
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE user_id = $1`, id, hash)
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) error {
	return r.execOne(ctx, "users.delete", `DELETE FROM users WHERE user_id = $1`, id)
}

func (r *UsersRepo) execOne(ctx context.Context, op, sql string, args ...any) error {
	var affected int64

	err := r.observe(op, func() error {
		tag, err := r.pool.Exec(ctx, sql, args...)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.observe("users.list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY user_id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func mapUserErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return user.ErrNotFound
	}

	if constraint, ok := uniqueViolation(err); ok {
		switch constraint {
		case "users_username_uniq":
			return user.ErrUsernameTaken
		default:
			return user.ErrEmailTaken
		}
	}

	return err
}
