package repository

import (
	"database/sql"
	"fmt"

	"github.com/chetan-code/taskrooms/internal/models"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) (*UserRepo, error) {
	repo := &UserRepo{db: db}

	err := repo.createTable()
	if err != nil {
		return nil, fmt.Errorf("could not initialize users table: %w", err)
	}

	return repo, nil
}

func (r *UserRepo) createTable() error {
	query := `CREATE TABLE IF NOT EXISTS users(
		id SERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT ''
	);`
	_, err := r.db.Exec(query)
	return err
}

func (r *UserRepo) Create(username, email, passwordHash string) (models.User, error) {
	query := `INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3) RETURNING id`
	var u models.User
	u.Username = username
	u.Email = email
	u.PasswordHash = passwordHash
	err := r.db.QueryRow(query, username, email, passwordHash).Scan(&u.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *UserRepo) ByID(id int) (models.User, error) {
	query := "SELECT id, username, email, password_hash FROM users WHERE id = $1"
	return r.scanOne(r.db.QueryRow(query, id))
}

func (r *UserRepo) ByEmail(email string) (models.User, error) {
	query := "SELECT id, username, email, password_hash FROM users WHERE email = $1"
	return r.scanOne(r.db.QueryRow(query, email))
}

func (r *UserRepo) ByUsername(username string) (models.User, error) {
	query := "SELECT id, username, email, password_hash FROM users WHERE username = $1"
	return r.scanOne(r.db.QueryRow(query, username))
}

// UpsertByEmail is used by the OAuth callback - the account may or may
// not exist yet, and OAuth accounts carry no local password hash.
func (r *UserRepo) UpsertByEmail(username, email string) (models.User, error) {
	query := `INSERT INTO users (username, email)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, username, email, password_hash`
	return r.scanOne(r.db.QueryRow(query, username, email))
}

// UpdateProfile changes username and email; passwordHash is only
// replaced when non-empty (an empty form field keeps the old password).
func (r *UserRepo) UpdateProfile(id int, username, email, passwordHash string) error {
	query := `UPDATE users SET
		username = $2,
		email = $3,
		password_hash = CASE WHEN $4 = '' THEN password_hash ELSE $4 END
		WHERE id = $1`
	res, err := r.db.Exec(query, id, username, email, passwordHash)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) scanOne(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}
