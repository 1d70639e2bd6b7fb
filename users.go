package gamenews

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown login,
// a wrong password or a deactivated account alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

var userValidator = validator.New(validator.WithRequiredStructEnabled())

type newUser struct {
	Username string `validate:"required,min=3,max=50,alphanum"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=8,max=72"`
	Role     Role   `validate:"required,oneof=admin editor"`
}

const userColumns = `id, username, email, password_hash, role, active, last_login_at, created_at`

func scanUser(row scanner) (User, error) {
	var u User
	var role string
	var active int
	var lastLogin sql.NullInt64
	var created int64
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &active, &lastLogin, &created); err != nil {
		return User{}, err
	}
	u.Role = Role(role)
	u.Active = active == 1
	if lastLogin.Valid {
		u.LastLoginAt = time.Unix(0, lastLogin.Int64).UTC()
	}
	u.CreatedAt = time.Unix(0, created).UTC()
	return u, nil
}

// CreateUser hashes password with bcrypt and stores a new active account.
func (s *Store) CreateUser(username, email, password string, role Role) (User, error) {
	in := newUser{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
		Password: password,
		Role:     role,
	}
	if err := userValidator.Struct(in); err != nil {
		return User{}, fmt.Errorf("invalid user: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u := User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	_, err = s.db.Exec(`INSERT INTO users (id, username, email, password_hash, role, active, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)`,
		u.ID, u.Username, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt.UnixNano())
	if err != nil {
		return User{}, fmt.Errorf("insert user %s: %w", u.Username, err)
	}
	return u, nil
}

// GetUser returns an account by id.
func (s *Store) GetUser(id string) (User, error) {
	u, err := scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

// FindUser returns the account whose username or email equals login,
// compared case-insensitively, whether or not it is active.
func (s *Store) FindUser(login string) (User, error) {
	login = strings.TrimSpace(login)
	u, err := scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users
		WHERE username = ? OR email = ?`, login, login))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

// Authenticate checks password against the active account matching login
// and records the login time.
func (s *Store) Authenticate(login, password string) (User, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}
	u, err := s.FindUser(login)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil || !u.Active {
		return User{}, ErrInvalidCredentials
	}
	u.LastLoginAt = time.Now().UTC()
	if _, err := s.db.Exec(`UPDATE users SET last_login_at = ? WHERE id = ?`, u.LastLoginAt.UnixNano(), u.ID); err != nil {
		return User{}, fmt.Errorf("record login: %w", err)
	}
	return u, nil
}

// SetUserActive enables or disables an account.
func (s *Store) SetUserActive(id string, active bool) error {
	res, err := s.db.Exec(`UPDATE users SET active = ? WHERE id = ?`, boolInt(active), id)
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	return expectRow(res)
}

// HasAdmin reports whether at least one admin account exists.
func (s *Store) HasAdmin() (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT count(*) FROM users WHERE role = ?`, string(RoleAdmin)).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
