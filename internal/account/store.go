package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// CredentialStore is the authentication backend boundary. It owns user
// records and password verification; the service layer never sees a hash.
//
// Lookup methods report "no such user" as an empty identifier with a nil
// error. Mutating methods return false (with a nil error) when the supplied
// authentication password does not match; a non-nil error always means the
// backend itself failed.
type CredentialStore interface {
	GetUserID(ctx context.Context, username string) (string, error)
	GetUserInfo(ctx context.Context, userID string) (Info, error)
	Authenticate(ctx context.Context, username, password string) (string, error)
	CreateUser(ctx context.Context, username, password, email string) (bool, error)
	UpdateField(ctx context.Context, userID, authPassword, field, value string) (bool, error)
	UpdatePassword(ctx context.Context, userID, authPassword, newPassword string) (bool, error)
	AdminUpdatePassword(ctx context.Context, userID, newPassword string) (bool, error)
	DeleteUser(ctx context.Context, userID, authPassword string) (bool, error)
}

const uniqueViolation = "23505"

// PostgresStore implements CredentialStore using PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed credential store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetUserID resolves a username to its opaque identifier.
func (s *PostgresStore) GetUserID(ctx context.Context, username string) (string, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// GetUserInfo fetches the username and registered email for a user.
func (s *PostgresStore) GetUserInfo(ctx context.Context, userID string) (Info, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return Info{}, err
	}
	var info Info
	err = s.db.QueryRow(ctx, `SELECT username, COALESCE(email, '') FROM users WHERE id = $1`, id).
		Scan(&info.Username, &info.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return Info{}, nil
	}
	if err != nil {
		return Info{}, err
	}
	return info, nil
}

// Authenticate verifies username/password and returns the user id on success,
// or an empty id when the credentials do not match.
func (s *PostgresStore) Authenticate(ctx context.Context, username, password string) (string, error) {
	var (
		id   uuid.UUID
		hash []byte
	)
	err := s.db.QueryRow(ctx, `SELECT id, password_hash FROM users WHERE username = $1`, username).
		Scan(&id, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return "", nil
	}
	return id.String(), nil
}

// CreateUser inserts a new user with a freshly hashed password. A username
// collision reports false rather than an error.
func (s *PostgresStore) CreateUser(ctx context.Context, username, password, email string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO users (id, username, password_hash, email, created_at)
        VALUES ($1, $2, $3, $4, $5)`, uuid.New(), username, hash, email, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// UpdateField changes a single mutable user field after verifying the
// caller's current password.
func (s *PostgresStore) UpdateField(ctx context.Context, userID, authPassword, field, value string) (bool, error) {
	// field names are interpolated into SQL, so only known columns pass
	switch field {
	case "email":
	default:
		return false, fmt.Errorf("unknown user field %q", field)
	}

	id, ok, err := s.verifyPassword(ctx, userID, authPassword)
	if err != nil || !ok {
		return false, err
	}

	query := fmt.Sprintf(`UPDATE users SET %s = $1 WHERE id = $2`, field)
	cmd, err := s.db.Exec(ctx, query, value, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// UpdatePassword is the classical change: verify the current password, then
// store a hash of the new one.
func (s *PostgresStore) UpdatePassword(ctx context.Context, userID, authPassword, newPassword string) (bool, error) {
	id, ok, err := s.verifyPassword(ctx, userID, authPassword)
	if err != nil || !ok {
		return false, err
	}
	return s.storePassword(ctx, id, newPassword)
}

// AdminUpdatePassword replaces the stored password without the current one.
// Used by the reset workflow once the caller has proven code possession.
func (s *PostgresStore) AdminUpdatePassword(ctx context.Context, userID, newPassword string) (bool, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return false, err
	}
	return s.storePassword(ctx, id, newPassword)
}

// DeleteUser removes the account after verifying the current password.
func (s *PostgresStore) DeleteUser(ctx context.Context, userID, authPassword string) (bool, error) {
	id, ok, err := s.verifyPassword(ctx, userID, authPassword)
	if err != nil || !ok {
		return false, err
	}
	cmd, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (s *PostgresStore) storePassword(ctx context.Context, id uuid.UUID, newPassword string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	cmd, err := s.db.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (s *PostgresStore) verifyPassword(ctx context.Context, userID, password string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.UUID{}, false, err
	}
	var hash []byte
	err = s.db.QueryRow(ctx, `SELECT password_hash FROM users WHERE id = $1`, id).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return id, false, nil
	}
	if err != nil {
		return id, false, err
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return id, false, nil
	}
	return id, true, nil
}
