package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLocator assigns users to the least-loaded available node and
// remembers the assignment, so repeated lookups for the same user are stable.
type PostgresLocator struct {
	db *pgxpool.Pool
}

// NewPostgresLocator builds a Postgres-backed node locator.
func NewPostgresLocator(db *pgxpool.Pool) *PostgresLocator {
	return &PostgresLocator{db: db}
}

// GetBestNode returns the user's assigned node, assigning the least-loaded
// available one on first contact. The row lock serializes concurrent
// assignments against the same node.
func (l *PostgresLocator) GetBestNode(ctx context.Context, service, username string) (string, error) {
	var assigned string
	err := l.db.QueryRow(ctx,
		`SELECT node FROM user_nodes WHERE service = $1 AND username = $2`,
		service, username).Scan(&assigned)
	if err == nil {
		return assigned, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var nodeURL string
	err = tx.QueryRow(ctx,
		`SELECT node FROM nodes
         WHERE service = $1 AND available > 0
         ORDER BY current_load ASC
         LIMIT 1
         FOR UPDATE`, service).Scan(&nodeURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoNodeAvailable
	}
	if err != nil {
		return "", err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE nodes SET available = available - 1, current_load = current_load + 1
         WHERE service = $1 AND node = $2`, service, nodeURL); err != nil {
		return "", err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO user_nodes (service, username, node) VALUES ($1, $2, $3)`,
		service, username, nodeURL); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("assign node: %w", err)
	}
	return nodeURL, nil
}

var _ Locator = (*PostgresLocator)(nil)
