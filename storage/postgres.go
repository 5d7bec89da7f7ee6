package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TuneScotty/drawit-server/domain"
	"github.com/TuneScotty/drawit-server/game"
)

// PostgresRepo backs users, persisted session snapshots, and the optional
// database word pool with a single pgx pool.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func (r *PostgresRepo) CreateUser(ctx context.Context, username, passwordHash string) (string, error) {
	row := r.pool.QueryRow(ctx,
		"INSERT INTO users(username, password_hash) VALUES($1, $2) RETURNING id",
		username, passwordHash)

	var id string
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		// 23505 is unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return "", domain.ErrDuplicateUsername
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return id, nil
}

func (r *PostgresRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	user := domain.User{Id: id}

	row := r.pool.QueryRow(ctx, "SELECT username, password_hash FROM users WHERE id = $1", id)
	if err := row.Scan(&user.Username, &user.PasswordHash); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.User{}, domain.ErrUserNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.User{}, err
		default:
			return domain.User{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}
	return user, nil
}

func (r *PostgresRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	user := domain.User{Username: username}

	row := r.pool.QueryRow(ctx, "SELECT id, password_hash FROM users WHERE username = $1", username)
	if err := row.Scan(&user.Id, &user.PasswordHash); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.User{}, domain.ErrUserNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.User{}, err
		default:
			return domain.User{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}
	return user, nil
}

// PutSession upserts the snapshot as jsonb; the newest write wins.
func (r *PostgresRepo) PutSession(ctx context.Context, id string, snap game.SessionSnapshot) error {
	state, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO sessions(id, state, updated_at) VALUES($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		id, state)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return nil
}

func (r *PostgresRepo) GetSession(ctx context.Context, id string) (game.SessionSnapshot, bool, error) {
	var state []byte
	row := r.pool.QueryRow(ctx, "SELECT state FROM sessions WHERE id = $1", id)
	if err := row.Scan(&state); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return game.SessionSnapshot{}, false, nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return game.SessionSnapshot{}, false, err
		default:
			return game.SessionSnapshot{}, false, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}

	var snap game.SessionSnapshot
	if err := json.Unmarshal(state, &snap); err != nil {
		return game.SessionSnapshot{}, false, err
	}
	return snap, true, nil
}

func (r *PostgresRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	return nil
}

// RandomWords implements game.WordSource over the words table. Falls back to
// ignoring the exclusion set when the pool outside it runs dry, and returns
// whatever it has on query failure rather than blocking a round. Queries are
// bounded so a slow database returns short instead of hanging the caller.
func (r *PostgresRepo) RandomWords(count int, excluding map[string]struct{}) []string {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	excluded := make([]string, 0, len(excluding))
	for w := range excluding {
		excluded = append(excluded, w)
	}

	out := r.queryWords(ctx, count, excluded)
	if len(out) < count {
		out = r.queryWords(ctx, count, []string{})
	}
	return out
}

func (r *PostgresRepo) queryWords(ctx context.Context, count int, excluded []string) []string {
	rows, err := r.pool.Query(ctx,
		"SELECT word FROM words WHERE word != ALL($1) ORDER BY RANDOM() LIMIT $2",
		excluded, count)
	if err != nil {
		return nil
	}
	defer rows.Close()

	out := make([]string, 0, count)
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			continue
		}
		out = append(out, word)
	}
	return out
}
