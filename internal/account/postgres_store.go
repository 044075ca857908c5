package account

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on PostgreSQL. Uniqueness is enforced by
// the unique constraints on the users table, so check-then-insert races are
// impossible by construction.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a Postgres-backed user store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func (s *PostgresStore) Create(ctx context.Context, user User) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Pre-check inside the transaction so a record colliding on several
	// keys reports the email conflict first, same as the file store. The
	// unique constraints below remain the backstop against concurrent
	// inserts.
	rows, err := tx.Query(ctx, `SELECT id, email, phone, nickname FROM users
        WHERE email = $1 OR phone = $2 OR nickname = $3 OR id = $4`,
		user.Email, user.Phone, user.Nickname, user.UserID)
	if err != nil {
		return err
	}
	var existing []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.UserID, &u.Email, &u.Phone, &u.Nickname); err != nil {
			rows.Close()
			return err
		}
		existing = append(existing, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if err := uniquenessConflict(existing, user); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `INSERT INTO users (id, email, phone, nickname, password_hash, registration_date, is_active, last_login)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.UserID, user.Email, user.Phone, user.Nickname, user.PasswordHash,
		user.RegistrationDate.UTC(), user.IsActive, user.LastLogin)
	if err != nil {
		return conflictFromPg(err)
	}
	return tx.Commit(ctx)
}

// conflictFromPg maps unique-constraint violations onto the store's
// sentinel errors.
func conflictFromPg(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return ErrEmailExists
		case "users_phone_key":
			return ErrPhoneExists
		case "users_nickname_key":
			return ErrNicknameExists
		case "users_pkey":
			return ErrIDExists
		}
	}
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id string) (User, error) {
	row := s.db.QueryRow(ctx, `SELECT id, email, phone, nickname, password_hash, registration_date, is_active, last_login
        FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *PostgresStore) All(ctx context.Context) ([]User, error) {
	rows, err := s.db.Query(ctx, `SELECT id, email, phone, nickname, password_hash, registration_date, is_active, last_login FROM users`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *PostgresStore) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	cmd, err := s.db.Exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at.UTC(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Counts(ctx context.Context) (int, int, error) {
	var total, active int
	row := s.db.QueryRow(ctx, `SELECT count(*), count(*) FILTER (WHERE is_active) FROM users`)
	if err := row.Scan(&total, &active); err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

func (s *PostgresStore) Location() string {
	return "postgres"
}

func scanUser(row pgx.Row) (User, error) {
	var (
		user      User
		createdAt time.Time
	)
	if err := row.Scan(&user.UserID, &user.Email, &user.Phone, &user.Nickname,
		&user.PasswordHash, &createdAt, &user.IsActive, &user.LastLogin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.RegistrationDate = createdAt.UTC()
	return user, nil
}
