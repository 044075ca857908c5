package account

import (
	"context"
	"errors"
	"time"
)

// Store owns the user index. Implementations must serialize mutations:
// Create performs its uniqueness checks and the insert as one atomic unit so
// two concurrent registrations cannot both claim the same email, phone or
// nickname.
type Store interface {
	// Create inserts a new user. It fails with ErrEmailExists,
	// ErrPhoneExists or ErrNicknameExists (checked in that order) when a
	// uniqueness key is already taken, and with ErrIDExists when the
	// generated user id collides with an existing record.
	Create(ctx context.Context, user User) error
	// Get fetches a user by id.
	Get(ctx context.Context, id string) (User, error)
	// All returns a snapshot of every record.
	All(ctx context.Context) ([]User, error)
	// SetLastLogin stamps the user's last successful authentication and
	// persists the change.
	SetLastLogin(ctx context.Context, id string, at time.Time) error
	// Counts returns total and active record counts.
	Counts(ctx context.Context) (total, active int, err error)
	// Location describes where records live, for stats reporting.
	Location() string
}

var (
	ErrEmailExists    = errors.New("email already registered")
	ErrPhoneExists    = errors.New("phone already registered")
	ErrNicknameExists = errors.New("nickname already registered")
	ErrIDExists       = errors.New("user id already exists")
	ErrNotFound       = errors.New("user not found")
)

// uniquenessConflict reports the first uniqueness key the candidate shares
// with an existing record. The email, phone, nickname, id order is fixed:
// every Store implementation reports the same conflict for the same input,
// however many keys collide at once.
func uniquenessConflict(existing []User, candidate User) error {
	for _, u := range existing {
		if u.Email == candidate.Email {
			return ErrEmailExists
		}
	}
	for _, u := range existing {
		if u.Phone == candidate.Phone {
			return ErrPhoneExists
		}
	}
	for _, u := range existing {
		if u.Nickname == candidate.Nickname {
			return ErrNicknameExists
		}
	}
	for _, u := range existing {
		if u.UserID == candidate.UserID {
			return ErrIDExists
		}
	}
	return nil
}
