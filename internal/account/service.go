package account

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/armhelper/accounts/internal/artifact"
	"github.com/armhelper/accounts/internal/notification"
)

// maxIDAttempts bounds user id regeneration. A collision within a 48-bit
// random space is effectively impossible, so exhausting this is a sign of a
// broken store, not bad luck.
const maxIDAttempts = 10

// Service orchestrates registration, authentication and stats reporting.
type Service struct {
	store     Store
	artifacts *artifact.Writer
	notifier  notification.Notifier
}

// NewService creates the account service. notifier may be nil.
func NewService(store Store, artifacts *artifact.Writer, notifier notification.Notifier) *Service {
	return &Service{store: store, artifacts: artifacts, notifier: notifier}
}

// Register validates the input, enforces the three uniqueness keys and
// creates the user. Checks run in a fixed order and the first failure wins,
// so a request that is both empty and malformed reports the empty field.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	if in.Email == "" || in.Phone == "" || in.Password == "" || in.Nickname == "" {
		return User{}, failure(KindFieldsRequired, "all fields are required")
	}
	if !ValidEmail(in.Email) {
		return User{}, failure(KindInvalidEmail, "invalid email address format")
	}
	if !ValidPhone(in.Phone) {
		return User{}, failure(KindInvalidPhone, "invalid phone number format")
	}
	if len(in.Password) < minPasswordLen {
		return User{}, failure(KindPasswordTooShort, "password must be at least 6 characters")
	}
	if len(in.Nickname) < minNicknameLen {
		return User{}, failure(KindNicknameTooShort, "nickname must be at least 3 characters")
	}

	user := User{
		Email:            in.Email,
		Phone:            in.Phone,
		Nickname:         in.Nickname,
		PasswordHash:     HashPassword(in.Password),
		RegistrationDate: time.Now(),
		IsActive:         true,
	}

	if err := s.create(ctx, &user); err != nil {
		return User{}, err
	}

	doc := artifact.NewDocument(user.UserID, user.Email, user.Phone, user.Nickname, user.RegistrationDate)
	if err := s.artifacts.Write(doc); err != nil {
		// The index is already persisted at this point; the caller sees a
		// failure but the record exists. Re-registration will report the
		// email conflict.
		return User{}, failure(KindArtifact, "failed to create user file")
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindUserRegistered,
			Destination: user.Email,
			Body:        fmt.Sprintf("user %s registered", user.Nickname),
		})
	}

	return user, nil
}

// create inserts the user under a fresh id, regenerating on the vanishingly
// unlikely id collision.
func (s *Service) create(ctx context.Context, user *User) error {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		user.UserID = NewUserID()
		err := s.store.Create(ctx, *user)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrIDExists):
			continue
		case errors.Is(err, ErrEmailExists):
			return failure(KindEmailTaken, "user with this email already exists")
		case errors.Is(err, ErrPhoneExists):
			return failure(KindPhoneTaken, "user with this phone number already exists")
		case errors.Is(err, ErrNicknameExists):
			return failure(KindNicknameTaken, "user with this nickname already exists")
		default:
			return failure(KindStorage, "failed to save user data")
		}
	}
	return failure(KindStorage, "could not allocate a unique user id")
}

// Authenticate matches login (email or phone) plus password against the
// index. The failure message never reveals whether the login or the
// password was wrong.
func (s *Service) Authenticate(ctx context.Context, login, password string) (User, error) {
	digest := HashPassword(password)

	users, err := s.store.All(ctx)
	if err != nil {
		return User{}, failure(KindStorage, "failed to read user data")
	}

	for _, u := range users {
		if (u.Email == login || u.Phone == login) && u.PasswordHash == digest && u.IsActive {
			now := time.Now()
			if err := s.store.SetLastLogin(ctx, u.UserID, now); err != nil {
				return User{}, failure(KindStorage, "failed to save user data")
			}
			u.LastLogin = &now
			return u, nil
		}
	}

	return User{}, failure(KindInvalidCredentials, "invalid login or password")
}

// Stats reports index-wide counters.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	total, active, err := s.store.Counts(ctx)
	if err != nil {
		return Stats{}, failure(KindStorage, "failed to read user data")
	}
	return Stats{
		TotalUsers:      total,
		ActiveUsers:     active,
		StorageLocation: s.store.Location(),
	}, nil
}

// HashPassword returns the hex SHA-256 digest of the raw password. The
// digest is deterministic: authentication recomputes it and compares against
// the stored value.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// NewUserID returns a 12-character lowercase hex id derived from a random
// UUID.
func NewUserID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
