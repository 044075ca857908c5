package account

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/armhelper/accounts/internal/artifact"
)

func newTestService(t *testing.T) (*Service, Store, string) {
	t.Helper()
	dir := t.TempDir()
	store := NewMemoryStore()
	svc := NewService(store, artifact.NewWriter(dir), nil)
	return svc, store, dir
}

var hexID = regexp.MustCompile(`^[0-9a-f]{12}$`)

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _, dir := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Email:    "a@b.com",
		Phone:    "+380501234567",
		Password: "password123",
		Nickname: "Alice",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !hexID.MatchString(user.UserID) {
		t.Fatalf("expected 12 hex chars, got %q", user.UserID)
	}
	if user.PasswordHash == "password123" || len(user.PasswordHash) != 64 {
		t.Fatalf("expected 64-char digest, got %q", user.PasswordHash)
	}
	if user.LastLogin != nil {
		t.Fatalf("expected nil last login after registration")
	}
	if _, err := os.Stat(filepath.Join(dir, user.UserID+".js")); err != nil {
		t.Fatalf("expected user script: %v", err)
	}

	authed, err := svc.Authenticate(ctx, "a@b.com", "password123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.UserID != user.UserID {
		t.Fatalf("expected %s, got %s", user.UserID, authed.UserID)
	}
	if authed.LastLogin == nil {
		t.Fatalf("expected last login to be set")
	}
}

func TestAuthenticateByPhone(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Email: "a@b.com", Phone: "+380501234567", Password: "password123", Nickname: "Alice",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "+380501234567", "password123"); err != nil {
		t.Fatalf("authenticate by phone: %v", err)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Email: "a@b.com", Phone: "+380501234567", Password: "password123", Nickname: "Alice",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Authenticate(ctx, "a@b.com", "wrongpass")
	assertKind(t, err, KindInvalidCredentials)
	if err.Error() != "invalid login or password" {
		t.Fatalf("expected generic message, got %q", err.Error())
	}

	// Unknown login yields the identical message.
	_, err2 := svc.Authenticate(ctx, "nobody@b.com", "password123")
	if err2.Error() != err.Error() {
		t.Fatalf("messages differ: %q vs %q", err.Error(), err2.Error())
	}
}

func TestRegisterValidationOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// Empty field and malformed email at once: the presence check wins.
	_, err := svc.Register(ctx, RegisterInput{Email: "not-an-email", Phone: "", Password: "x", Nickname: "x"})
	assertKind(t, err, KindFieldsRequired)

	_, err = svc.Register(ctx, RegisterInput{Email: "not-an-email", Phone: "+380501234567", Password: "password123", Nickname: "Alice"})
	assertKind(t, err, KindInvalidEmail)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.com", Phone: "12345", Password: "password123", Nickname: "Alice"})
	assertKind(t, err, KindInvalidPhone)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.com", Phone: "+380501234567", Password: "abc12", Nickname: "Alice"})
	assertKind(t, err, KindPasswordTooShort)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.com", Phone: "+380501234567", Password: "password123", Nickname: "Al"})
	assertKind(t, err, KindNicknameTooShort)
}

func TestRegisterUniqueness(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	base := RegisterInput{Email: "a@b.com", Phone: "+380501234567", Password: "password123", Nickname: "Alice"}
	if _, err := svc.Register(ctx, base); err != nil {
		t.Fatalf("register: %v", err)
	}

	dup := base
	dup.Phone = "+380671234567"
	dup.Nickname = "NotAlice"
	_, err := svc.Register(ctx, dup)
	assertKind(t, err, KindEmailTaken)

	dup = base
	dup.Email = "c@d.com"
	dup.Nickname = "NotAlice"
	_, err = svc.Register(ctx, dup)
	assertKind(t, err, KindPhoneTaken)

	dup = base
	dup.Email = "c@d.com"
	dup.Phone = "+380671234567"
	_, err = svc.Register(ctx, dup)
	assertKind(t, err, KindNicknameTaken)
}

func TestStatsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, in := range []RegisterInput{
		{Email: "a@b.com", Phone: "+380501234567", Password: "password123", Nickname: "Alice"},
		{Email: "c@d.com", Phone: "+380671234567", Password: "password456", Nickname: "Bob"},
	} {
		if _, err := svc.Register(ctx, in); err != nil {
			t.Fatalf("register %s: %v", in.Nickname, err)
		}
	}

	first, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	second, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if first != second {
		t.Fatalf("stats not idempotent: %+v vs %+v", first, second)
	}
	if first.TotalUsers != 2 || first.ActiveUsers != 2 {
		t.Fatalf("expected 2 total/2 active, got %+v", first)
	}
	if first.StorageLocation != "memory" {
		t.Fatalf("expected memory location, got %q", first.StorageLocation)
	}
}

func TestHashPasswordDeterministic(t *testing.T) {
	a := HashPassword("password123")
	b := HashPassword("password123")
	if a != b {
		t.Fatalf("digest not deterministic: %q vs %q", a, b)
	}
	if a == HashPassword("password124") {
		t.Fatalf("distinct passwords produced equal digests")
	}
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected failure of kind %d, got nil", want)
	}
	acctErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *account.Error, got %T: %v", err, err)
	}
	if acctErr.Kind != want {
		t.Fatalf("expected kind %d, got %d (%s)", want, acctErr.Kind, acctErr.Message)
	}
}
