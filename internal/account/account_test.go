package account

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*Service, *MemRepository) {
	t.Helper()
	repo := &MemRepository{}
	return NewService(repo, bcrypt.MinCost), repo
}

func TestRegisterThenLogin(t *testing.T) {
	s, _ := newTestService(t)

	if _, err := s.Register("ana", "s3cret", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	u, err := s.Login("ana", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.Username != "ana" {
		t.Errorf("username = %q", u.Username)
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	s, repo := newTestService(t)

	if _, err := s.Register("ana", "s3cret", "s3cret"); err != nil {
		t.Fatal(err)
	}

	users, _ := repo.LoadUsers()
	if len(users) != 1 {
		t.Fatalf("users = %d", len(users))
	}
	if strings.Contains(users[0].PasswordHash, "s3cret") {
		t.Error("password stored in clear")
	}
	if users[0].CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestRegisterErrors(t *testing.T) {
	tests := []struct {
		name                        string
		username, password, confirm string
		want                        error
	}{
		{"missing username", " ", "x", "x", ErrMissingFields},
		{"missing password", "ana", "", "", ErrMissingFields},
		{"mismatch", "ana", "one", "two", ErrPasswordMismatch},
		{"taken", "bruno", "x", "x", ErrUsernameTaken},
		{"taken other case", "BRUNO", "x", "x", ErrUsernameTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestService(t)
			if _, err := s.Register("bruno", "pw", "pw"); err != nil {
				t.Fatal(err)
			}

			_, err := s.Register(tt.username, tt.password, tt.confirm)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoginErrors(t *testing.T) {
	s, _ := newTestService(t)
	if _, err := s.Register("ana", "s3cret", "s3cret"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name               string
		username, password string
		want               error
	}{
		{"wrong password", "ana", "nope", ErrInvalidCredentials},
		{"unknown user", "carla", "s3cret", ErrInvalidCredentials},
		{"empty", "", "", ErrMissingFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Login(tt.username, tt.password); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestHasUsers(t *testing.T) {
	s, _ := newTestService(t)

	has, err := s.HasUsers()
	if err != nil || has {
		t.Fatalf("HasUsers = %v, %v on empty list", has, err)
	}

	s.Register("ana", "pw", "pw")

	has, err = s.HasUsers()
	if err != nil || !has {
		t.Errorf("HasUsers = %v, %v after register", has, err)
	}
}
