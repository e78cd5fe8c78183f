// Package account registers operators and checks their logins against the
// credential list kept in the vault.
package account

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields      = errors.New("username and password are required")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// User is one registered operator.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository loads and saves the whole credential list.
type Repository interface {
	LoadUsers() ([]User, error)
	SaveUsers([]User) error
}

// Service implements register and login.
type Service struct {
	repo Repository
	cost int
	now  func() time.Time
}

// NewService creates a service hashing with the given bcrypt cost.
// A zero cost uses bcrypt.DefaultCost.
func NewService(repo Repository, cost int) *Service {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, cost: cost, now: time.Now}
}

// Register adds a user. password and confirm must match.
func (s *Service) Register(username, password, confirm string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, fmt.Errorf("register: %w", ErrMissingFields)
	}
	if password != confirm {
		return User{}, fmt.Errorf("register: %w", ErrPasswordMismatch)
	}

	users, err := s.repo.LoadUsers()
	if err != nil {
		return User{}, fmt.Errorf("register: load users: %w", err)
	}

	if slices.ContainsFunc(users, func(u User) bool { return strings.EqualFold(u.Username, username) }) {
		return User{}, fmt.Errorf("register %s: %w", username, ErrUsernameTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("register: hash password: %w", err)
	}

	u := User{Username: username, PasswordHash: string(hash), CreatedAt: s.now().UTC()}
	if err := s.repo.SaveUsers(append(users, u)); err != nil {
		return User{}, fmt.Errorf("register: save users: %w", err)
	}

	return u, nil
}

// Login returns the user when username and password match a registration.
// Unknown users and wrong passwords yield the same error.
func (s *Service) Login(username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, fmt.Errorf("login: %w", ErrMissingFields)
	}

	users, err := s.repo.LoadUsers()
	if err != nil {
		return User{}, fmt.Errorf("login: load users: %w", err)
	}

	i := slices.IndexFunc(users, func(u User) bool { return strings.EqualFold(u.Username, username) })
	if i < 0 {
		return User{}, fmt.Errorf("login: %w", ErrInvalidCredentials)
	}

	err = bcrypt.CompareHashAndPassword([]byte(users[i].PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return User{}, fmt.Errorf("login: %w", ErrInvalidCredentials)
	}
	if err != nil {
		return User{}, fmt.Errorf("login: verify password: %w", err)
	}

	return users[i], nil
}

// HasUsers reports whether anyone has registered yet.
func (s *Service) HasUsers() (bool, error) {
	users, err := s.repo.LoadUsers()
	if err != nil {
		return false, fmt.Errorf("load users: %w", err)
	}
	return len(users) > 0, nil
}

// MemRepository keeps users in memory.
type MemRepository struct {
	mu    sync.Mutex
	users []User
}

var _ Repository = (*MemRepository)(nil)

func (r *MemRepository) LoadUsers() ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.users), nil
}

func (r *MemRepository) SaveUsers(users []User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = slices.Clone(users)
	return nil
}
