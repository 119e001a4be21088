package auth

import (
	"errors"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already taken")
	ErrEmptyCredentials   = errors.New("username and password are required")
)

// Store holds credentials in memory for the lifetime of the process.
// Passwords are bcrypt-hashed; registration only ever adds entries, it
// never updates or deletes them.
type Store struct {
	mu    sync.RWMutex
	users map[string]string // username -> bcrypt hash
}

// SeedUsers are the demo accounts present at boot.
var SeedUsers = map[string]string{
	"user1": "pass1",
	"user2": "pass2",
}

// NewStore creates a credential store pre-populated with the given
// plaintext accounts, hashing each at seed time.
func NewStore(seed map[string]string) (*Store, error) {
	s := &Store{users: make(map[string]string, len(seed))}
	for username, password := range seed {
		hash, err := HashPassword(password)
		if err != nil {
			return nil, err
		}
		s.users[username] = hash
	}
	return s, nil
}

// Register adds a new account. Duplicate usernames are rejected without
// touching the existing entry.
func (s *Store) Register(username, password string) error {
	if username == "" || password == "" {
		return ErrEmptyCredentials
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; exists {
		return ErrUserExists
	}
	s.users[username] = hash
	return nil
}

// Authenticate verifies a username/password pair. Unknown users and wrong
// passwords produce the same error.
func (s *Store) Authenticate(username, password string) error {
	s.mu.RLock()
	hash, exists := s.users[username]
	s.mu.RUnlock()

	if !exists || !VerifyPassword(password, hash) {
		return ErrInvalidCredentials
	}
	return nil
}

// Usernames lists registered accounts, sorted.
func (s *Store) Usernames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.users))
	for u := range s.users {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks if a password matches a hash.
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
