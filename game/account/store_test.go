package account

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestStore() *Store {
	return NewStore(bcrypt.MinCost)
}

func TestRegister(t *testing.T) {
	store := newTestStore()

	user, err := store.Register("alice", "secret")
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Expected username alice, got %s", user.Username)
	}
	if string(user.PasswordHash) == "secret" {
		t.Error("Password stored in plain text")
	}
	if !store.Exists("alice") || store.Count() != 1 {
		t.Error("Expected alice to be registered")
	}
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"missing username", "", "secret", ErrMissingCredentials},
		{"blank username", "   ", "secret", ErrMissingCredentials},
		{"missing password", "bob", "", ErrMissingCredentials},
		{"duplicate", "alice", "other", ErrUserExists},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := newTestStore()
			if _, err := store.Register("alice", "secret"); err != nil {
				t.Fatal(err)
			}

			_, err := store.Register(test.username, test.password)
			if !errors.Is(err, test.want) {
				t.Errorf("Expected %v, got %v", test.want, err)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	store := newTestStore()
	if _, err := store.Register("alice", "secret"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"valid", "alice", "secret", nil},
		{"surrounding spaces", " alice ", "secret", ErrInvalidCredentials},
		{"wrong password", "alice", "nope", ErrInvalidCredentials},
		{"unknown user", "mallory", "secret", ErrInvalidCredentials},
		{"case sensitive", "Alice", "secret", ErrInvalidCredentials},
		{"missing password", "alice", "", ErrMissingCredentials},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			user, err := store.Authenticate(test.username, test.password)
			if !errors.Is(err, test.want) {
				t.Fatalf("Expected %v, got %v", test.want, err)
			}
			if test.want == nil && user.Username != "alice" {
				t.Errorf("Expected alice, got %s", user.Username)
			}
		})
	}
}

func TestRegister_ExactKeys(t *testing.T) {
	store := newTestStore()

	user, err := store.Register(" bob ", "secret")
	if err != nil {
		t.Fatalf("Failed to register: %v", err)
	}
	if user.Username != " bob " {
		t.Errorf("Expected username kept as %q, got %q", " bob ", user.Username)
	}
	if !store.Exists(" bob ") {
		t.Error("Expected exact username to exist")
	}
	if store.Exists("bob") {
		t.Error("Expected trimmed username to be a different key")
	}
	if _, err := store.Register("bob", "secret"); err != nil {
		t.Errorf("Expected bob to be a separate account, got %v", err)
	}
}

func TestNewStore_CostFallback(t *testing.T) {
	if store := NewStore(0); store.cost != bcrypt.DefaultCost {
		t.Errorf("Expected default cost, got %d", store.cost)
	}
	if store := NewStore(bcrypt.MaxCost + 1); store.cost != bcrypt.DefaultCost {
		t.Errorf("Expected default cost, got %d", store.cost)
	}
}

func TestConcurrentRegister(t *testing.T) {
	store := newTestStore()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Half the goroutines race on the same name
			name := fmt.Sprintf("user%d", i%10)
			if _, err := store.Register(name, "pw"); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	failures := 0
	for err := range errs {
		if !errors.Is(err, ErrUserExists) {
			t.Errorf("Unexpected error: %v", err)
		}
		failures++
	}
	if store.Count() != 10 || failures != 10 {
		t.Errorf("Expected 10 users and 10 duplicates, got %d users and %d failures", store.Count(), failures)
	}
}
