package testfixtures

import (
	"fmt"
	"sync"

	"github.com/example/calendar-console/internal/application"
)

// PasswordSequence produces deterministic registration passwords for tests.
type PasswordSequence struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewPasswordSequence constructs a sequence yielding passwords with the given
// prefix. When prefix is empty, "password" is used.
func NewPasswordSequence(prefix string) *PasswordSequence {
	if prefix == "" {
		prefix = "password"
	}
	return &PasswordSequence{prefix: prefix}
}

// Next returns the next password in the sequence.
func (p *PasswordSequence) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counter++
	return fmt.Sprintf("%s-%d", p.prefix, p.counter)
}

// Source exposes the sequence as an application.PasswordSource.
func (p *PasswordSequence) Source() application.PasswordSource {
	return func() (string, error) { return p.Next(), nil }
}

// FastHasher is an argon2id hasher with parameters cheap enough for unit tests.
func FastHasher() application.PasswordHasher {
	return application.Argon2idHasher{Params: application.Argon2idParams{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  8,
		KeyLength:   16,
	}}
}
