package secrets

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// Secrets stores opaque secrets in the OS keychain under one service name.
// It is constructed once and injected wherever credentials are needed, so
// tests can swap in a fake.
type Secrets struct {
	service string
}

func NewSecrets(service string) *Secrets {
	return &Secrets{service: service}
}

func (s *Secrets) Store(identifier string, secret []byte) error {
	err := keyring.Set(s.service, identifier, string(secret))
	if err != nil {
		return fmt.Errorf("could not store secret %s: %w", identifier, err)
	}

	return nil
}

// Retrieve returns nil bytes and nil error when nothing is stored under the
// identifier.
func (s *Secrets) Retrieve(identifier string) ([]byte, error) {
	data, err := keyring.Get(s.service, identifier)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not retrieve secret %s: %w", identifier, err)
	}

	return []byte(data), nil
}

func (s *Secrets) Delete(identifier string) error {
	err := keyring.Delete(s.service, identifier)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("could not delete secret %s: %w", identifier, err)
	}

	return nil
}
