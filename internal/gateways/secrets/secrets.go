package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quintans/tvshelf/internal/app"
	"github.com/zalando/go-keyring"
)

const (
	apiKeyUser = "tvdb-apikey"
	tokenUser  = "tvdb-token"
)

// Secrets keeps credentials in the OS keyring.
type Secrets struct{}

func NewSecrets() *Secrets {
	return &Secrets{}
}

func (s *Secrets) GetAPIKey() (string, error) {
	key, err := keyring.Get(app.Name, apiKeyUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("could not get API key: %w", err)
	}

	return key, nil
}

func (s *Secrets) SetAPIKey(value string) error {
	err := keyring.Set(app.Name, apiKeyUser, value)
	if err != nil {
		return fmt.Errorf("could not save API key: %w", err)
	}

	return nil
}

type storedToken struct {
	Token      string    `json:"token"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

func (s *Secrets) LoadToken() (string, time.Time, error) {
	data, err := keyring.Get(app.Name, tokenUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", time.Time{}, nil
		}
		return "", time.Time{}, fmt.Errorf("could not get token: %w", err)
	}

	var tok storedToken
	err = json.Unmarshal([]byte(data), &tok)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("could not unmarshal token: %w", err)
	}

	return tok.Token, tok.AcquiredAt, nil
}

// SaveToken persists the token. An empty token removes it.
func (s *Secrets) SaveToken(token string, acquiredAt time.Time) error {
	if token == "" {
		err := keyring.Delete(app.Name, tokenUser)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("could not delete token: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(storedToken{Token: token, AcquiredAt: acquiredAt})
	if err != nil {
		return fmt.Errorf("could not marshal token: %w", err)
	}
	err = keyring.Set(app.Name, tokenUser, string(data))
	if err != nil {
		return fmt.Errorf("could not save token: %w", err)
	}

	return nil
}
