package token

import (
	"os"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/errs"
)

type Config struct {
	SigningSecret string
}

// NewConfig requires an explicit signing secret, there is no fallback.
func NewConfig() (*Config, error) {
	secret := os.Getenv("SETUP_TOKEN_SECRET")
	if secret == "" {
		return nil, errs.ConfigurationError{Setting: "SETUP_TOKEN_SECRET"}
	}
	return &Config{SigningSecret: secret}, nil
}
