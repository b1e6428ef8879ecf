package supabase

import (
	"os"
	"time"

	"github.com/Adwaitfound/tlp-provisioner/pkg/env"
)

type Config struct {
	BaseURL        string
	AccessToken    string
	OrganizationID string
	Region         string
	PollInterval   time.Duration
	ReadyTimeout   time.Duration
}

func NewConfig() *Config {
	return &Config{
		BaseURL:        env.GetEnv("SUPABASE_API_URL", "https://api.supabase.com"),
		AccessToken:    os.Getenv("SUPABASE_ACCESS_TOKEN"),
		OrganizationID: os.Getenv("SUPABASE_ORG_ID"),
		Region:         env.GetEnv("SUPABASE_REGION", "us-east-1"),
		PollInterval:   5 * time.Second,
		ReadyTimeout:   5 * time.Minute,
	}
}
