package vercel

import (
	"os"
	"time"

	"github.com/Adwaitfound/tlp-provisioner/pkg/env"
)

type Config struct {
	BaseURL      string
	Token        string
	TeamID       string
	RepoOwner    string
	RepoName     string
	PollInterval time.Duration
	DeployWait   time.Duration
}

func NewConfig() *Config {
	return &Config{
		BaseURL:      env.GetEnv("VERCEL_API_URL", "https://api.vercel.com"),
		Token:        os.Getenv("VERCEL_TOKEN"),
		TeamID:       os.Getenv("VERCEL_TEAM_ID"),
		RepoOwner:    os.Getenv("VERCEL_REPO_OWNER"),
		RepoName:     os.Getenv("VERCEL_REPO_NAME"),
		PollInterval: 5 * time.Second,
		DeployWait:   10 * time.Minute,
	}
}
