package mail

import (
	"os"

	"github.com/Adwaitfound/tlp-provisioner/pkg/env"
)

type MailConfig struct {
	BaseURL     string
	APIKey      string
	FromAddress string
	AdminEmail  string
}

func NewMailConfig() *MailConfig {
	return &MailConfig{
		BaseURL:     env.GetEnv("RESEND_API_URL", "https://api.resend.com"),
		APIKey:      os.Getenv("RESEND_API_KEY"),
		FromAddress: env.GetEnv("RESEND_FROM_EMAIL", "onboarding@resend.dev"),
		AdminEmail:  os.Getenv("PROVISIONING_ADMIN_EMAIL"),
	}
}
