package dbsetup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/dto"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/errs"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/interfaces"
)

// Setup performs the initial in-database configuration of a freshly
// provisioned tenant: the first admin account and the seed rows. It
// talks directly to the tenant project's auth admin and REST endpoints
// using the project's service-role key.
type Setup struct {
	client http.Client
}

var _ interfaces.DatabaseSetup = (*Setup)(nil)

func NewSetup() *Setup {
	return &Setup{
		client: http.Client{Timeout: 30 * time.Second},
	}
}

type createUserRequest struct {
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	EmailConfirm bool           `json:"email_confirm"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type createUserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CreateInitialAdminUser creates the tenant's first auth user with a
// confirmed email, then inserts the matching profile row. The profile
// insert is best-effort, the auth user already exists at that point.
func (s *Setup) CreateInitialAdminUser(ctx context.Context, dbURL, serviceKey, email, password, fullName string) (*dto.AdminUser, error) {
	slog.Info("creating initial admin user", "email", email)

	body, err := json.Marshal(createUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
		UserMetadata: map[string]any{"full_name": fullName},
	})
	if err != nil {
		return nil, err
	}

	var user createUserResponse
	if err := s.do(ctx, dbURL+"/auth/v1/admin/users", serviceKey, body, "create auth user", &user); err != nil {
		return nil, err
	}

	profile, err := json.Marshal(map[string]string{
		"id":        user.ID,
		"email":     email,
		"full_name": fullName,
		"role":      "admin",
	})
	if err != nil {
		return nil, err
	}
	if err := s.do(ctx, dbURL+"/rest/v1/users", serviceKey, profile, "insert profile", nil); err != nil {
		slog.Warn("could not insert admin profile row", "email", email, "err", err)
	}

	slog.Info("admin user created", "id", user.ID)
	return &dto.AdminUser{UserID: user.ID, Email: user.Email}, nil
}

// SeedInitialData inserts the default settings row for the new tenant.
func (s *Setup) SeedInitialData(ctx context.Context, dbURL, serviceKey, agencyName string) error {
	slog.Info("seeding initial data", "agency", agencyName)
	row, err := json.Marshal(map[string]string{
		"key":   "agency_name",
		"value": agencyName,
	})
	if err != nil {
		return err
	}
	return s.do(ctx, dbURL+"/rest/v1/settings", serviceKey, row, "seed settings", nil)
}

func (s *Setup) do(ctx context.Context, url, serviceKey string, body []byte, operation string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("apikey", serviceKey)
	req.Header.Set("Authorization", "Bearer "+serviceKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("tenant %v: %w", operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errs.PlatformAPIError{
			Platform:   "supabase-tenant",
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
