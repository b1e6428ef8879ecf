package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/consts"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/dto"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/errs"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/interfaces"
	"github.com/Adwaitfound/tlp-provisioner/internal/infra/poll"
	"github.com/Adwaitfound/tlp-provisioner/internal/infra/secrets"
)

const projectNamePrefix = "tlp-db-"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Client talks to the managed-database platform's control-plane API. It
// is a stateless request/response wrapper holding only configuration.
type Client struct {
	cfg    *Config
	client http.Client
}

var _ interfaces.DatabasePlatform = (*Client)(nil)

func NewClient(cfg *Config) *Client {
	return &Client{
		cfg:    cfg,
		client: http.Client{Timeout: 30 * time.Second},
	}
}

// ProjectName derives a URL-safe project slug from the agency name.
func ProjectName(agencyName string) string {
	slug := nonAlnum.ReplaceAllString(strings.ToLower(agencyName), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 40 {
		slug = strings.Trim(slug[:40], "-")
	}
	return projectNamePrefix + slug
}

type createProjectRequest struct {
	Name           string `json:"name"`
	OrganizationID string `json:"organization_id"`
	DBPass         string `json:"db_pass"`
	Region         string `json:"region"`
	Plan           string `json:"plan"`
}

type Project struct {
	ID             string                       `json:"id"`
	Name           string                       `json:"name"`
	OrganizationID string                       `json:"organization_id"`
	Region         string                       `json:"region"`
	Status         consts.DatabaseProjectStatus `json:"status"`
}

type apiKeyResponse struct {
	Name   string `json:"name"`
	APIKey string `json:"api_key"`
}

// CreateProject creates a new isolated database project, blocks until it
// is healthy, then reads back its API keys. A keys-fetch failure is an
// error, downstream steps cannot work with empty keys.
func (c *Client) CreateProject(ctx context.Context, agencyName string) (*dto.DatabaseProject, error) {
	if c.cfg.AccessToken == "" {
		return nil, errs.ConfigurationError{Setting: "SUPABASE_ACCESS_TOKEN"}
	}
	if c.cfg.OrganizationID == "" {
		return nil, errs.ConfigurationError{Setting: "SUPABASE_ORG_ID"}
	}

	projectName := ProjectName(agencyName)
	dbPassword := secrets.GeneratePassword()
	slog.Info("creating database project", "name", projectName, "region", c.cfg.Region)

	body, err := json.Marshal(createProjectRequest{
		Name:           projectName,
		OrganizationID: c.cfg.OrganizationID,
		DBPass:         dbPassword,
		Region:         c.cfg.Region,
		Plan:           "free",
	})
	if err != nil {
		return nil, err
	}

	var created Project
	if err := c.do(ctx, http.MethodPost, "/v1/projects", bytes.NewReader(body), "create project", &created); err != nil {
		return nil, err
	}
	slog.Info("database project created", "id", created.ID)

	if err := c.WaitForReady(ctx, created.ID); err != nil {
		return nil, err
	}

	var keys []apiKeyResponse
	if err := c.do(ctx, http.MethodGet, "/v1/projects/"+created.ID+"/api-keys", nil, "fetch api keys", &keys); err != nil {
		return nil, err
	}
	var anonKey, serviceRoleKey string
	for _, k := range keys {
		switch k.Name {
		case "anon":
			anonKey = k.APIKey
		case "service_role":
			serviceRoleKey = k.APIKey
		}
	}
	if anonKey == "" || serviceRoleKey == "" {
		return nil, errs.PlatformAPIError{
			Platform:   "supabase",
			Operation:  "fetch api keys",
			StatusCode: http.StatusOK,
			Body:       "anon or service_role key missing from keys response",
		}
	}

	return &dto.DatabaseProject{
		ID:               created.ID,
		Name:             projectName,
		OrganizationID:   c.cfg.OrganizationID,
		Region:           c.cfg.Region,
		DatabasePassword: dbPassword,
		AnonKey:          anonKey,
		ServiceRoleKey:   serviceRoleKey,
	}, nil
}

// WaitForReady polls the project status until ACTIVE_HEALTHY. INACTIVE
// and GOING_DOWN are unexpected terminal states and fail fast.
func (c *Client) WaitForReady(ctx context.Context, projectID string) error {
	slog.Info("waiting for database project to become healthy", "id", projectID)
	return poll.Await(ctx, "database project "+projectID, c.cfg.PollInterval, c.cfg.ReadyTimeout,
		func(ctx context.Context) (poll.Decision, error) {
			project, err := c.GetProject(ctx, projectID)
			if err != nil {
				return poll.Retry, err
			}
			switch project.Status {
			case consts.DatabaseActiveHealthy:
				return poll.Ready, nil
			case consts.DatabaseInactive, consts.DatabaseGoingDown:
				return poll.Fatal, fmt.Errorf("database project %v entered unexpected state %v", projectID, project.Status)
			}
			slog.Info("database project not ready yet", "id", projectID, "status", project.Status)
			return poll.Retry, nil
		})
}

func (c *Client) GetProject(ctx context.Context, projectID string) (*Project, error) {
	if c.cfg.AccessToken == "" {
		return nil, errs.ConfigurationError{Setting: "SUPABASE_ACCESS_TOKEN"}
	}
	var project Project
	if err := c.do(ctx, http.MethodGet, "/v1/projects/"+projectID, nil, "get project", &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// ProjectURL is a pure string template, no network call.
func (c *Client) ProjectURL(projectID string) string {
	return fmt.Sprintf("https://%v.supabase.co", projectID)
}

// DeleteProject is destructive and only used by manual cleanup tooling,
// the orchestrator never rolls back partial resources automatically.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	if c.cfg.AccessToken == "" {
		return errs.ConfigurationError{Setting: "SUPABASE_ACCESS_TOKEN"}
	}
	slog.Warn("deleting database project", "id", projectID)
	return c.do(ctx, http.MethodDelete, "/v1/projects/"+projectID, nil, "delete project", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, operation string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("supabase %v: %w", operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errs.PlatformAPIError{
			Platform:   "supabase",
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
