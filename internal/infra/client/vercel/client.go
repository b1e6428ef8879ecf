package vercel

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
)

// projectNamePrefix differs from the database client's prefix so the two
// platforms never collide on a slug.
const projectNamePrefix = "tlp-"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Client talks to the hosting platform's API, stateless apart from
// configuration read once at process start.
type Client struct {
	cfg    *Config
	client http.Client
}

var _ interfaces.DeploymentPlatform = (*Client)(nil)

func NewClient(cfg *Config) *Client {
	return &Client{
		cfg:    cfg,
		client: http.Client{Timeout: 30 * time.Second},
	}
}

// ProjectName derives the deployment project slug from the agency name,
// same sanitization rules as the database client, different prefix.
func (c *Client) ProjectName(agencyName string) string {
	slug := nonAlnum.ReplaceAllString(strings.ToLower(agencyName), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 40 {
		slug = strings.Trim(slug[:40], "-")
	}
	return projectNamePrefix + slug
}

type projectResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type deploymentResponse struct {
	ID         string                      `json:"id"`
	URL        string                      `json:"url"`
	ReadyState consts.DeploymentReadyState `json:"readyState"`
}

// CreateProject creates a hosting project and, when a source repo is
// configured, links it. The link is best-effort, it can also be attached
// later through the platform's dashboard.
func (c *Client) CreateProject(ctx context.Context, agencyName string) (*dto.DeploymentProject, error) {
	if c.cfg.Token == "" {
		return nil, errs.ConfigurationError{Setting: "VERCEL_TOKEN"}
	}

	projectName := c.ProjectName(agencyName)
	slog.Info("creating deployment project", "name", projectName)

	payload := map[string]any{
		"name":      projectName,
		"framework": "nextjs",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var project projectResponse
	if err := c.do(ctx, http.MethodPost, "/v9/projects", bytes.NewReader(body), "create project", &project); err != nil {
		return nil, err
	}
	slog.Info("deployment project created", "id", project.ID)

	if c.cfg.RepoOwner != "" && c.cfg.RepoName != "" {
		if err := c.LinkGitHubRepo(ctx, project.ID, projectName); err != nil {
			slog.Warn("could not link source repo", "project", projectName, "err", err)
		}
	}

	return &dto.DeploymentProject{
		ID:   project.ID,
		Name: project.Name,
		URL:  fmt.Sprintf("https://%v.vercel.app", project.Name),
	}, nil
}

func (c *Client) LinkGitHubRepo(ctx context.Context, projectID, projectName string) error {
	if c.cfg.Token == "" {
		return errs.ConfigurationError{Setting: "VERCEL_TOKEN"}
	}
	slog.Info("linking source repo", "project", projectName)
	body, err := json.Marshal(map[string]string{
		"type":      "github",
		"repo":      c.cfg.RepoOwner + "/" + c.cfg.RepoName,
		"gitBranch": "main",
	})
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/v9/projects/"+projectID+"/link", bytes.NewReader(body), "link repo", nil)
}

type envVar struct {
	Key    string   `json:"key"`
	Value  string   `json:"value"`
	Target []string `json:"target"`
	Type   string   `json:"type"`
}

// SetEnvironmentVariables writes the tenant secrets one variable per
// call. The first failure aborts the remaining writes, callers must
// assume partial configuration on error.
func (c *Client) SetEnvironmentVariables(ctx context.Context, projectID string, env dto.DeploymentEnv) error {
	if c.cfg.Token == "" {
		return errs.ConfigurationError{Setting: "VERCEL_TOKEN"}
	}
	allTargets := []string{"production", "preview", "development"}
	vars := []envVar{
		{Key: "NEXT_PUBLIC_SUPABASE_URL", Value: env.SupabaseURL, Target: allTargets, Type: "encrypted"},
		{Key: "NEXT_PUBLIC_SUPABASE_ANON_KEY", Value: env.AnonKey, Target: allTargets, Type: "encrypted"},
		// sensitive variables cannot target the development environment
		{Key: "SUPABASE_SERVICE_ROLE_KEY", Value: env.ServiceRoleKey, Target: []string{"production", "preview"}, Type: "sensitive"},
		{Key: "AGENCY_NAME", Value: env.AgencyName, Target: allTargets, Type: "encrypted"},
	}
	for _, v := range vars {
		body, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if err := c.do(ctx, http.MethodPost, "/v10/projects/"+projectID+"/env", bytes.NewReader(body), "set env "+v.Key, nil); err != nil {
			return err
		}
		slog.Info("environment variable set", "key", v.Key)
	}
	return nil
}

func (c *Client) TriggerDeployment(ctx context.Context, projectID, branch string) (*dto.Deployment, error) {
	if c.cfg.Token == "" {
		return nil, errs.ConfigurationError{Setting: "VERCEL_TOKEN"}
	}
	if branch == "" {
		branch = "main"
	}

	// the deployments API needs the linked repo id from the project
	var project struct {
		Name string `json:"name"`
		Link struct {
			RepoID json.Number `json:"repoId"`
		} `json:"link"`
	}
	if err := c.do(ctx, http.MethodGet, "/v9/projects/"+projectID, nil, "get project", &project); err != nil {
		return nil, err
	}
	if project.Link.RepoID == "" {
		return nil, fmt.Errorf("project %v has no linked repository, link may still be processing", projectID)
	}

	slog.Info("triggering deployment", "project", projectID, "branch", branch)
	body, err := json.Marshal(map[string]any{
		"name":    project.Name,
		"project": projectID,
		"target":  "production",
		"gitSource": map[string]any{
			"type":   "github",
			"ref":    branch,
			"repoId": project.Link.RepoID,
		},
	})
	if err != nil {
		return nil, err
	}

	var deployment deploymentResponse
	if err := c.do(ctx, http.MethodPost, "/v13/deployments", bytes.NewReader(body), "trigger deployment", &deployment); err != nil {
		return nil, err
	}
	slog.Info("deployment triggered", "id", deployment.ID)
	return &dto.Deployment{ID: deployment.ID, URL: deployment.URL, ReadyState: deployment.ReadyState}, nil
}

func (c *Client) GetDeployment(ctx context.Context, deploymentID string) (*dto.Deployment, error) {
	if c.cfg.Token == "" {
		return nil, errs.ConfigurationError{Setting: "VERCEL_TOKEN"}
	}
	var deployment deploymentResponse
	if err := c.do(ctx, http.MethodGet, "/v13/deployments/"+deploymentID, nil, "get deployment", &deployment); err != nil {
		return nil, err
	}
	return &dto.Deployment{ID: deployment.ID, URL: deployment.URL, ReadyState: deployment.ReadyState}, nil
}

// WaitForDeployment polls until READY. ERROR and CANCELED are terminal.
func (c *Client) WaitForDeployment(ctx context.Context, deploymentID string) (*dto.Deployment, error) {
	var last *dto.Deployment
	err := poll.Await(ctx, "deployment "+deploymentID, c.cfg.PollInterval, c.cfg.DeployWait,
		func(ctx context.Context) (poll.Decision, error) {
			deployment, err := c.GetDeployment(ctx, deploymentID)
			if err != nil {
				return poll.Retry, err
			}
			last = deployment
			switch deployment.ReadyState {
			case consts.DeploymentReady:
				return poll.Ready, nil
			case consts.DeploymentError, consts.DeploymentCanceled:
				return poll.Fatal, fmt.Errorf("deployment %v failed with state %v", deploymentID, deployment.ReadyState)
			}
			slog.Info("deployment not ready yet", "id", deploymentID, "state", deployment.ReadyState)
			return poll.Retry, nil
		})
	if err != nil {
		return nil, err
	}
	return last, nil
}

// DeleteProject is destructive, manual cleanup tooling only.
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	if c.cfg.Token == "" {
		return errs.ConfigurationError{Setting: "VERCEL_TOKEN"}
	}
	slog.Warn("deleting deployment project", "id", projectID)
	return c.do(ctx, http.MethodDelete, "/v9/projects/"+projectID, nil, "delete project", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, operation string, out any) error {
	url := c.cfg.BaseURL + path
	if c.cfg.TeamID != "" {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + "teamId=" + c.cfg.TeamID
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("vercel %v: %w", operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errs.PlatformAPIError{
			Platform:   "vercel",
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
