package vercel_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/dto"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/errs"
	sut "github.com/Adwaitfound/tlp-provisioner/internal/infra/client/vercel"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *sut.Config {
	return &sut.Config{
		BaseURL:      baseURL,
		Token:        "vercel_test_token",
		TeamID:       "team_1",
		RepoOwner:    "Adwaitfound",
		RepoName:     "tlp-frontend",
		PollInterval: time.Millisecond,
		DeployWait:   time.Second,
	}
}

func Test_ProjectName_Given_Same_Agency_When_Derived_Then_Prefix_Differs_From_Database_Slug(t *testing.T) {
	SUT := sut.NewClient(testConfig("http://unused"))

	require.Equal(t, "tlp-acme-legal", SUT.ProjectName("Acme Legal"))
}

func Test_CreateProject_Given_Configured_Repo_When_Created_Then_Project_Is_Linked(t *testing.T) {
	var linkBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "team_1", r.URL.Query().Get("teamId"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v9/projects":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "prj_1", "name": "tlp-acme-legal"})
		case r.Method == http.MethodPost && r.URL.Path == "/v9/projects/prj_1/link":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&linkBody))
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	SUT := sut.NewClient(testConfig(server.URL))

	project, err := SUT.CreateProject(context.Background(), "Acme Legal")

	require.NoError(t, err)
	require.Equal(t, "prj_1", project.ID)
	require.Equal(t, "https://tlp-acme-legal.vercel.app", project.URL)
	require.Equal(t, "Adwaitfound/tlp-frontend", linkBody["repo"])
	require.Equal(t, "main", linkBody["gitBranch"])
}

func Test_CreateProject_Given_Failing_Link_When_Created_Then_Project_Is_Still_Returned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v9/projects":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "prj_1", "name": "tlp-acme-legal"})
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer server.Close()
	SUT := sut.NewClient(testConfig(server.URL))

	project, err := SUT.CreateProject(context.Background(), "Acme Legal")

	require.NoError(t, err)
	require.Equal(t, "prj_1", project.ID)
}

func Test_SetEnvironmentVariables_Given_Healthy_API_When_Called_Then_All_Four_Variables_Are_Written(t *testing.T) {
	var written []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v10/projects/prj_1/env", r.URL.Path)
		var v map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&v))
		written = append(written, v)
	}))
	defer server.Close()
	SUT := sut.NewClient(testConfig(server.URL))

	err := SUT.SetEnvironmentVariables(context.Background(), "prj_1", dto.DeploymentEnv{
		AgencyName:     "Acme Legal",
		SupabaseURL:    "https://proj_1.supabase.co",
		AnonKey:        "anon-key",
		ServiceRoleKey: "service-key",
	})

	require.NoError(t, err)
	require.Len(t, written, 4)
	require.Equal(t, "NEXT_PUBLIC_SUPABASE_URL", written[0]["key"])
	require.Equal(t, "SUPABASE_SERVICE_ROLE_KEY", written[2]["key"])
	require.Equal(t, "sensitive", written[2]["type"])
	require.NotContains(t, written[2]["target"], "development")
}

func Test_SetEnvironmentVariables_Given_First_Write_Fails_When_Called_Then_Remaining_Writes_Are_Skipped(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid value"}}`))
	}))
	defer server.Close()
	SUT := sut.NewClient(testConfig(server.URL))

	err := SUT.SetEnvironmentVariables(context.Background(), "prj_1", dto.DeploymentEnv{})

	var apiErr errs.PlatformAPIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "vercel", apiErr.Platform)
	require.Equal(t, 1, requests)
}

func Test_TriggerDeployment_Given_Unlinked_Project_When_Triggered_Then_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"name": "tlp-acme-legal", "link": map[string]any{}})
	}))
	defer server.Close()
	SUT := sut.NewClient(testConfig(server.URL))

	_, err := SUT.TriggerDeployment(context.Background(), "prj_1", "main")

	require.Error(t, err)
	require.Contains(t, err.Error(), "no linked repository")
}

func Test_TriggerDeployment_Given_Linked_Project_When_Triggered_Then_Deployment_Is_Created(t *testing.T) {
	var deployBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v9/projects/prj_1":
			_ = json.NewEncoder(w).Encode(map[string]any{"name": "tlp-acme-legal", "link": map[string]any{"repoId": 123456}})
		case r.Method == http.MethodPost && r.URL.Path == "/v13/deployments":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&deployBody))
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "dpl_1", "url": "tlp-acme-legal-abc.vercel.app", "readyState": "QUEUED"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	SUT := sut.NewClient(testConfig(server.URL))

	deployment, err := SUT.TriggerDeployment(context.Background(), "prj_1", "")

	require.NoError(t, err)
	require.Equal(t, "dpl_1", deployment.ID)
	require.Equal(t, "production", deployBody["target"])
	gitSource := deployBody["gitSource"].(map[string]any)
	require.Equal(t, "main", gitSource["ref"])
}

func Test_WaitForDeployment_Given_Deployment_Becomes_Ready_When_Polled_Then_Returns_Final_Deployment(t *testing.T) {
	states := []string{"QUEUED", "BUILDING", "READY"}
	polls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := states[min(polls, len(states)-1)]
		polls++
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "dpl_1", "url": "tlp-acme-legal-abc.vercel.app", "readyState": state})
	}))
	defer server.Close()
	SUT := sut.NewClient(testConfig(server.URL))

	deployment, err := SUT.WaitForDeployment(context.Background(), "dpl_1")

	require.NoError(t, err)
	require.Equal(t, "tlp-acme-legal-abc.vercel.app", deployment.URL)
	require.Equal(t, 3, polls)
}

func Test_WaitForDeployment_Given_Deployment_Errors_When_Polled_Then_Fails_Fast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "dpl_1", "readyState": "ERROR"})
	}))
	defer server.Close()
	SUT := sut.NewClient(testConfig(server.URL))

	_, err := SUT.WaitForDeployment(context.Background(), "dpl_1")

	require.Error(t, err)
	require.Contains(t, err.Error(), "ERROR")
}
