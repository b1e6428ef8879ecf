package supabase_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/errs"
	sut "github.com/Adwaitfound/tlp-provisioner/internal/infra/client/supabase"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *sut.Config {
	return &sut.Config{
		BaseURL:        baseURL,
		AccessToken:    "sbp_test_token",
		OrganizationID: "org_123",
		Region:         "us-east-1",
		PollInterval:   time.Millisecond,
		ReadyTimeout:   time.Second,
	}
}

func Test_ProjectName_Given_Agency_Name_When_Derived_Then_Slug_Is_Lowercased_And_Prefixed(t *testing.T) {
	require.Equal(t, "tlp-db-acme-legal-group", sut.ProjectName("Acme Legal  Group!"))
}

func Test_ProjectName_Given_Long_Agency_Name_When_Derived_Then_Slug_Is_Truncated_Without_Trailing_Dash(t *testing.T) {
	name := sut.ProjectName("The Extremely Long Agency Name That Goes On And On Forever LLC")

	require.LessOrEqual(t, len(name), len("tlp-db-")+40)
	require.NotRegexp(t, `-$`, name)
}

func Test_CreateProject_Given_Missing_Access_Token_When_Called_Then_ConfigurationError(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.AccessToken = ""
	SUT := sut.NewClient(cfg)

	_, err := SUT.CreateProject(context.Background(), "Acme Legal")

	var confErr errs.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Equal(t, "SUPABASE_ACCESS_TOKEN", confErr.Setting)
}

func Test_CreateProject_Given_Healthy_Project_When_Called_Then_Returns_Project_With_Both_Keys(t *testing.T) {
	statuses := []string{"COMING_UP", "COMING_UP", "ACTIVE_HEALTHY"}
	statusCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer sbp_test_token", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/projects":
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "tlp-db-acme-legal", body["name"])
			require.Equal(t, "org_123", body["organization_id"])
			require.Equal(t, "free", body["plan"])
			require.Len(t, body["db_pass"], 32)
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "proj_1", "name": body["name"], "status": "COMING_UP"})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/projects/proj_1":
			status := statuses[min(statusCalls, len(statuses)-1)]
			statusCalls++
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "proj_1", "status": status})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/projects/proj_1/api-keys":
			_ = json.NewEncoder(w).Encode([]map[string]string{
				{"name": "anon", "api_key": "anon-key"},
				{"name": "service_role", "api_key": "service-key"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	SUT := sut.NewClient(testConfig(server.URL))

	project, err := SUT.CreateProject(context.Background(), "Acme Legal")

	require.NoError(t, err)
	require.Equal(t, "proj_1", project.ID)
	require.Equal(t, "anon-key", project.AnonKey)
	require.Equal(t, "service-key", project.ServiceRoleKey)
	require.Len(t, project.DatabasePassword, 32)
	require.Equal(t, 3, statusCalls)
}

func Test_CreateProject_Given_API_Failure_When_Called_Then_PlatformAPIError_Carries_Raw_Body(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"project quota exceeded"}`))
	}))
	defer server.Close()
	SUT := sut.NewClient(testConfig(server.URL))

	_, err := SUT.CreateProject(context.Background(), "Acme Legal")

	var apiErr errs.PlatformAPIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "supabase", apiErr.Platform)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Contains(t, apiErr.Body, "project quota exceeded")
}

func Test_CreateProject_Given_Missing_Service_Role_Key_When_Called_Then_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/projects":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "proj_1", "status": "COMING_UP"})
		case r.URL.Path == "/v1/projects/proj_1":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "proj_1", "status": "ACTIVE_HEALTHY"})
		case r.URL.Path == "/v1/projects/proj_1/api-keys":
			_ = json.NewEncoder(w).Encode([]map[string]string{{"name": "anon", "api_key": "anon-key"}})
		}
	}))
	defer server.Close()
	SUT := sut.NewClient(testConfig(server.URL))

	_, err := SUT.CreateProject(context.Background(), "Acme Legal")

	require.Error(t, err)
	require.Contains(t, err.Error(), "service_role key missing")
}

func Test_WaitForReady_Given_Project_Going_Down_When_Polled_Then_Fails_Fast(t *testing.T) {
	polls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls++
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "proj_1", "status": "GOING_DOWN"})
	}))
	defer server.Close()
	SUT := sut.NewClient(testConfig(server.URL))

	err := SUT.WaitForReady(context.Background(), "proj_1")

	require.Error(t, err)
	require.Contains(t, err.Error(), "GOING_DOWN")
	require.Equal(t, 1, polls)
}

func Test_WaitForReady_Given_Project_Never_Healthy_When_Ceiling_Elapses_Then_TimeoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "proj_1", "status": "COMING_UP"})
	}))
	defer server.Close()
	cfg := testConfig(server.URL)
	cfg.ReadyTimeout = 10 * time.Millisecond
	SUT := sut.NewClient(cfg)

	err := SUT.WaitForReady(context.Background(), "proj_1")

	require.True(t, errs.IsTimeout(err))
}

func Test_ProjectURL_Given_Project_ID_When_Called_Then_Returns_Hosted_Domain(t *testing.T) {
	SUT := sut.NewClient(testConfig("http://unused"))

	require.Equal(t, "https://proj_1.supabase.co", SUT.ProjectURL("proj_1"))
}
