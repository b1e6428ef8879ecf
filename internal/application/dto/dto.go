package dto

import (
	"github.com/Adwaitfound/tlp-provisioner/internal/application/consts"
)

type ProvisioningRequest struct {
	RequestID   string `json:"requestId"`
	AgencyName  string `json:"agencyName" validate:"required,min=2,max=120"`
	OwnerEmail  string `json:"ownerEmail" validate:"required,email"`
	OwnerName   string `json:"ownerName" validate:"required"`
}

type ProvisioningResult struct {
	Success           bool                        `json:"success"`
	RequestID         string                      `json:"requestId"`
	AgencyName        string                      `json:"agencyName"`
	InstanceURL       string                      `json:"instanceUrl,omitempty"`
	SupabaseProjectID string                      `json:"supabaseProjectId,omitempty"`
	VercelProjectID   string                      `json:"vercelProjectId,omitempty"`
	AdminEmail        string                      `json:"adminEmail,omitempty"`
	Error             string                      `json:"error,omitempty"`
	Steps             map[string]consts.StepStatus `json:"steps"`
}

type StatusRecord struct {
	RequestID  string               `json:"requestId"`
	AgencyName string               `json:"agencyName"`
	OwnerEmail string               `json:"ownerEmail"`
	OwnerName  string               `json:"ownerName"`
	Status     consts.RequestStatus `json:"status"`
	Metadata   map[string]any       `json:"metadata"`
}

// DatabaseProject is a read-only snapshot of the managed-database
// platform's project, taken right after creation.
type DatabaseProject struct {
	ID               string
	Name             string
	OrganizationID   string
	Region           string
	DatabasePassword string
	AnonKey          string
	ServiceRoleKey   string
}

type DeploymentProject struct {
	ID   string
	Name string
	URL  string
}

type Deployment struct {
	ID         string
	URL        string
	ReadyState consts.DeploymentReadyState
}

// DeploymentEnv is the set of tenant secrets written to the deployment
// project's environment.
type DeploymentEnv struct {
	AgencyName     string
	SupabaseURL    string
	AnonKey        string
	ServiceRoleKey string
}

type AdminUser struct {
	UserID string
	Email  string
}

type SetupTokenPayload struct {
	AgencyID          string `json:"agencyId"`
	AdminEmail        string `json:"adminEmail"`
	SupabaseProjectID string `json:"supabaseProjectId"`
	AnonKey           string `json:"anonKey"`
	ServiceRoleKey    string `json:"serviceRoleKey"`
	VercelURL         string `json:"vercelUrl"`
}

type WelcomeMail struct {
	AgencyName  string
	AdminEmail  string
	InstanceURL string
	SetupToken  string
}

type ProvisioningStatusMail struct {
	AdminEmail   string
	AgencyName   string
	Succeeded    bool
	InstanceURL  string
	ErrorMessage string
}

type CommentMail struct {
	RecipientEmail string
	ProjectName    string
	AuthorName     string
	CommentText    string
	CommentURL     string
}

type OnboardingCreatedResponse struct {
	RequestID string `json:"requestId"`
}

type SetupRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
