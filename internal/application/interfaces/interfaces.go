package interfaces

import (
	"context"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/consts"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/dto"
)

// StatusStore is the durable record of one provisioning attempt, keyed by
// request id. Update has merge semantics on metadata.
type StatusStore interface {
	Read(ctx context.Context, requestID string) (*dto.StatusRecord, error)
	Update(ctx context.Context, requestID string, status consts.RequestStatus, metadata map[string]any) error
	// StartRun flips the record to provisioning. Returns false when the
	// request is already approved or unknown, in which case the run must
	// not proceed.
	StartRun(ctx context.Context, requestID string) (bool, error)
}

type DatabasePlatform interface {
	CreateProject(ctx context.Context, agencyName string) (*dto.DatabaseProject, error)
	ProjectURL(projectID string) string
}

type MigrationRunner interface {
	Run(ctx context.Context, projectURL, serviceRoleKey string) error
}

type DatabaseSetup interface {
	CreateInitialAdminUser(ctx context.Context, dbURL, serviceKey, email, password, fullName string) (*dto.AdminUser, error)
	SeedInitialData(ctx context.Context, dbURL, serviceKey, agencyName string) error
}

type DeploymentPlatform interface {
	CreateProject(ctx context.Context, agencyName string) (*dto.DeploymentProject, error)
	ProjectName(agencyName string) string
	SetEnvironmentVariables(ctx context.Context, projectID string, env dto.DeploymentEnv) error
	TriggerDeployment(ctx context.Context, projectID, branch string) (*dto.Deployment, error)
	WaitForDeployment(ctx context.Context, deploymentID string) (*dto.Deployment, error)
}

type Mailer interface {
	SendWelcome(ctx context.Context, data dto.WelcomeMail) error
	// SendProvisioningStatus is best-effort and never returns an error.
	SendProvisioningStatus(ctx context.Context, data dto.ProvisioningStatusMail)
	SendCommentNotification(ctx context.Context, data dto.CommentMail) error
}

type SetupTokenCodec interface {
	Generate(payload dto.SetupTokenPayload) (string, error)
	Verify(token string) (*dto.SetupTokenPayload, error)
}
