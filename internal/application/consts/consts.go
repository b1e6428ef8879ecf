package consts

type RequestStatus string

const (
	StatusPending      RequestStatus = "pending"
	StatusProvisioning RequestStatus = "provisioning"
	StatusApproved     RequestStatus = "approved"
	StatusFailed       RequestStatus = "failed"
)

type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in-progress"
	StepCompleted  StepStatus = "completed"
	StepFallback   StepStatus = "completed-via-fallback"
	StepSkipped    StepStatus = "skipped"
	StepFailed     StepStatus = "failed"
)

// Step names, also used as keys in the per-step breakdown persisted on
// terminal failure.
const (
	StepSupabaseProject = "supabaseProject"
	StepDatabase        = "database"
	StepVercelProject   = "vercelProject"
	StepDeployment      = "deployment"
	StepEmail           = "email"
)

// Metadata keys accumulated in the status record. The metadata map is
// append-only within a run, resumed runs read these back to skip
// completed steps.
const (
	MetaSupabaseProjectID  = "supabaseProjectId"
	MetaSupabaseURL        = "supabaseUrl"
	MetaSupabaseAnonKey    = "supabaseAnonKey"
	MetaSupabaseServiceKey = "supabaseServiceKey"
	MetaVercelProjectID    = "vercelProjectId"
	MetaInstanceURL        = "instanceUrl"
	MetaEnvConfigured      = "envConfigured"
	MetaAdminEmail         = "adminEmail"
	MetaStep               = "step"
	MetaStartedAt          = "started_at"
	MetaCompletedAt        = "completed_at"
	MetaFailedAt           = "failed_at"
	MetaError              = "error"
	MetaSteps              = "steps"
)

type DatabaseProjectStatus string

const (
	DatabaseActiveHealthy DatabaseProjectStatus = "ACTIVE_HEALTHY"
	DatabaseComingUp      DatabaseProjectStatus = "COMING_UP"
	DatabaseUnknown       DatabaseProjectStatus = "UNKNOWN"
	DatabaseInactive      DatabaseProjectStatus = "INACTIVE"
	DatabaseGoingDown     DatabaseProjectStatus = "GOING_DOWN"
)

type DeploymentReadyState string

const (
	DeploymentQueued       DeploymentReadyState = "QUEUED"
	DeploymentInitializing DeploymentReadyState = "INITIALIZING"
	DeploymentBuilding     DeploymentReadyState = "BUILDING"
	DeploymentReady        DeploymentReadyState = "READY"
	DeploymentError        DeploymentReadyState = "ERROR"
	DeploymentCanceled     DeploymentReadyState = "CANCELED"
)
