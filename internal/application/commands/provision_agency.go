package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/consts"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/dto"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/interfaces"
	"github.com/Adwaitfound/tlp-provisioner/internal/infra/secrets"
)

// ProvisionAgency drives the whole tenant-creation workflow: database
// project, schema, deployment project, deployment and welcome email,
// checkpointing progress into the status store after every step so a
// retry with the same request id resumes instead of recreating.
type ProvisionAgency struct {
	store       interfaces.StatusStore
	database    interfaces.DatabasePlatform
	migrations  interfaces.MigrationRunner
	dbSetup     interfaces.DatabaseSetup
	deployments interfaces.DeploymentPlatform
	mailer      interfaces.Mailer
	tokens      interfaces.SetupTokenCodec
}

func NewProvisionAgency(
	store interfaces.StatusStore, database interfaces.DatabasePlatform, migrations interfaces.MigrationRunner,
	dbSetup interfaces.DatabaseSetup, deployments interfaces.DeploymentPlatform,
	mailer interfaces.Mailer, tokens interfaces.SetupTokenCodec,
) *ProvisionAgency {
	return &ProvisionAgency{
		store:       store,
		database:    database,
		migrations:  migrations,
		dbSetup:     dbSetup,
		deployments: deployments,
		mailer:      mailer,
		tokens:      tokens,
	}
}

// Execute runs the workflow to a terminal status. It never lets an error
// escape, the caller always gets a structured result and the durable
// record always ends at approved or failed.
func (p *ProvisionAgency) Execute(ctx context.Context, req dto.ProvisioningRequest) dto.ProvisioningResult {
	result := dto.ProvisioningResult{
		RequestID:  req.RequestID,
		AgencyName: req.AgencyName,
		Steps: map[string]consts.StepStatus{
			consts.StepSupabaseProject: consts.StepPending,
			consts.StepDatabase:        consts.StepPending,
			consts.StepVercelProject:   consts.StepPending,
			consts.StepDeployment:      consts.StepPending,
			consts.StepEmail:           consts.StepPending,
		},
	}
	slog.Info("starting provisioning", "request", req.RequestID, "agency", req.AgencyName)

	record, err := p.store.Read(ctx, req.RequestID)
	if err != nil {
		return p.fail(ctx, req, result, fmt.Errorf("can't read provisioning record: %w", err))
	}
	started, err := p.store.StartRun(ctx, req.RequestID)
	if err != nil {
		return p.fail(ctx, req, result, fmt.Errorf("can't start provisioning run: %w", err))
	}
	if !started {
		// already approved, report the previous outcome instead of
		// provisioning a duplicate
		slog.Info("request already approved, skipping", "request", req.RequestID)
		result.Success = true
		result.InstanceURL = metaString(record.Metadata, consts.MetaInstanceURL)
		result.SupabaseProjectID = metaString(record.Metadata, consts.MetaSupabaseProjectID)
		result.VercelProjectID = metaString(record.Metadata, consts.MetaVercelProjectID)
		result.AdminEmail = metaString(record.Metadata, consts.MetaAdminEmail)
		return result
	}
	p.checkpoint(ctx, req.RequestID, map[string]any{consts.MetaStartedAt: time.Now().UTC().Format(time.RFC3339)})

	metadata := record.Metadata

	// step 1: create-or-reuse database project
	result.Steps[consts.StepSupabaseProject] = consts.StepInProgress
	var projectID, projectURL, anonKey, serviceKey string
	dbOutcome := databaseProjectOutcome(metadata)
	if dbOutcome == OutcomeReused {
		projectID = metaString(metadata, consts.MetaSupabaseProjectID)
		projectURL = p.database.ProjectURL(projectID)
		anonKey = metaString(metadata, consts.MetaSupabaseAnonKey)
		serviceKey = metaString(metadata, consts.MetaSupabaseServiceKey)
		slog.Info("reusing database project", "request", req.RequestID, "project", projectID)
	} else {
		project, err := p.database.CreateProject(ctx, req.AgencyName)
		if err != nil {
			result.Steps[consts.StepSupabaseProject] = consts.StepFailed
			return p.fail(ctx, req, result, err)
		}
		projectID = project.ID
		projectURL = p.database.ProjectURL(project.ID)
		anonKey = project.AnonKey
		serviceKey = project.ServiceRoleKey
	}
	result.SupabaseProjectID = projectID
	result.Steps[consts.StepSupabaseProject] = consts.StepCompleted
	p.checkpoint(ctx, req.RequestID, map[string]any{
		consts.MetaSupabaseProjectID:  projectID,
		consts.MetaSupabaseURL:        projectURL,
		consts.MetaSupabaseAnonKey:    anonKey,
		consts.MetaSupabaseServiceKey: serviceKey,
		consts.MetaStep:               checkpointSupabaseReady,
	})

	// step 2: schema, admin user and seed data. A reused project can still
	// be schema-less when the previous run died inside this step, the keys
	// checkpoint alone does not prove the migrations ran. Only the
	// database_configured marker does.
	result.Steps[consts.StepDatabase] = consts.StepInProgress
	if reachedCheckpoint(metadata, checkpointDatabaseConfigured) {
		slog.Info("reusing existing database setup", "request", req.RequestID)
	} else {
		if err := p.migrations.Run(ctx, projectURL, serviceKey); err != nil {
			result.Steps[consts.StepDatabase] = consts.StepFailed
			return p.fail(ctx, req, result, err)
		}
		tempPassword := secrets.GenerateTempPassword()
		if _, err := p.dbSetup.CreateInitialAdminUser(ctx, projectURL, serviceKey, req.OwnerEmail, tempPassword, req.AgencyName+" Admin"); err != nil {
			slog.Warn("could not create initial admin user", "request", req.RequestID, "err", err)
		}
		if err := p.dbSetup.SeedInitialData(ctx, projectURL, serviceKey, req.AgencyName); err != nil {
			slog.Warn("could not seed initial data", "request", req.RequestID, "err", err)
		}
	}
	result.AdminEmail = req.OwnerEmail
	result.Steps[consts.StepDatabase] = consts.StepCompleted
	p.checkpoint(ctx, req.RequestID, map[string]any{
		consts.MetaAdminEmail: req.OwnerEmail,
		consts.MetaStep:       checkpointDatabaseConfigured,
	})

	// step 3: create-or-reuse deployment project
	result.Steps[consts.StepVercelProject] = consts.StepInProgress
	var deployProjectID, deployProjectName, instanceURL string
	deployOutcome := deploymentProjectOutcome(metadata)
	if deployOutcome == OutcomeReused {
		deployProjectID = metaString(metadata, consts.MetaVercelProjectID)
		instanceURL = metaString(metadata, consts.MetaInstanceURL)
		deployProjectName = p.deployments.ProjectName(req.AgencyName)
		slog.Info("reusing deployment project", "request", req.RequestID, "project", deployProjectID)
	} else {
		project, err := p.deployments.CreateProject(ctx, req.AgencyName)
		if err != nil {
			result.Steps[consts.StepVercelProject] = consts.StepFailed
			return p.fail(ctx, req, result, err)
		}
		deployOutcome = OutcomeCreated
		deployProjectID = project.ID
		deployProjectName = project.Name
	}
	result.VercelProjectID = deployProjectID
	result.Steps[consts.StepVercelProject] = consts.StepCompleted
	p.checkpoint(ctx, req.RequestID, map[string]any{
		consts.MetaVercelProjectID: deployProjectID,
		consts.MetaStep:            checkpointVercelReady,
	})

	// step 4: configure and deploy, best-effort. The platform deploys on
	// its own through the git integration, so a failed explicit trigger
	// falls back to the predictable project URL instead of aborting. An
	// env-var failure also falls back, but is persisted separately so the
	// operator can see the tenant is unconfigured.
	result.Steps[consts.StepDeployment] = consts.StepInProgress
	if deployOutcome == OutcomeCreated {
		envConfigured := true
		deployErr := p.deployments.SetEnvironmentVariables(ctx, deployProjectID, dto.DeploymentEnv{
			AgencyName:     req.AgencyName,
			SupabaseURL:    projectURL,
			AnonKey:        anonKey,
			ServiceRoleKey: serviceKey,
		})
		if deployErr != nil {
			envConfigured = false
			slog.Warn("could not configure deployment environment", "request", req.RequestID, "err", deployErr)
		}
		var deployed string
		if envConfigured {
			deployed, deployErr = p.deploy(ctx, deployProjectID)
		}
		if deployErr != nil {
			slog.Warn("deployment not confirmed, using predicted URL", "request", req.RequestID, "err", deployErr)
			instanceURL = fmt.Sprintf("https://%v.vercel.app", deployProjectName)
			result.Steps[consts.StepDeployment] = consts.StepFallback
		} else {
			instanceURL = deployed
			result.Steps[consts.StepDeployment] = consts.StepCompleted
		}
		p.checkpoint(ctx, req.RequestID, map[string]any{
			consts.MetaInstanceURL:   instanceURL,
			consts.MetaEnvConfigured: envConfigured,
			consts.MetaStep:          checkpointDeployed,
		})
	} else {
		result.Steps[consts.StepDeployment] = consts.StepCompleted
		p.checkpoint(ctx, req.RequestID, map[string]any{
			consts.MetaInstanceURL: instanceURL,
			consts.MetaStep:        checkpointDeployed,
		})
	}
	result.InstanceURL = instanceURL

	// step 5: welcome email with a fresh setup token, best-effort. The
	// tenant can still be reached at the instance URL directly.
	result.Steps[consts.StepEmail] = consts.StepInProgress
	setupToken, err := p.tokens.Generate(dto.SetupTokenPayload{
		AgencyID:          req.RequestID,
		AdminEmail:        req.OwnerEmail,
		SupabaseProjectID: projectID,
		AnonKey:           anonKey,
		ServiceRoleKey:    serviceKey,
		VercelURL:         instanceURL,
	})
	if err == nil {
		err = p.mailer.SendWelcome(ctx, dto.WelcomeMail{
			AgencyName:  req.AgencyName,
			AdminEmail:  req.OwnerEmail,
			InstanceURL: instanceURL,
			SetupToken:  setupToken,
		})
	}
	if err != nil {
		slog.Warn("could not send welcome email", "request", req.RequestID, "err", err)
		result.Steps[consts.StepEmail] = consts.StepSkipped
	} else {
		result.Steps[consts.StepEmail] = consts.StepCompleted
	}

	result.Success = true
	if err := p.store.Update(ctx, req.RequestID, consts.StatusApproved, map[string]any{
		consts.MetaInstanceURL:        instanceURL,
		consts.MetaSupabaseProjectID:  projectID,
		consts.MetaSupabaseAnonKey:    anonKey,
		consts.MetaSupabaseServiceKey: serviceKey,
		consts.MetaVercelProjectID:    deployProjectID,
		consts.MetaCompletedAt:        time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		slog.Error("could not persist approved status", "request", req.RequestID, "err", err)
	}
	slog.Info("provisioning complete", "request", req.RequestID, "instance", instanceURL)

	p.mailer.SendProvisioningStatus(ctx, dto.ProvisioningStatusMail{
		AdminEmail:  req.OwnerEmail,
		AgencyName:  req.AgencyName,
		Succeeded:   true,
		InstanceURL: instanceURL,
	})
	return result
}

// deploy triggers an explicit deployment and returns the deployed URL
// once the platform reports READY.
func (p *ProvisionAgency) deploy(ctx context.Context, projectID string) (string, error) {
	deployment, err := p.deployments.TriggerDeployment(ctx, projectID, "main")
	if err != nil {
		return "", err
	}
	deployment, err = p.deployments.WaitForDeployment(ctx, deployment.ID)
	if err != nil {
		return "", err
	}
	return "https://" + deployment.URL, nil
}

// checkpoint persists mid-run progress. A failed write is logged but does
// not abort the run, at worst a later retry redoes one step.
func (p *ProvisionAgency) checkpoint(ctx context.Context, requestID string, metadata map[string]any) {
	if err := p.store.Update(ctx, requestID, consts.StatusProvisioning, metadata); err != nil {
		slog.Error("could not checkpoint provisioning progress", "request", requestID, "err", err)
	}
}

// fail records the terminal failure with a per-step snapshot, notifies
// the requesting admin and returns the structured failure. Errors never
// propagate past the orchestrator boundary.
func (p *ProvisionAgency) fail(ctx context.Context, req dto.ProvisioningRequest, result dto.ProvisioningResult, cause error) dto.ProvisioningResult {
	slog.Error("provisioning failed", "request", req.RequestID, "agency", req.AgencyName, "err", cause)
	result.Success = false
	result.Error = cause.Error()

	steps := make(map[string]string, len(result.Steps))
	for name, status := range result.Steps {
		steps[name] = string(status)
	}
	if err := p.store.Update(ctx, req.RequestID, consts.StatusFailed, map[string]any{
		consts.MetaError:    cause.Error(),
		consts.MetaFailedAt: time.Now().UTC().Format(time.RFC3339),
		consts.MetaSteps:    steps,
	}); err != nil {
		slog.Error("could not persist failed status", "request", req.RequestID, "err", err)
	}

	p.mailer.SendProvisioningStatus(ctx, dto.ProvisioningStatusMail{
		AdminEmail:   req.OwnerEmail,
		AgencyName:   req.AgencyName,
		Succeeded:    false,
		ErrorMessage: cause.Error(),
	})
	return result
}
