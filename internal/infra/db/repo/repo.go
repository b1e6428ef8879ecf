package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/consts"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/dto"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/interfaces"
	"github.com/Adwaitfound/tlp-provisioner/internal/infra/db"
	dbs "github.com/Adwaitfound/tlp-provisioner/pkg/db"
	"github.com/google/uuid"
)

// OnboardingRepo is the durable status store for provisioning requests.
// Metadata updates use jsonb merge, keys written by earlier steps are
// never erased, which is what resumed runs rely on.
type OnboardingRepo struct {
	uowFactory *dbs.UOWFactory
}

var _ interfaces.StatusStore = (*OnboardingRepo)(nil)

func NewOnboardingRepo(uowFactory *dbs.UOWFactory) *OnboardingRepo {
	return &OnboardingRepo{uowFactory: uowFactory}
}

func (r *OnboardingRepo) Insert(ctx context.Context, request db.OnboardingRequest) error {
	uow := r.uowFactory.GetUoW()
	tx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO provisioner.onboarding_requests(id, agency_name, owner_email, owner_name, status, metadata, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		request.ID, request.AgencyName, request.OwnerEmail, request.OwnerName, request.Status,
		request.Metadata, request.CreatedAt, request.UpdatedAt)
	if err != nil {
		return fmt.Errorf("err inserting onboarding request, %v", err)
	}
	return uow.Commit(ctx)
}

func (r *OnboardingRepo) Read(ctx context.Context, requestID string) (*dto.StatusRecord, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, fmt.Errorf("invalid request id %v: %w", requestID, err)
	}

	uow := r.uowFactory.GetUoW()
	tx, err := uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback(ctx)

	var request db.OnboardingRequest
	query := "SELECT id, agency_name, owner_email, owner_name, status, metadata FROM provisioner.onboarding_requests WHERE id = $1"
	err = tx.QueryRow(ctx, query, id).Scan(&request.ID, &request.AgencyName, &request.OwnerEmail,
		&request.OwnerName, &request.Status, &request.Metadata)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	metadata := map[string]any{}
	if len(request.Metadata) > 0 {
		if err := json.Unmarshal(request.Metadata, &metadata); err != nil {
			return nil, fmt.Errorf("err decoding metadata of %v, %v", requestID, err)
		}
	}
	return &dto.StatusRecord{
		RequestID:  request.ID.String(),
		AgencyName: request.AgencyName,
		OwnerEmail: request.OwnerEmail,
		OwnerName:  request.OwnerName,
		Status:     consts.RequestStatus(request.Status),
		Metadata:   metadata,
	}, nil
}

// Update merges the given metadata keys into the stored jsonb map.
func (r *OnboardingRepo) Update(ctx context.Context, requestID string, status consts.RequestStatus, metadata map[string]any) error {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid request id %v: %w", requestID, err)
	}
	payload, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("err marshalling metadata, %v", err)
	}

	uow := r.uowFactory.GetUoW()
	tx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback(ctx)

	_, err = tx.Exec(ctx, `UPDATE provisioner.onboarding_requests
			SET status = $2, metadata = metadata || $3, updated_at = $4 WHERE id = $1`,
		id, string(status), payload, time.Now())
	if err != nil {
		return fmt.Errorf("err updating onboarding request %v, %v", requestID, err)
	}
	return uow.Commit(ctx)
}

// StartRun flips the record to provisioning unless it is already
// approved. The compare-and-swap keeps a duplicate invocation of an
// approved request from re-running the workflow, concurrent duplicates
// of a pending request still race on later metadata writes.
func (r *OnboardingRepo) StartRun(ctx context.Context, requestID string) (bool, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return false, fmt.Errorf("invalid request id %v: %w", requestID, err)
	}

	uow := r.uowFactory.GetUoW()
	tx, err := uow.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer uow.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE provisioner.onboarding_requests
			SET status = $2, updated_at = $3 WHERE id = $1 AND status != $4`,
		id, string(consts.StatusProvisioning), time.Now(), string(consts.StatusApproved))
	if err != nil {
		return false, fmt.Errorf("err starting run for %v, %v", requestID, err)
	}
	if err := uow.Commit(ctx); err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
