package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/consts"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/dto"
	"github.com/Adwaitfound/tlp-provisioner/internal/infra/db"
	"github.com/Adwaitfound/tlp-provisioner/internal/infra/db/repo"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RequestOnboarding records a new agency-onboarding request in pending
// state. Provisioning itself is a separate, explicitly triggered call.
type RequestOnboarding struct {
	repo     *repo.OnboardingRepo
	validate *validator.Validate
}

func NewRequestOnboarding(onboardingRepo *repo.OnboardingRepo) *RequestOnboarding {
	return &RequestOnboarding{
		repo:     onboardingRepo,
		validate: validator.New(),
	}
}

func (r *RequestOnboarding) Execute(ctx context.Context, req dto.ProvisioningRequest) (string, error) {
	if err := r.validate.Struct(req); err != nil {
		return "", fmt.Errorf("invalid onboarding request: %w", err)
	}

	id := uuid.New()
	now := time.Now()
	err := r.repo.Insert(ctx, db.OnboardingRequest{
		ID:         id,
		AgencyName: req.AgencyName,
		OwnerEmail: req.OwnerEmail,
		OwnerName:  req.OwnerName,
		Status:     string(consts.StatusPending),
		Metadata:   []byte("{}"),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
