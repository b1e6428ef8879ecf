package query

import (
	"context"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/dto"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/interfaces"
)

type GetStatus struct {
	store interfaces.StatusStore
}

func NewGetStatus(store interfaces.StatusStore) *GetStatus {
	return &GetStatus{store: store}
}

func (g *GetStatus) Query(ctx context.Context, requestID string) (*dto.StatusRecord, error) {
	return g.store.Read(ctx, requestID)
}
