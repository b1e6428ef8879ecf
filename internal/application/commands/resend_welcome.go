package commands

import (
	"context"
	"fmt"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/consts"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/dto"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/interfaces"
)

// ResendWelcome re-issues a setup token for an approved request and sends
// the welcome email again. Sending twice sends two emails, there is no
// dedup at the mail layer.
type ResendWelcome struct {
	store  interfaces.StatusStore
	tokens interfaces.SetupTokenCodec
	mailer interfaces.Mailer
}

func NewResendWelcome(store interfaces.StatusStore, tokens interfaces.SetupTokenCodec, mailer interfaces.Mailer) *ResendWelcome {
	return &ResendWelcome{store: store, tokens: tokens, mailer: mailer}
}

func (r *ResendWelcome) Execute(ctx context.Context, requestID string) error {
	record, err := r.store.Read(ctx, requestID)
	if err != nil {
		return err
	}
	if record.Status != consts.StatusApproved {
		return fmt.Errorf("request %v is %v, welcome email can only be resent for approved requests", requestID, record.Status)
	}

	token, err := r.tokens.Generate(dto.SetupTokenPayload{
		AgencyID:          record.RequestID,
		AdminEmail:        record.OwnerEmail,
		SupabaseProjectID: metaString(record.Metadata, consts.MetaSupabaseProjectID),
		AnonKey:           metaString(record.Metadata, consts.MetaSupabaseAnonKey),
		ServiceRoleKey:    metaString(record.Metadata, consts.MetaSupabaseServiceKey),
		VercelURL:         metaString(record.Metadata, consts.MetaInstanceURL),
	})
	if err != nil {
		return err
	}
	return r.mailer.SendWelcome(ctx, dto.WelcomeMail{
		AgencyName:  record.AgencyName,
		AdminEmail:  record.OwnerEmail,
		InstanceURL: metaString(record.Metadata, consts.MetaInstanceURL),
		SetupToken:  token,
	})
}
