package application

import (
	"github.com/Adwaitfound/tlp-provisioner/internal/application/commands"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/query"
)

type Collection struct {
	*commands.RequestOnboarding
	*commands.ProvisionAgency
	*commands.ResendWelcome
	*commands.ClaimInstance
	*commands.NotifyComment
	*query.GetStatus
}
