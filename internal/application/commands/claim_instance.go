package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/interfaces"
)

// ClaimInstance lets a new tenant take ownership of their provisioned
// instance: the setup token proves who they are, the chosen password
// becomes their admin credential. Expiry and signature are the only
// checks at this layer, the token is not tracked as single-use here.
type ClaimInstance struct {
	tokens  interfaces.SetupTokenCodec
	dbSetup interfaces.DatabaseSetup
}

type ClaimedInstance struct {
	AgencyID    string `json:"agencyId"`
	AdminEmail  string `json:"adminEmail"`
	InstanceURL string `json:"instanceUrl"`
	SupabaseURL string `json:"supabaseUrl"`
	AnonKey     string `json:"supabaseAnonKey"`
}

func NewClaimInstance(tokens interfaces.SetupTokenCodec, dbSetup interfaces.DatabaseSetup) *ClaimInstance {
	return &ClaimInstance{tokens: tokens, dbSetup: dbSetup}
}

func (c *ClaimInstance) Execute(ctx context.Context, token, password, name string) (*ClaimedInstance, error) {
	payload, err := c.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if payload.ServiceRoleKey == "" {
		return nil, fmt.Errorf("setup token carries no service role key")
	}

	supabaseURL := fmt.Sprintf("https://%v.supabase.co", payload.SupabaseProjectID)
	if _, err := c.dbSetup.CreateInitialAdminUser(ctx, supabaseURL, payload.ServiceRoleKey, payload.AdminEmail, password, name); err != nil {
		// the user may already exist from the provisioning run, the
		// tenant can still sign in with the password they just chose
		slog.Warn("admin user creation on claim", "email", payload.AdminEmail, "err", err)
	}

	slog.Info("instance claimed", "agency", payload.AgencyID, "email", payload.AdminEmail)
	return &ClaimedInstance{
		AgencyID:    payload.AgencyID,
		AdminEmail:  payload.AdminEmail,
		InstanceURL: payload.VercelURL,
		SupabaseURL: supabaseURL,
		AnonKey:     payload.AnonKey,
	}, nil
}
