package token

import (
	"errors"
	"time"

	"github.com/Adwaitfound/tlp-provisioner/internal/application/dto"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/errs"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/interfaces"
	"github.com/golang-jwt/jwt/v5"
)

const setupTokenType = "agency-setup"

// Codec issues and verifies the signed credential bundle a new tenant
// uses to claim their instance. Expiry is the only invalidation
// mechanism, single use has to be enforced by the consumer.
type Codec struct {
	cfg *Config
	ttl time.Duration
	now func() time.Time
}

var _ interfaces.SetupTokenCodec = (*Codec)(nil)

type setupClaims struct {
	AgencyID          string `json:"agencyId"`
	AdminEmail        string `json:"adminEmail"`
	SupabaseProjectID string `json:"supabaseProjectId"`
	AnonKey           string `json:"anonKey"`
	ServiceRoleKey    string `json:"serviceRoleKey"`
	VercelURL         string `json:"vercelUrl"`
	Type              string `json:"type"`
	jwt.RegisteredClaims
}

func NewCodec(cfg *Config) *Codec {
	return &Codec{
		cfg: cfg,
		ttl: 24 * time.Hour,
		now: time.Now,
	}
}

func (c *Codec) Generate(payload dto.SetupTokenPayload) (string, error) {
	now := c.now()
	claims := setupClaims{
		AgencyID:          payload.AgencyID,
		AdminEmail:        payload.AdminEmail,
		SupabaseProjectID: payload.SupabaseProjectID,
		AnonKey:           payload.AnonKey,
		ServiceRoleKey:    payload.ServiceRoleKey,
		VercelURL:         payload.VercelURL,
		Type:              setupTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.cfg.SigningSecret))
}

func (c *Codec) Verify(token string) (*dto.SetupTokenPayload, error) {
	var claims setupClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(c.cfg.SigningSecret), nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		return nil, errs.InvalidTokenError{Reason: err.Error()}
	}
	if !parsed.Valid {
		return nil, errs.InvalidTokenError{Reason: "token is not valid"}
	}
	if claims.Type != setupTokenType {
		return nil, errs.InvalidTokenError{Reason: "unexpected token type " + claims.Type}
	}
	return &dto.SetupTokenPayload{
		AgencyID:          claims.AgencyID,
		AdminEmail:        claims.AdminEmail,
		SupabaseProjectID: claims.SupabaseProjectID,
		AnonKey:           claims.AnonKey,
		ServiceRoleKey:    claims.ServiceRoleKey,
		VercelURL:         claims.VercelURL,
	}, nil
}
