package lib

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"

	"quickstay/src/types"
)

var ErrInvalidToken = errors.New("invalid identity token")

type Identity struct {
	Subject  string
	Email    string
	Username string
	Image    string
}

// IdentityVerifier resolves a bearer token issued by the identity provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

type ClerkVerifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	jwks    *keyfunc.JWKS
}

// NewClerkVerifier fetches the instance JWKS and keeps it refreshed in the background.
func NewClerkVerifier(jwksURL, issuer string, logger *zap.Logger) (*ClerkVerifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("jwks refresh failed", zap.Error(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("loading jwks from %s: %w", jwksURL, err)
	}
	v := NewClerkVerifierWithKeyfunc(jwks.Keyfunc, issuer, "RS256")
	v.jwks = jwks
	return v, nil
}

func NewClerkVerifierWithKeyfunc(kf jwt.Keyfunc, issuer string, methods ...string) *ClerkVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithLeeway(5 * time.Second),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &ClerkVerifier{keyfunc: kf, parser: jwt.NewParser(opts...)}
}

func (v *ClerkVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	claims := &types.Claims{}
	tkn, err := v.parser.ParseWithClaims(token, claims, v.keyfunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &Identity{
		Subject:  claims.Subject,
		Email:    claims.Email,
		Username: claims.Username,
		Image:    claims.Image,
	}, nil
}

func (v *ClerkVerifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// ClerkEvent is a user lifecycle webhook delivered through Svix.
type ClerkEvent struct {
	Type string        `json:"type"`
	Data ClerkUserData `json:"data"`
}

type ClerkUserData struct {
	ID             string `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Username       string `json:"username"`
	ImageURL       string `json:"image_url"`
	EmailAddresses []ClerkEmailAddress `json:"email_addresses"`
}

type ClerkEmailAddress struct {
	EmailAddress string `json:"email_address"`
}

func (d ClerkUserData) PrimaryEmail() string {
	if len(d.EmailAddresses) == 0 {
		return ""
	}
	return d.EmailAddresses[0].EmailAddress
}

func (d ClerkUserData) DisplayName() string {
	name := strings.TrimSpace(d.FirstName + " " + d.LastName)
	if name == "" {
		return d.Username
	}
	return name
}

// SvixVerifier checks identity provider webhooks signed with a whsec_ secret.
type SvixVerifier struct {
	wh *svix.Webhook
}

func NewSvixVerifier(secret string) (*SvixVerifier, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("decoding webhook secret: %w", err)
	}
	return &SvixVerifier{wh: wh}, nil
}

// Verify checks the svix-id, svix-timestamp and svix-signature headers
// against payload. Timestamps more than five minutes off are rejected.
func (v *SvixVerifier) Verify(payload []byte, headers http.Header) error {
	if err := v.wh.Verify(payload, headers); err != nil {
		return fmt.Errorf("%w: %s", ErrSignatureInvalid, err.Error())
	}
	return nil
}

// Sign produces the svix-signature header value for payload.
func (v *SvixVerifier) Sign(msgID string, ts time.Time, payload []byte) (string, error) {
	return v.wh.Sign(msgID, ts, payload)
}
