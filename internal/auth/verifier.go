// Package auth verifies bearer tokens issued by the identity provider and
// wraps the Cognito flows used by the API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kisansarathi/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// KeySetSource resolves the signing keys published at a JWKS URL.
// *jwk.Cache satisfies it.
type KeySetSource interface {
	Lookup(ctx context.Context, u string) (jwk.Set, error)
}

type Verifier struct {
	keys     KeySetSource
	jwksURL  string
	issuer   string
	clientID string
}

// NewVerifier only accepts tokens minted for clientID by the user pool at
// issuerURL.
func NewVerifier(keys KeySetSource, issuerURL, clientID string) *Verifier {
	issuerURL = strings.TrimRight(issuerURL, "/")
	return &Verifier{
		keys:     keys,
		jwksURL:  JWKSURL(issuerURL),
		issuer:   issuerURL,
		clientID: clientID,
	}
}

func JWKSURL(issuerURL string) string {
	return fmt.Sprintf("%s/.well-known/jwks.json", strings.TrimRight(issuerURL, "/"))
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

// Verify checks a bearer access token's signature against the JWKS and
// returns the identity it asserts. ID tokens and tokens issued to another
// app client are rejected. Every rejection wraps types.ErrUnauthorized.
func (v *Verifier) Verify(ctx context.Context, token string) (*types.Identity, error) {
	parsed, err := v.parse(ctx, token,
		jwt.WithClaimValue("token_use", "access"),
		jwt.WithClaimValue("client_id", v.clientID),
	)
	if err != nil {
		return nil, err
	}
	return identityFromToken(parsed)
}

// VerifyIDToken is Verify for the ID token returned at login, whose
// audience is the app client.
func (v *Verifier) VerifyIDToken(ctx context.Context, token string) (*types.Identity, error) {
	parsed, err := v.parse(ctx, token,
		jwt.WithClaimValue("token_use", "id"),
		jwt.WithAudience(v.clientID),
	)
	if err != nil {
		return nil, err
	}
	return identityFromToken(parsed)
}

func (v *Verifier) parse(ctx context.Context, token string, checks ...jwt.ValidateOption) (jwt.Token, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", types.ErrUnauthorized)
	}
	if v.clientID == "" {
		return nil, fmt.Errorf("%w: no app client configured", types.ErrUnauthorized)
	}

	set, err := v.keys.Lookup(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	options := []jwt.ParseOption{
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	}
	if v.issuer != "" {
		options = append(options, jwt.WithIssuer(v.issuer))
	}
	for _, check := range checks {
		options = append(options, check)
	}

	parsed, err := jwt.Parse([]byte(token), options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrUnauthorized, err)
	}
	return parsed, nil
}

func identityFromToken(parsed jwt.Token) (*types.Identity, error) {
	userID, ok := parsed.Subject()
	if !ok || userID == "" {
		return nil, fmt.Errorf("%w: no subject claim", types.ErrUnauthorized)
	}

	identity := &types.Identity{UserID: userID}

	// email only appears on ID tokens
	var email string
	if err := parsed.Get("email", &email); err == nil {
		identity.Email = email
	}

	var groups []any
	if err := parsed.Get("cognito:groups", &groups); err == nil {
		for _, g := range groups {
			if s, ok := g.(string); ok {
				identity.Groups = append(identity.Groups, s)
			}
		}
	}

	return identity, nil
}

// IsUnauthorized reports whether err came from a rejected token rather than
// an infrastructure failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, types.ErrUnauthorized)
}
