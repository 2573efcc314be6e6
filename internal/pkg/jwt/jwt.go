package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Verifier wraps the jwtauth token authority. Tokens are issued by the
// identity service; this backend only verifies them and reads claims.
type Verifier struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewVerifier(secretKey string) *Verifier {
	return &Verifier{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (v *Verifier) JWTAuth() *jwtauth.JWTAuth {
	return v.tokenAuth
}

// ClaimsFromContext extracts the tenant and user ids every authenticated
// request carries. tenant_id is mandatory; user_id may be empty for
// service-to-service tokens.
func ClaimsFromContext(ctx context.Context) (tenantID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	tenantID, ok := claims["tenant_id"].(string)
	if !ok || tenantID == "" {
		return "", "", fmt.Errorf("tenant_id claim is missing or invalid")
	}

	userID, _ = claims["user_id"].(string)

	return tenantID, userID, nil
}
