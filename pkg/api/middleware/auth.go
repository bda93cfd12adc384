package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/filez-project/filez/internal/logger"
	"github.com/filez-project/filez/pkg/access"
	"github.com/filez-project/filez/pkg/models"
)

type principalKey struct{}

// Principal is the authenticated caller attached to the request context by
// Auth, read by handlers and by the access evaluator.
type Principal struct {
	UserID models.UserID
	Groups []models.UserGroupID
	Type   models.UserType
}

// PrincipalFromContext retrieves the Principal set by Auth. Callers must
// run behind Auth; a missing Principal is a programming error, not a
// request-time condition.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// KeyAccessLookup resolves the user ID carried in a KeyAccess bearer to
// that user's KeyAccess row (with the stored secret hash), used for the
// long-lived opaque-secret authentication path (§4.3).
type KeyAccessLookup interface {
	LookupByUserID(ctx context.Context, userID models.UserID) (models.KeyAccess, error)
}

// Auth builds the bearer-token authentication middleware: a JWT is
// verified locally against jwtSecret (the fast path, avoiding a DB round
// trip on every request); anything else is read as a KeyAccess bearer of
// the form "<user-id>:<secret>", whose secret is checked in constant time
// against the stored hash.
func Auth(jwtSecret []byte, keyLookup KeyAccessLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, r)
				return
			}

			principal, err := authenticate(r.Context(), token, jwtSecret, keyLookup)
			if err != nil {
				unauthorized(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, principal)
			if lc := logger.FromContext(ctx); lc != nil {
				ctx = logger.WithContext(ctx, lc.WithSubject(principal.UserID.String(), lc.AppID))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimPrefix(h, prefix)
}

func authenticate(ctx context.Context, token string, jwtSecret []byte, keyLookup KeyAccessLookup) (Principal, error) {
	if claims, err := parseJWT(token, jwtSecret); err == nil {
		return Principal{
			UserID: claims.UserID,
			Groups: claims.Groups,
			Type:   models.UserTypeRegular,
		}, nil
	}

	userPart, secret, ok := strings.Cut(token, ":")
	if !ok {
		return Principal{}, errInvalidSecret
	}
	userID, err := models.ParseID(userPart)
	if err != nil {
		return Principal{}, err
	}
	ka, err := keyLookup.LookupByUserID(ctx, models.UserID(userID))
	if err != nil {
		return Principal{}, err
	}
	if !access.VerifyKeySecret(secret, ka.SecretHash) {
		return Principal{}, errInvalidSecret
	}
	return Principal{UserID: models.UserID(userID), Type: models.UserTypeKeyAccess}, nil
}

type jwtClaims struct {
	UserID models.UserID
	Groups []models.UserGroupID
}

func parseJWT(token string, secret []byte) (jwtClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return jwtClaims{}, err
	}
	sub, _ := claims["sub"].(string)
	userID, err := models.ParseID(sub)
	if err != nil {
		return jwtClaims{}, err
	}
	var groups []models.UserGroupID
	if raw, ok := claims["groups"].([]any); ok {
		for _, g := range raw {
			if s, ok := g.(string); ok {
				if gid, err := models.ParseID(s); err == nil {
					groups = append(groups, models.UserGroupID(gid))
				}
			}
		}
	}
	return jwtClaims{UserID: models.UserID(userID), Groups: groups}, nil
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	http.Error(w, `{"error":{"kind":"Unauthorized","message":"missing or invalid bearer token"}}`, http.StatusUnauthorized)
}

var errInvalidSecret = jwt.ErrSignatureInvalid
