package auth

import (
	"net/http"
	"strings"

	"github.com/fransouzacb/fenafar-plataforma/pkg/jwtutil"
)

const (
	// AccessTokenCookie is the cookie carrying the access token.
	AccessTokenCookie = "access_token"
	// AccessTokenHeader is the custom header fallback for clients that
	// cannot set Authorization.
	AccessTokenHeader = "X-Access-Token"
)

// Resolver maps a raw request to a Principal using the token codec.
type Resolver struct {
	codec    *jwtutil.Codec
	defaults Defaults
}

// NewResolver creates a resolver with the given codec and claim
// fallback policy.
func NewResolver(codec *jwtutil.Codec, defaults Defaults) *Resolver {
	return &Resolver{codec: codec, defaults: defaults}
}

// ExtractToken returns the access token from the request, checking the
// cookie, the Authorization header and the custom header in that
// order. An empty string means no token was presented.
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}

	return r.Header.Get(AccessTokenHeader)
}

// Resolve returns the principal for the request, or nil when no valid
// token is present. A missing token and an undecodable or expired one
// are deliberately indistinguishable: both mean unauthenticated.
func (r *Resolver) Resolve(req *http.Request) *Principal {
	token := ExtractToken(req)
	if token == "" {
		return nil
	}

	claims, err := r.codec.Decode(token)
	if err != nil {
		return nil
	}

	return r.principalFromClaims(claims)
}

func (r *Resolver) principalFromClaims(claims *jwtutil.UserClaims) *Principal {
	role := claims.UserMetadata.Role
	if role == "" {
		role = r.defaults.Role
	}

	active := r.defaults.Active
	if claims.UserMetadata.Active != nil {
		active = *claims.UserMetadata.Active
	}

	return &Principal{
		ID:     claims.UserID(),
		Email:  claims.Email,
		Name:   claims.UserMetadata.Name,
		Role:   role,
		Active: active,
	}
}
