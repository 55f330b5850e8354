package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are issued by the identity provider. The subject is the user
// id and app_role is "user" or "admin".
type Claims struct {
	AppRole string `json:"app_role"`
	jwt.RegisteredClaims
}

type actorKey struct{}

func withActor(ctx context.Context, a domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the zero Actor for anonymous requests.
func ActorFromContext(ctx context.Context) domain.Actor {
	a, _ := ctx.Value(actorKey{}).(domain.Actor)
	return a
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) Parse(raw string) (domain.Actor, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return domain.Actor{}, errors.Wrap(err, "parse token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Actor{}, errors.Wrap(err, "token subject")
	}
	role := domain.RoleUser
	if claims.AppRole == string(domain.RoleAdmin) {
		role = domain.RoleAdmin
	}
	return domain.Actor{ID: id, Role: role}, nil
}

// Issue signs a token for actor. Used by tests and local tooling.
func (a *Authenticator) Issue(actor domain.Actor, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = actor.ID.String()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{AppRole: string(actor.Role), RegisteredClaims: claims})
	return token.SignedString(a.secret)
}

// JWTMiddleware attaches the caller's Actor. Requests without a bearer
// token continue anonymously; a bad token is rejected.
func JWTMiddleware(auth *Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid authorization header"})
				return
			}
			actor, err := auth.Parse(strings.TrimSpace(raw))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token"})
				return
			}
			next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
		})
	}
}

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActorFromContext(r.Context()).ID == uuid.Nil {
			writeError(w, r, domain.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActorFromContext(r.Context()).IsAdmin() {
			writeError(w, r, domain.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}
