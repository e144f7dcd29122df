package api

import (
	"crypto/sha256"
	"errors"
	"net/http"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/We-are-incomplete/war-record-only-read/internal/api/response"
)

// passwordHeader carries the shared password for clients that do not use
// Basic auth.
const passwordHeader = "X-App-Password"

var errUnauthorized = errors.New("a valid password is required")

// HashPassword returns the bcrypt hash stored in server.password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// passwordAuth gates requests behind one shared password, given as the
// Basic auth password (any user name) or in X-App-Password.
type passwordAuth struct {
	hash []byte

	// verified holds digests of passwords that already matched, so bcrypt
	// runs once per distinct password rather than once per request.
	verified sync.Map
}

func newPasswordAuth(hash string) *passwordAuth {
	return &passwordAuth{hash: []byte(hash)}
}

func (a *passwordAuth) check(password string) bool {
	if password == "" {
		return false
	}
	digest := sha256.Sum256([]byte(password))
	if _, ok := a.verified.Load(digest); ok {
		return true
	}
	if bcrypt.CompareHashAndPassword(a.hash, []byte(password)) != nil {
		return false
	}
	a.verified.Store(digest, struct{}{})
	return true
}

func (a *passwordAuth) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		password := r.Header.Get(passwordHeader)
		if password == "" {
			if _, p, ok := r.BasicAuth(); ok {
				password = p
			}
		}
		if !a.check(password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="war-record"`)
			response.Unauthorized(w, errUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
