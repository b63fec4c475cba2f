package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/handmade-gallery/storefront/internal/core/domain"
	"github.com/handmade-gallery/storefront/internal/core/ports"
)

const (
	localIssuer  = "storefront-local"
	localAdminID = "local-admin"
)

// localClaims is the payload of tokens minted for the offline admin.
type localClaims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// LocalAuthority signs in the offline admin against a bcrypt hash and mints
// HS256 tokens it can later verify without the backend.
type LocalAuthority struct {
	username     string
	passwordHash string
	secret       []byte
	tokenTTL     time.Duration
	now          func() time.Time
}

func NewLocalAuthority(username, passwordHash, secret string, tokenTTL time.Duration) *LocalAuthority {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &LocalAuthority{
		username:     username,
		passwordHash: passwordHash,
		secret:       []byte(secret),
		tokenTTL:     tokenTTL,
		now:          time.Now,
	}
}

// SignIn checks the credentials and returns a fresh admin credential.
func (a *LocalAuthority) SignIn(username, password string) (*domain.Credential, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !strings.EqualFold(username, a.username) {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	user := a.profile()
	token, err := a.generateToken(user)
	if err != nil {
		return nil, err
	}
	return &domain.Credential{Token: token, User: user}, nil
}

// Issued reports whether token claims to come from this authority. It does not
// check the signature.
func (a *LocalAuthority) Issued(token string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.Issuer == localIssuer
}

// Verify checks signature, issuer and expiry of a locally minted token.
func (a *LocalAuthority) Verify(_ context.Context, token string) (*domain.UserProfile, error) {
	var claims localClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("verify local token: %w", domain.ErrUnauthorized)
	}
	if claims.Subject != localAdminID || claims.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("verify local token: %w", domain.ErrUnauthorized)
	}
	user := a.profile()
	return &user, nil
}

func (a *LocalAuthority) profile() domain.UserProfile {
	return domain.UserProfile{
		ID:        localAdminID,
		FirstName: "Admin",
		Email:     a.username,
		Role:      domain.RoleAdmin,
	}
}

func (a *LocalAuthority) generateToken(user domain.UserProfile) (string, error) {
	now := a.now()
	claims := localClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    localIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.secret)
}

// tokenExpired reports whether token is a JWT whose exp has passed. Opaque
// tokens are never considered expired here.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !claims.ExpiresAt.After(now)
}

// tokenVerifier sends locally minted tokens to the local authority and every
// other token to the backend profile endpoint.
type tokenVerifier struct {
	local  *LocalAuthority
	remote ports.AuthAPI
}

func NewTokenVerifier(local *LocalAuthority, remote ports.AuthAPI) ports.TokenVerifier {
	return &tokenVerifier{local: local, remote: remote}
}

func (v *tokenVerifier) Verify(ctx context.Context, token string) (*domain.UserProfile, error) {
	if v.local != nil && v.local.Issued(token) {
		return v.local.Verify(ctx, token)
	}
	return v.remote.Profile(ctx, token)
}
