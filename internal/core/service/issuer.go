package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/revgate-io/revgate/internal/core/domain"
	"github.com/revgate-io/revgate/internal/telemetry/metric"
)

// Default lifetimes applied when an issue request leaves them unset.
// Both sit below the type's hard cap.
const (
	DefaultAccessLifetime  = 30 * time.Minute
	DefaultRefreshLifetime = 30 * 24 * time.Hour
)

// Claims are the credential claims RevGate embeds and consumes.
type Claims struct {
	jwt.RegisteredClaims
	OwnerName string           `json:"owner_name"`
	TokenType domain.TokenType `json:"token_type"`
	Roles     []string         `json:"roles,omitempty"`
}

// Issuer signs credentials and reconstructs Token entities from them.
//
// The revocation core consumes only the token identity claims (jti,
// iat, exp) plus owner identity; the signing mechanism stays inside
// this type.
type Issuer struct {
	secret  []byte
	issuer  string
	metrics *metric.Metrics
}

// NewIssuer creates an issuer signing with the given HMAC secret.
func NewIssuer(secret []byte, issuerName string, metrics *metric.Metrics) (*Issuer, error) {
	if len(secret) < 32 {
		return nil, domain.ErrInvalidArgument.WithDetails("signing secret must be at least 32 bytes")
	}
	if issuerName == "" {
		issuerName = "revgate"
	}
	return &Issuer{
		secret:  secret,
		issuer:  issuerName,
		metrics: metrics,
	}, nil
}

// IssueTokenRequest contains parameters for credential issuance.
type IssueTokenRequest struct {
	OwnerID   string
	OwnerName string
	Type      domain.TokenType
	// Lifetime defaults per type and must respect the type's cap.
	Lifetime  time.Duration
	Roles     []string
	ClientIP  string
	UserAgent string
}

// IssueTokenResponse contains the issued credential and its entity.
type IssueTokenResponse struct {
	Credential string
	Token      *domain.Token
}

// Issue creates a Token entity and signs a credential for it.
func (i *Issuer) Issue(req *IssueTokenRequest) (*IssueTokenResponse, error) {
	// 1. Validate input
	if req == nil {
		return nil, domain.ErrMissingArgument.WithDetails("request is required")
	}

	typ := req.Type
	if typ == "" {
		typ = domain.TokenTypeAccess
	}

	lifetime := req.Lifetime
	if lifetime == 0 {
		switch typ {
		case domain.TokenTypeRefresh:
			lifetime = DefaultRefreshLifetime
		default:
			lifetime = DefaultAccessLifetime
		}
	}

	// 2. Create the entity; the factory enforces identity fields,
	// future expiry, and the type lifetime cap
	now := time.Now()
	token, err := domain.NewToken(req.OwnerID, req.OwnerName, now.Add(lifetime), typ, req.ClientIP, req.UserAgent)
	if err != nil {
		return nil, err
	}

	// 3. Sign the credential
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        token.ID,
			Subject:   token.OwnerID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(token.IssuedAtTime()),
			ExpiresAt: jwt.NewNumericDate(token.ExpiresAtTime()),
		},
		OwnerName: token.OwnerName,
		TokenType: token.Type,
		Roles:     req.Roles,
	}

	credential, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}

	if i.metrics != nil {
		i.metrics.TokensIssuedTotal.WithLabelValues(string(token.Type)).Inc()
	}

	return &IssueTokenResponse{
		Credential: credential,
		Token:      token,
	}, nil
}

// Parse verifies a credential and reconstructs its Token entity.
//
// Expired credentials return ErrCredentialExpired along with the
// reconstructed token, so callers that need the identity of an
// expired credential (the revoke path's error messages) still get it.
func (i *Issuer) Parse(credential string) (*domain.Token, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, domain.ErrMissingArgument.WithDetails("credential is required")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(credential, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrCredentialInvalid.WithDetails("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithIssuer(i.issuer))

	expired := false
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrCredentialInvalid.WithCause(err)
		}
		// Signature verified, only the exp claim failed.
		expired = true
	}

	token, rerr := i.reconstruct(claims)
	if rerr != nil {
		return nil, rerr
	}
	if expired {
		return token, domain.ErrCredentialExpired
	}
	return token, nil
}

// reconstruct rebuilds the Token entity from verified claims.
func (i *Issuer) reconstruct(claims *Claims) (*domain.Token, error) {
	if claims.ID == "" || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, domain.ErrCredentialInvalid.WithDetails("missing identity claims")
	}
	if !domain.IsValidTokenID(claims.ID) {
		return nil, domain.ErrCredentialInvalid.WithDetails("malformed token id claim")
	}

	typ := claims.TokenType
	if !typ.IsValid() {
		typ = domain.TokenTypeAccess
	}

	return &domain.Token{
		ID:        domain.NormalizeTokenID(claims.ID),
		OwnerID:   claims.Subject,
		OwnerName: claims.OwnerName,
		Type:      typ,
		IssuedAt:  claims.IssuedAt.UnixMilli(),
		ExpiresAt: claims.ExpiresAt.UnixMilli(),
		Status:    domain.StatusActive,
	}, nil
}
