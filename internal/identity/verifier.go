package identity

import (
	"context"
	"errors"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/pkg/middleware"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Claims are the access token claims issued by the identity provider
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// LocalVerifier validates HS256 access tokens against the shared JWT secret
type LocalVerifier struct {
	secret []byte
}

// NewLocalVerifier creates a verifier for tokens signed with secret
func NewLocalVerifier(secret string) *LocalVerifier {
	return &LocalVerifier{secret: []byte(secret)}
}

// VerifyToken implements middleware.TokenVerifier
func (v *LocalVerifier) VerifyToken(ctx context.Context, tokenString string) (*middleware.Principal, error) {
	_, span := telemetry.StartSpan(ctx, "identity.local.verify_token")
	defer span.End()

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return v.secret, nil
	})

	if err != nil {
		span.RecordError(err)
		if errors.Is(err, jwt.ErrTokenExpired) {
			span.SetStatus(codes.Error, "token expired")
		} else {
			span.SetStatus(codes.Error, "invalid token")
		}
		return nil, withCause(domain.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		span.SetStatus(codes.Error, "invalid claims")
		return nil, domain.ErrInvalidToken
	}

	span.SetAttributes(attribute.String("user_id", claims.Subject))
	span.SetStatus(codes.Ok, "")

	return &middleware.Principal{UserID: claims.Subject, Email: claims.Email}, nil
}

// RemoteVerifier asks the identity provider who owns a token
type RemoteVerifier struct {
	client *Client
}

// NewRemoteVerifier creates a verifier backed by GET /user
func NewRemoteVerifier(client *Client) *RemoteVerifier {
	return &RemoteVerifier{client: client}
}

// VerifyToken implements middleware.TokenVerifier
func (v *RemoteVerifier) VerifyToken(ctx context.Context, token string) (*middleware.Principal, error) {
	ctx, span := telemetry.StartSpan(ctx, "identity.remote.verify_token")
	defer span.End()

	user, err := v.client.GetUser(ctx, token)
	if err != nil {
		telemetry.FailSpan(span, err, "token rejected")
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return &middleware.Principal{UserID: user.ID, Email: user.Email}, nil
}

// NewVerifier prefers local validation when a JWT secret is configured
func NewVerifier(secret string, client *Client) middleware.TokenVerifier {
	if secret != "" {
		return NewLocalVerifier(secret)
	}
	return NewRemoteVerifier(client)
}
