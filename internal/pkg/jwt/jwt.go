package jwt

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/auth"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const tokenTypeAccess = "access"

// Service verifies access tokens issued by the identity service. GenerateAccessToken
// signs tokens with the same key and exists for local tooling and tests.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	GenerateAccessToken(p auth.Principal, ttl time.Duration) (token string, expiresAt int64, err error)
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
	now       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(p auth.Principal, ttl time.Duration) (token string, expiresAt int64, err error) {
	if p.UserID == "" {
		return "", 0, fmt.Errorf("generate access token: user_id is required")
	}
	expiresAt = j.now().Add(ttl).Unix()

	claims := map[string]interface{}{
		"user_id": p.UserID,
		"role":    string(p.Role),
		"type":    tokenTypeAccess,
		"exp":     expiresAt,
	}
	if p.Position != "" {
		claims["position"] = p.Position
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// PrincipalFromClaims reads the caller from verified access-token claims.
func PrincipalFromClaims(claims map[string]interface{}) (auth.Principal, error) {
	tokenType, _ := claims["type"].(string)
	if tokenType != tokenTypeAccess {
		return auth.Principal{}, auth.ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return auth.Principal{}, auth.ErrInvalidToken
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = string(auth.RoleEmployee)
	}
	position, _ := claims["position"].(string)

	return auth.Principal{UserID: userID, Role: auth.Role(role), Position: position}, nil
}
