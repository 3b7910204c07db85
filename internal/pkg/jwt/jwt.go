package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrInvalidClaims = errors.New("token is missing requester claims")

// Claims identify the caller of an API request.
type Claims struct {
	PhoneNumber string
	UID         string
	DisplayName string
	Support     bool
}

type Service interface {
	GenerateAccessToken(c Claims) (token string, expiresAt int64, err error)
	// ParseClaims reads requester claims from a decoded token's claim map.
	ParseClaims(claims map[string]any) (Claims, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	supportClaim string
	expiration   time.Duration
	tokenAuth    *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, supportClaim string, expiration time.Duration) Service {
	if supportClaim == "" {
		supportClaim = "support"
	}
	return &JWTService{
		supportClaim: supportClaim,
		expiration:   expiration,
		tokenAuth:    jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(c Claims) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.expiration).Unix()

	claims := map[string]interface{}{
		"phone_number": c.PhoneNumber,
		"uid":          c.UID,
		"display_name": c.DisplayName,
		"type":         "access",
		"exp":          expiresAt,
	}
	if c.Support {
		claims[j.supportClaim] = true
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) ParseClaims(claims map[string]any) (Claims, error) {
	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return Claims{}, ErrInvalidClaims
	}

	phone, _ := claims["phone_number"].(string)
	uid, _ := claims["uid"].(string)
	if phone == "" || uid == "" {
		return Claims{}, ErrInvalidClaims
	}

	name, _ := claims["display_name"].(string)
	support, _ := claims[j.supportClaim].(bool)
	return Claims{PhoneNumber: phone, UID: uid, DisplayName: name, Support: support}, nil
}
