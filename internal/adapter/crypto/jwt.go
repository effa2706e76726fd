package crypto

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/testsys2pcms.net/internal/config"
	"gitlab.com/testsys2pcms.net/internal/core/ports/primary"
	"gitlab.com/testsys2pcms.net/internal/domain"
	"gitlab.com/testsys2pcms.net/internal/static/errs"
)

var _ primary.JWTService = (*JWTServiceImpl)(nil)

const DefaultSigningMethod = "HS256"

type JWTServiceImpl struct {
	HMACSecretKey string
	TokenTTL      time.Duration
}

func NewJWTService(jwtConfig *config.JwtConfig) *JWTServiceImpl {
	return &JWTServiceImpl{
		HMACSecretKey: jwtConfig.Secret,
		TokenTTL:      jwtConfig.TokenTTL,
	}
}

func (J JWTServiceImpl) GenerateTokenHMAC(ctx context.Context, method string, claims map[string]interface{}) (string, error) {
	signingMethod := jwt.GetSigningMethod(method)
	if signingMethod == nil {
		return "", fmt.Errorf("unsupported signing method: %s", method)
	}
	if J.HMACSecretKey == "" {
		return "", fmt.Errorf("%w: empty secret", errs.GeneratingToken)
	}

	// Ensure the claims map contains an expiration time
	if _, exists := claims["exp"]; !exists {
		ttl := J.TokenTTL
		if ttl <= 0 {
			ttl = time.Hour
		}
		claims["exp"] = time.Now().Add(ttl).Unix()
	}

	tok := jwt.NewWithClaims(signingMethod, jwt.MapClaims(claims))
	signed, err := tok.SignedString([]byte(J.HMACSecretKey))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.GeneratingToken, err)
	}
	return signed, nil
}

func (J JWTServiceImpl) VerifyTokenHMAC(ctx context.Context, token string, method string) (bool, error) {
	signingMethod := jwt.GetSigningMethod(method)
	if signingMethod == nil {
		return false, fmt.Errorf("unsupported signing method: %s", method)
	}

	parsedToken, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(J.HMACSecretKey), nil
	}, jwt.WithValidMethods([]string{signingMethod.Alg()}))
	if err != nil {
		return false, fmt.Errorf("%w: %v", errs.InvalidToken, err)
	}

	return parsedToken.Valid, nil
}

func decodeSeg(segment string) ([]byte, error) {
	return jwt.NewParser().DecodeSegment(segment)
}

// DecodeTokenPayload reads the claims of a token without verifying it
func (J JWTServiceImpl) DecodeTokenPayload(ctx context.Context, token string) (domain.AuthPayload, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return domain.AuthPayload{}, fmt.Errorf("%w: invalid token format", errs.InvalidToken)
	}

	payloadData, err := decodeSeg(parts[1])
	if err != nil {
		return domain.AuthPayload{}, fmt.Errorf("failed to decode token payload: %w", err)
	}

	var authPayload domain.AuthPayload
	if err := json.Unmarshal(payloadData, &authPayload); err != nil {
		return domain.AuthPayload{}, fmt.Errorf("failed to parse AuthPayload: %w", err)
	}

	return authPayload, nil
}
