package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prestamos/vales-gateway/internal/model"
)

var (
	ErrInvalidToken = errors.New("token inválido o expirado")
	ErrMissingToken = errors.New("se requiere token de autenticación")
)

// JWTManager issues and validates the bearer tokens carried by every branch
// session.
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
}

// Claims carries the resolved branch identity inside the token.
type Claims struct {
	BranchID int64  `json:"id"`
	Nombre   string `json:"nombre"`
	Usuario  string `json:"usuario"`
	jwt.RegisteredClaims
}

func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
	}
}

// Generate creates a signed token for the given branch.
func (m *JWTManager) Generate(branch *model.Branch) (string, error) {
	claims := &Claims{
		BranchID: branch.ID,
		Nombre:   branch.Nombre,
		Usuario:  branch.Usuario,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// Validate parses a token and returns its claims when the signature and
// expiry check out.
func (m *JWTManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
	)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Identity converts the claims into the caller identity trusted downstream.
func (c *Claims) Identity() model.Identity {
	return model.Identity{
		BranchID: c.BranchID,
		Nombre:   c.Nombre,
		Usuario:  c.Usuario,
	}
}
