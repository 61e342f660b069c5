package auth

import (
	"testing"
	"time"

	"github.com/prestamos/vales-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	m := NewJWTManager("clave-de-prueba", time.Hour)

	branch := &model.Branch{ID: 3, Nombre: "Local 3", Usuario: "local3"}

	token, err := m.Generate(branch)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), claims.BranchID)
	assert.Equal(t, "Local 3", claims.Nombre)
	assert.Equal(t, "local3", claims.Usuario)

	identity := claims.Identity()
	assert.Equal(t, int64(3), identity.BranchID)
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	m := NewJWTManager("clave-de-prueba", -time.Minute)

	token, err := m.Generate(&model.Branch{ID: 1, Usuario: "local1"})
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsForeignSecret(t *testing.T) {
	issuer := NewJWTManager("clave-a", time.Hour)
	verifier := NewJWTManager("clave-b", time.Hour)

	token, err := issuer.Generate(&model.Branch{ID: 1, Usuario: "local1"})
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_RejectsGarbage(t *testing.T) {
	m := NewJWTManager("clave-de-prueba", time.Hour)

	_, err := m.Validate("no-es-un-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
