package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/handmade-storefront/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Handmade Storefront"},
		JWT: config.JWTConfig{
			Secret:            "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry: time.Hour,
		},
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testConfig())

	token, err := m.GenerateAccessToken("cust-42", "ada@example.com")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "cust-42", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "Handmade Storefront", claims.Issuer)
}

func TestJWTManager_RejectsExpired(t *testing.T) {
	m := NewJWTManager(testConfig())
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.GenerateAccessToken("cust-42", "")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().UTC() }
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsForeignSignature(t *testing.T) {
	other := testConfig()
	other.JWT.Secret = "ffffffffffffffffffffffffffffffff"
	token, err := NewJWTManager(other).GenerateAccessToken("cust-42", "")
	require.NoError(t, err)

	_, err = NewJWTManager(testConfig()).ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsWrongTokenType(t *testing.T) {
	cfg := testConfig()
	claims := &Claims{
		UserID:    "cust-42",
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWT.Secret))
	require.NoError(t, err)

	_, err = NewJWTManager(cfg).ValidateAccessToken(token)
	assert.ErrorContains(t, err, "expected access")
}

func TestJWTManager_RequiresUserID(t *testing.T) {
	_, err := NewJWTManager(testConfig()).GenerateAccessToken("", "x@example.com")
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "", ExtractTokenFromHeader("Basic abc"))
	assert.Equal(t, "", ExtractTokenFromHeader(""))
}
