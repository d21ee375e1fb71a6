package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"deliverypdv/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ClaimsKey = "claims"

// Roles carried in the rol claim.
const (
	RolSuperAdmin = "superadmin"
	RolAdmin      = "admin"
	RolPDV        = "pdv"
)

// JWTClaims are the custom claims embedded in every access token. Tokens are
// issued by the identity service; TenantSlug is empty only for superadmin.
type JWTClaims struct {
	UserID     string `json:"user_id"`
	Rol        string `json:"rol"`
	TenantSlug string `json:"tenant_slug"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticação obrigatória"))
			return
		}

		claims, err := ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token inválido ou expirado"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(secret, tokenStr string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token inválido")
	}
	return claims, nil
}

// SignToken issues an HS256 token. Used by cmd/genhash for development
// tokens and by tests.
func SignToken(secret, userID, rol, tenantSlug string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		UserID:     userID,
		Rol:        rol,
		TenantSlug: tenantSlug,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
// superadmin is always allowed.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles)+1)
	for _, r := range roles {
		allowed[r] = true
	}
	allowed[RolSuperAdmin] = true
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !allowed[claims.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permissões insuficientes"))
			return
		}
		c.Next()
	}
}

// GetClaims retrieves typed claims from the gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}
