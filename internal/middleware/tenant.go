package middleware

import (
	"errors"
	"net/http"

	"deliverypdv/internal/apierror"
	"deliverypdv/internal/model"
	"deliverypdv/internal/repository"

	"github.com/gin-gonic/gin"
)

const TenantKey = "tenant"

// TenantResolver loads the tenant named by :tenantSlug and checks that the
// token belongs to it. Must run after JWTAuth.
func TenantResolver(tenants repository.TenantRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("tenantSlug")
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticação obrigatória"))
			return
		}
		if claims.Rol != RolSuperAdmin && claims.TenantSlug != slug {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Token não pertence a este estabelecimento"))
			return
		}

		t, err := tenants.FindBySlug(c.Request.Context(), slug)
		if errors.Is(err, repository.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, apierror.New("Estabelecimento não encontrado"))
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(TenantKey, t)
		c.Next()
	}
}

// GetTenant returns the tenant resolved for this request.
func GetTenant(c *gin.Context) *model.Tenant {
	v, ok := c.Get(TenantKey)
	if !ok {
		return nil
	}
	t, _ := v.(*model.Tenant)
	return t
}
