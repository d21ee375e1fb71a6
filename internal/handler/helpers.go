package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"deliverypdv/internal/apierror"
	"deliverypdv/internal/dto"
	"deliverypdv/internal/middleware"
	"deliverypdv/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// decimal.Decimal is validated as a float so min/gt/required tags work.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// bindAndValidate binds the JSON body and runs validator tags.
// On failure the response is already written and the caller must return.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError writes domain errors with their status. Anything else is
// handed to middleware.ErrorHandler, which logs it and answers 500.
func respondError(c *gin.Context, err error) {
	if e, ok := apierror.As(err); ok {
		c.AbortWithStatusJSON(e.Kind.Status(), e.Response())
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// uuidParam parses a path parameter, answering 400 when malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// mustUUID parses a field already checked by the uuid validator tag.
func mustUUID(s string) uuid.UUID {
	id, _ := uuid.Parse(s)
	return id
}

// tenantID returns the tenant resolved by middleware.TenantResolver.
func tenantID(c *gin.Context) uuid.UUID {
	if t := middleware.GetTenant(c); t != nil {
		return t.ID
	}
	return uuid.Nil
}

// operadorAuth checks the operator credentials carried in till requests.
type operadorAuth struct{ operadores service.OperadorService }

func (a operadorAuth) autenticar(c *gin.Context, cred dto.CredenciaisOperador) (service.OperadorContext, bool) {
	op, err := a.operadores.Autenticar(c.Request.Context(), tenantID(c), cred.OperadorID, cred.OperadorSenha)
	if err != nil {
		respondError(c, err)
		return service.OperadorContext{}, false
	}
	return *op, true
}
