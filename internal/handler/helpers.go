package handler

import (
	"errors"
	"net/http"
	"reflect"

	"stockswift/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds the JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if either step fails — the
// caller should return immediately without writing another response.
//
// A body that fails to parse falls into the generic server-error path, same
// as any other unexpected failure; only tag violations get a 400 naming the
// field.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Server error"))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid field: "+ve[0].Field()))
			return false
		}
		c.JSON(http.StatusBadRequest, apierror.New("Invalid request"))
		return false
	}
	return true
}
