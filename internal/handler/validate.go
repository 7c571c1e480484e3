package handler

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/squid-app/squid-api/internal/model"
)

var validate = newValidator()

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindBody decodes the JSON body into req and validates it.
// An empty body decodes to the zero value so that missing fields are reported by name.
func bindBody(c *gin.Context, req any) *model.AppError {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		return model.WrapAppError(model.ErrorCodeBadRequest, model.MsgMalformedRequest+": Body must be a JSON object", err)
	}
	return validateStruct(req)
}

// validateStruct checks req against its validate tags and reports the first failure
func validateStruct(req any) *model.AppError {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return model.WrapAppError(model.ErrorCodeBadRequest, model.MsgMalformedRequest, err)
	}

	fe := fieldErrs[0]
	if fe.Tag() == "required" {
		return model.NewAppError(model.ErrorCodeBadRequest,
			fmt.Sprintf("%s: Must pass %s in body", model.MsgMalformedRequest, fe.Field()))
	}
	return model.NewAppError(model.ErrorCodeBadRequest,
		fmt.Sprintf("%s: Invalid %s. %s", model.MsgMalformedRequest, fe.Field(), reason(fe)))
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "oneof":
		return "Must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "url", "http_url":
		return "Must be a URL"
	default:
		return "Failed on " + fe.Tag()
	}
}
