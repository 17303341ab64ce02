package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"linguaclip/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		return domain.KnownLanguage(fl.Field().String())
	})
	_ = validate.RegisterValidation("source_language", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		return code == domain.AutoLanguage || domain.KnownLanguage(code)
	})
}

// ValidateStruct checks s against its validate tags.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var errMsgs []string
	for _, fe := range verrs {
		errMsgs = append(errMsgs, fmt.Sprintf(
			"Field: %s, Tag: %s, Param: %s, Value: %v", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value(),
		))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(errMsgs, "; "))
}
