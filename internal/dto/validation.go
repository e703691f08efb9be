package dto

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/SscSPs/budget_request_app/internal/apperrors"
	"github.com/SscSPs/budget_request_app/internal/core/domain"
	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func defaultValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.SetTagName("binding")
		if err := RegisterValidations(v); err != nil {
			panic(fmt.Sprintf("registering dto validations: %v", err))
		}
		validate = v
	})
	return validate
}

// Validate checks a request DTO against its binding tags outside of gin binding.
// Failures wrap apperrors.ErrValidation and name the offending fields.
func Validate(s any) error {
	err := defaultValidator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(msgs, "; "))
}

// RegisterValidations adds the custom tags used by the request DTOs
// (request_status, urgency) to v.
func RegisterValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("request_status", func(fl validator.FieldLevel) bool {
		return domain.RequestStatus(fl.Field().String()).IsValid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("urgency", func(fl validator.FieldLevel) bool {
		return domain.Urgency(fl.Field().String()).IsValid()
	})
}
