package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	ErrInvalidTask     = errors.New("invalid task")
	ErrInvalidCategory = errors.New("invalid category")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("priority", func(fl validator.FieldLevel) bool {
		return Priority(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("recurrence", func(fl validator.FieldLevel) bool {
		return Recurrence(fl.Field().String()).Valid()
	})
	return v
}

// ValidateTask reports whether t can be stored: a non-blank title and known enums.
func ValidateTask(t Task) error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTask, describe(err))
	}
	return nil
}

// ValidateCategory reports whether c has the non-empty fields every category needs.
func ValidateCategory(c Category) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCategory, describe(err))
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	if fe.Tag() == "required" || fe.Tag() == "notblank" {
		return fmt.Sprintf("%s is required", fe.Field())
	}
	return fmt.Sprintf("%s has invalid value %q", fe.Field(), fe.Value())
}
