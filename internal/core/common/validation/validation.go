package validation

import (
	"fmt"
	"strings"
	"time"

	errors "github.com/thanhhle/salesops-management/internal"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || strings.TrimSpace(*v) == "" {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if len(v) < min {
				message := fmt.Sprintf("%s must be at least %d characters", fv.FieldName, min)
				return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if len(v) > max {
				message := fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max)
				return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinInt(min int64, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(int64); ok {
			if v < min {
				message := fmt.Sprintf("%s must be at least %d", fv.FieldName, min)
				return errors.NewValidationFieldError(fv.FieldName, message, code)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxInt(max int64, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(int64); ok {
			if v > max {
				message := fmt.Sprintf("%s must not exceed %d", fv.FieldName, max)
				return errors.NewValidationFieldError(fv.FieldName, message, code)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) DateFormat(layout string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && v != "" {
			if _, err := time.Parse(layout, v); err != nil {
				message := fmt.Sprintf("%s must be a valid date in %s format", fv.FieldName, layout)
				return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeInvalidDate)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			if err := validator(field.Value); err != nil {
				if appErr, ok := errors.IsAppError(err); ok {
					if details, ok := appErr.Details.(errors.ValidationErrors); ok {
						validationErrors = append(validationErrors, details.Errors...)
					} else {
						validationErrors = append(validationErrors, errors.ValidationError{
							Field:   field.FieldName,
							Message: appErr.Message,
							Code:    string(appErr.Code),
						})
					}
				}
			}
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

// ValidatePlanDate checks the wire format used for plan dates.
func ValidatePlanDate(date string) *errors.AppError {
	validator := NewValidator()
	validator.Field("date", date).
		Required().
		DateFormat("2006-01-02")
	return validator.Validate()
}

// ValidateRejectionReason refuses empty or whitespace-only reasons.
func ValidateRejectionReason(reason string) *errors.AppError {
	if strings.TrimSpace(reason) == "" {
		return errors.ErrMissingReason
	}
	return nil
}

// ValidatePassword enforces the minimum credential length.
func ValidatePassword(password string) *errors.AppError {
	if len(password) < 6 {
		return errors.ErrPasswordTooShort
	}
	return nil
}
