package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tazhate/couplebot/internal/dates"
	"github.com/tazhate/couplebot/internal/domain"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrEventNotFound    = errors.New("event not found")
	ErrMemoryNotFound   = errors.New("memory not found")
	ErrFavoriteNotFound = errors.New("favorite not found")
	ErrNotConfigured    = errors.New("not configured")
)

// NewValidator returns a validator with the date, hexcolor_or_blank,
// timerange, category and icon tags registered
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		return dates.ParseDateOrNull(fl.Field().String()) != nil
	})
	_ = v.RegisterValidation("hexcolor_or_blank", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if s == "" {
			return true
		}
		_, ok := domain.ParseColor(s)
		return ok
	})
	_ = v.RegisterValidation("timerange", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseTimeRange(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		id := fl.Field().Int()
		for _, c := range domain.Categories {
			if int64(c) == id {
				return true
			}
		}
		return false
	})
	_ = v.RegisterValidation("icon", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, i := range domain.Icons {
			if string(i) == s {
				return true
			}
		}
		return false
	})
	return v
}

var validate = NewValidator()

// validateStruct runs struct tags and wraps failures in ErrInvalidInput
func validateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
