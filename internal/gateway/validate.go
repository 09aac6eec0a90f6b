package gateway

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mockify/backend/internal/rooms"
)

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validate checks req's struct tags and turns the first failure into a
// validation error a player can read.
func validate(req any) error {
	err := structValidator.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return rooms.Validation(describe(fieldErrs[0]))
	}
	return rooms.ErrMalformedRequest
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s needs at least %s entries.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative.", field)
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}

func validateCreate(req CreateRoomRequest) error {
	if len(req.Questions) == 0 {
		return rooms.ErrNoQuestions
	}
	if !req.RoomMode.Valid() {
		return rooms.ErrInvalidRoomMode
	}
	if err := validate(req); err != nil {
		return err
	}
	for i, q := range req.Questions {
		if q.CorrectAnswer >= len(q.Options) {
			return rooms.Validation(fmt.Sprintf("questions[%d].correctAnswer must point at one of its options.", i))
		}
	}
	return nil
}
