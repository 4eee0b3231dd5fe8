package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and reports failures as ValidationFailed.
func Validate(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.ValidationFailed, "invalid payload", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return apperr.Invalid(strings.Join(msgs, "; "))
}
