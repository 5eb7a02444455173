package models

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate reads the same binding tags gin enforces, so handler-level
// checks and out-of-band checks agree.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

// ValidateIntake checks the public submission payload beyond what gin
// binding enforces: a well-formed contact email and content that is
// not just whitespace.
func ValidateIntake(req *IntakeRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Content) == "" {
		return errors.New("content cannot be blank")
	}
	return nil
}
