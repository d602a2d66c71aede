package corpus

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ppiankov/intentbot/internal/ierrors"
	"github.com/ppiankov/intentbot/internal/logger"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		panic(fmt.Errorf("register notblank: %w", err))
	}
	// Report JSON field names (intents[0].examples) instead of Go names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Validate reports whether c satisfies the corpus invariants, logging the
// reason when it does not.
func Validate(c *Corpus) bool {
	if err := Check(c); err != nil {
		logger.GetLogger().WithError(err).Warn("corpus failed validation")
		return false
	}
	return true
}

// Check is Validate returning the violations as a ValidationFailure error
func Check(c *Corpus) error {
	if c == nil {
		return ierrors.Newf(ierrors.KindValidationFailure, "validate corpus", "", "corpus is nil")
	}

	var reasons []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return ierrors.New(ierrors.KindValidationFailure, "validate corpus", "", err)
		}
		for _, fe := range verrs {
			reasons = append(reasons, describe(fe))
		}
	}

	seen := make(map[string]bool, len(c.Intents))
	for _, in := range c.Intents {
		if in.Name == "" {
			continue
		}
		if seen[in.Name] {
			reasons = append(reasons, fmt.Sprintf("intent %q is defined more than once", in.Name))
		}
		seen[in.Name] = true
	}

	if len(reasons) > 0 {
		return ierrors.Newf(ierrors.KindValidationFailure, "validate corpus", "", "%s", strings.Join(reasons, "; "))
	}

	return nil
}

// CheckFile loads and validates a corpus file
func CheckFile(path string) (*Corpus, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := Check(c); err != nil {
		var ie *ierrors.Error
		if errors.As(err, &ie) {
			ie.Path = path
		}
		return c, err
	}
	return c, nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Corpus.")
	switch fe.Tag() {
	case "required":
		return field + " is missing"
	case "min":
		return field + " is empty"
	case "notblank":
		return field + " is blank"
	default:
		return fmt.Sprintf("%s fails %q", field, fe.Tag())
	}
}
