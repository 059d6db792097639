// Package validate holds the process-wide validator and its English translator
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	perr "oncallbot/internal/platform/errors"
	"oncallbot/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Engine bundles the validator with the translator used for its messages
type Engine struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	once sync.Once
	eng  *Engine
)

// Init builds the singleton engine, safe to call more than once
func Init() {
	once.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// report json names where a struct has them
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)
		registerShort(v, trans, "alphanum", "{0} must only contain letters and digits")
		registerShort(v, trans, "required", "{0} is required")

		eng = &Engine{Validator: v, Translator: trans}
	})
}

// Get returns the engine, initialising it on first use
func Get() *Engine {
	Init()
	return eng
}

// Struct validates s and maps failures to a perr validation error
// the first failing field is attached to the error
func Struct(s any) error {
	return toPerr(Get().Validator.Struct(s))
}

// Var validates a single value against tag; name is used in the message
func Var(name string, value any, tag string) error {
	err := Get().Validator.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		msg := verrs[0].Translate(Get().Translator)
		// Var has no field name, the translation leads with an empty one
		msg = strings.TrimSpace(name + " " + strings.TrimSpace(msg))
		return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), name)
	}
	return toPerr(err)
}

// FieldAndMessage returns the first failing field and its translated message
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		return "", inv.Error()
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			return fe.Field(), fe.Translate(Get().Translator)
		}
	}
	return "", err.Error()
}

func toPerr(err error) error {
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("validator internal error")
		return perr.Internalf("validation error")
	}
	field, msg := FieldAndMessage(err)
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
}

func registerShort(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field())
			return msg
		},
	)
}
