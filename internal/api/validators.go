package api

import (
	"errors"
	"reflect"
	"slices"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"sprintcoach/internal/model"
)

// Translator renders validation errors in English.
var Translator ut.Translator

var enumTags = map[string][]string{
	"lead_status":  model.LeadStatuses,
	"deal_status":  model.DealStatuses,
	"story_status": model.StoryStatuses,
	"archetype":    model.Archetypes,
}

// InitValidators configures gin's validator: JSON field names, English messages and the enum tags.
func InitValidators() error {
	validate, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding engine is not go-playground/validator")
	}

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, Translator); err != nil {
		return err
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, values := range enumTags {
		if err := validate.RegisterValidation(tag, oneOf(values)); err != nil {
			return err
		}
		registerTranslation(validate, tag, "{0} must be one of: "+strings.Join(values, ", "))
	}
	registerTranslation(validate, "timezone", "{0} must be a valid IANA time zone", true)
	registerTranslation(validate, "required", "{0} is required", true)
	return nil
}

func oneOf(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(values, fl.Field().String())
	}
}

func registerTranslation(validate *validator.Validate, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
