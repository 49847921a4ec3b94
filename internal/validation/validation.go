// Package validation wires go-playground/validator with English messages for
// upload documents and nondh detail records.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/stwalsh4118/landrecords/internal/models"
)

// Custom tags reported from struct-level rules
const (
	TagReasonRequired = "reason_required_if_invalid"
	TagNondhsRequired = "nondhs_required_with_details"
	TagNondhType      = "nondh_type"
)

// advisoryTags are reported but never make a record unacceptable. An invalid
// detail without a reason is stored with the "NA" sentinel instead.
var advisoryTags = map[string]struct{}{
	TagReasonRequired: {},
}

// Validator validates uploads and renders violations as human-readable strings.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// New creates a Validator with English translations and the land-record rules registered.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json names so messages match the uploaded document
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")

	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, err
	}

	if err := v.RegisterValidation(TagNondhType, isNondhType); err != nil {
		return nil, err
	}
	v.RegisterStructValidation(uploadStructLevel, models.Upload{})
	v.RegisterStructValidation(detailStructLevel, models.NondhDetailInput{})

	custom := map[string]string{
		TagReasonRequired:  "{0} is required when status is invalid",
		TagNondhsRequired:  "{0} must not be empty when nondhDetails are supplied",
		TagNondhType:       "{0} must be a known nondh type",
		"len":              "{0} must be exactly {1} characters (ddmmyyyy)",
		"required_without": "{0} is required when {1} is missing",
	}
	for tag, text := range custom {
		if err := registerTranslation(v, trans, tag, text); err != nil {
			return nil, err
		}
	}

	return &Validator{validate: v, trans: trans}, nil
}

func registerTranslation(v *validator.Validate, trans ut.Translator, tag, text string) error {
	return v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, err := ut.T(fe.Tag(), fe.Field(), fe.Param())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

// Struct validates s and returns the raw validator error, if any.
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// Messages validates s and returns one message per violation, in field order.
// It returns nil when s is valid.
func (v *Validator) Messages(s interface{}) []string {
	return v.Translate(v.validate.Struct(s))
}

// Check validates s and splits the messages into rejections, which make s
// unacceptable, and advisories, which are only reported.
func (v *Validator) Check(s interface{}) (rejections, advisories []string) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}, nil
	}

	for _, fe := range validationErrors {
		msg := fe.Translate(v.trans)
		if _, ok := advisoryTags[fe.Tag()]; ok {
			advisories = append(advisories, msg)
			continue
		}
		rejections = append(rejections, msg)
	}
	return rejections, advisories
}

// Translate renders a validator error as messages. Non-validation errors are returned verbatim.
func (v *Validator) Translate(err error) []string {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		messages = append(messages, fe.Translate(v.trans))
	}
	return messages
}

// FieldMessages renders validation errors keyed by field name, for API error details.
func (v *Validator) FieldMessages(validationErrors validator.ValidationErrors) map[string]interface{} {
	details := make(map[string]interface{}, len(validationErrors))
	for _, fe := range validationErrors {
		details[fe.Field()] = fe.Translate(v.trans)
	}
	return details
}

func isNondhType(fl validator.FieldLevel) bool {
	_, ok := models.ParseNondhType(fl.Field().String())
	return ok
}

func uploadStructLevel(sl validator.StructLevel) {
	u := sl.Current().Interface().(models.Upload)
	if len(u.NondhDetails) > 0 && len(u.Nondhs) == 0 {
		sl.ReportError(u.Nondhs, "nondhs", "Nondhs", TagNondhsRequired, "")
	}
}

func detailStructLevel(sl validator.StructLevel) {
	d := sl.Current().Interface().(models.NondhDetailInput)
	// only the literal internal status is checked here; mapped external
	// statuses such as "cancelled" fall through to the "NA" sentinel
	if strings.EqualFold(strings.TrimSpace(d.Status), string(models.StatusInvalid)) && strings.TrimSpace(d.InvalidReason) == "" {
		sl.ReportError(d.InvalidReason, "invalidReason", "InvalidReason", TagReasonRequired, "")
	}
}
