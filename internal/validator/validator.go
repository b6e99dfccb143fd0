package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	ptbr_translations "github.com/go-playground/validator/v10/translations/pt_BR"
)

var (
	celularRegex  = regexp.MustCompile(`^\+?1?\d{9,15}$`)
	semestreRegex = regexp.MustCompile(`^\d{4}\.[12]$`)
)

// trans is the singleton pt-BR translator for validation errors.
var trans ut.Translator

// customRules are the project-specific validation tags and their pt-BR messages.
var customRules = []struct {
	tag     string
	fn      govalidator.Func
	message string
}{
	{"celular", validateCelular, "{0} deve estar no formato '+999999999'. Até 15 dígitos permitidos."},
	{"semestre", validateSemestre, "{0} deve estar no formato AAAA.1 ou AAAA.2."},
	{"hhmm", validateHHMM, "{0} deve ser um horário no formato HH:MM."},
	{"isodate", validateISODate, "{0} deve ser uma data no formato AAAA-MM-DD."},
}

// Setup registers the validator with pt-BR translations and custom rules on Gin's binding engine.
// Call once during application startup.
func Setup() {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	locale := pt_BR.New()
	uni := ut.New(locale, locale)
	trans, _ = uni.GetTranslator("pt_BR")
	_ = ptbr_translations.RegisterDefaultTranslations(v, trans)

	for _, rule := range customRules {
		_ = v.RegisterValidation(rule.tag, rule.fn)
		message := rule.message
		tag := rule.tag
		_ = v.RegisterTranslation(tag, trans,
			func(t ut.Translator) error { return t.Add(tag, message, true) },
			func(t ut.Translator, fe govalidator.FieldError) string {
				msg, _ := t.T(tag, fe.Field())
				return msg
			},
		)
	}
}

// ValidCelular reports whether s is an acceptable mobile number.
func ValidCelular(s string) bool { return celularRegex.MatchString(s) }

// ValidSemestre reports whether s has the YYYY.1 / YYYY.2 shape.
func ValidSemestre(s string) bool { return semestreRegex.MatchString(s) }

func validateCelular(fl govalidator.FieldLevel) bool {
	return ValidCelular(fl.Field().String())
}

func validateSemestre(fl govalidator.FieldLevel) bool {
	return ValidSemestre(fl.Field().String())
}

func validateHHMM(fl govalidator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}

func validateISODate(fl govalidator.FieldLevel) bool {
	_, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if trans != nil {
				fields[fe.Field()] = fe.Translate(trans)
			} else {
				fields[fe.Field()] = fe.Error()
			}
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the JSON request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindQuery binds and validates query string parameters into dst.
func BindQuery(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindQuery(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// Struct validates a value built outside a request, such as CLI input.
func Struct(v interface{}) map[string]string {
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
