package validator

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// registerCustomTranslations registers translations for custom validation rules.
func (v *Validator) registerCustomTranslations() {
	if enTrans := v.GetTranslator(LangEN); enTrans != nil {
		registerTranslations(v.validate, enTrans, map[string]string{
			TagRole:     "{0} must be one of USER, MODERATOR, ADMIN",
			TagHTTPURL:  "{0} must be a valid http or https URL",
			TagDriveURL: "{0} must be a Google Drive link",
			TagNotBlank: "{0} must not be blank",
		})
	}

	if zhTrans := v.GetTranslator(LangZH); zhTrans != nil {
		registerTranslations(v.validate, zhTrans, map[string]string{
			TagRole:     "{0}必须是 USER、MODERATOR 或 ADMIN",
			TagHTTPURL:  "{0}必须是有效的 http 或 https 链接",
			TagDriveURL: "{0}必须是 Google Drive 链接",
			TagNotBlank: "{0}不能为空",
		})
	}
}

func registerTranslations(validate *validator.Validate, trans ut.Translator, messages map[string]string) {
	for tag, message := range messages {
		tag, message := tag, message
		_ = validate.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(tag, message, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T(tag, fe.Field())
				return t
			},
		)
	}
}
