package validator

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// Custom validation tags
const (
	TagRole     = "roleenum" // USER, MODERATOR or ADMIN
	TagHTTPURL  = "httpurl"  // absolute http(s) URL with a host
	TagDriveURL = "driveurl" // URL whose host is on the dataset allow-list
	TagNotBlank = "notblank" // not empty after trimming spaces
)

// AllowedDatasetHosts are the hosts a dataset URL may point at.
var AllowedDatasetHosts = []string{"drive.google.com", "docs.google.com"}

// tagErrnos binds custom tags to the API error reported for them.
var tagErrnos = map[string]*errors.Errno{
	TagRole:     errors.ErrInvalidRole,
	TagHTTPURL:  errors.ErrInvalidURL,
	TagDriveURL: errors.ErrHostNotAllowed,
}

// registerCustomRules registers all custom validation rules.
func (v *Validator) registerCustomRules() {
	_ = v.validate.RegisterValidation(TagRole, validateRole)
	_ = v.validate.RegisterValidation(TagHTTPURL, validateHTTPURL)
	_ = v.validate.RegisterValidation(TagDriveURL, validateDriveURL)
	_ = v.validate.RegisterValidation(TagNotBlank, validateNotBlank)
}

func validateRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case model.RoleUser, model.RoleModerator, model.RoleAdmin:
		return true
	}
	return false
}

func parseHTTPURL(raw string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, true
}

// validateHTTPURL validates absolute http(s) URLs.
func validateHTTPURL(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let 'required' handle empty values
	}
	_, ok := parseHTTPURL(value)
	return ok
}

// validateDriveURL validates that the URL host is allow-listed.
func validateDriveURL(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	u, ok := parseHTTPURL(value)
	if !ok {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range AllowedDatasetHosts {
		if host == allowed {
			return true
		}
	}
	return false
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
