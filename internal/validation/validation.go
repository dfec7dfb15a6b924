// Package validation checks request bodies before they reach the store
// or an external API.
package validation

import (
	"errors"
	"net/url"
	"strings"

	v "github.com/go-ozzo/ozzo-validation/v4"

	"brandwatch/internal/models"
)

// ValidateURL checks that urlStr is an absolute http or https URL.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}
	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// webURL accepts an empty string or a URL passing ValidateURL.
var webURL = v.By(func(value any) error {
	s, _ := value.(string)
	if p, ok := value.(*string); ok && p != nil {
		s = *p
	}
	if s == "" {
		return nil
	}
	if ok, msg := ValidateURL(s); !ok {
		return errors.New(msg)
	}
	return nil
})

var date = v.Date(models.DateLayout).Error("must be a date in YYYY-MM-DD format")

func oneOf(values []string) v.Rule {
	in := make([]any, len(values))
	for i, s := range values {
		in[i] = s
	}
	return v.In(in...).Error("must be one of: " + strings.Join(values, ", "))
}

// Details flattens a validation error into field -> message pairs.
// Errors that are not field errors come back under "error".
func Details(err error) map[string]string {
	out := map[string]string{}
	var fields v.Errors
	if !errors.As(err, &fields) {
		out["error"] = err.Error()
		return out
	}
	for field, fieldErr := range fields {
		var nested v.Errors
		if errors.As(fieldErr, &nested) {
			for k, msg := range Details(nested) {
				out[field+"."+k] = msg
			}
			continue
		}
		out[field] = fieldErr.Error()
	}
	return out
}
