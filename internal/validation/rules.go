// Package validation provides custom validation rules for the application.
package validation

import (
	"net/url"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/keyguard/internal/errors"
)

var (
	// scopeRegex matches OAuth2 scope tokens (RFC 6749 §3.3, restricted to a sane subset).
	scopeRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.:]+$`)

	// subjectRegex matches ACL subjects (principal or group names).
	subjectRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.@]+$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// notBlankRule validates that a string is not empty after trimming whitespace.
type notBlankRule struct{}

// NotBlank is a validation rule that rejects strings made only of whitespace.
var NotBlank = notBlankRule{}

// Validate checks that the value is a non-blank string.
func (r notBlankRule) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_not_blank", "must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return validation.NewError("validation_not_blank", "cannot be blank")
	}
	return nil
}

// scopeRule validates an OAuth2 scope value.
type scopeRule struct{}

// Scope is a validation rule for OAuth2 scope tokens.
var Scope = scopeRule{}

// Validate checks that the value is a well-formed scope token.
func (r scopeRule) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_scope", "scope must be a string")
	}
	if !scopeRegex.MatchString(s) {
		return validation.NewError("validation_scope", "scope contains invalid characters")
	}
	return nil
}

// subjectRule validates an ACL subject (principal or group name).
type subjectRule struct{}

// Subject is a validation rule for ACL subjects.
var Subject = subjectRule{}

// Validate checks that the value is a well-formed subject name.
func (r subjectRule) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_subject", "subject must be a string")
	}
	if !subjectRegex.MatchString(s) {
		return validation.NewError("validation_subject", "subject contains invalid characters")
	}
	return nil
}

// redirectURIRule validates an OAuth2 redirect URI.
// The URI must be absolute and must not carry a fragment (RFC 6749 §3.1.2).
type redirectURIRule struct{}

// RedirectURI is a validation rule for OAuth2 redirect URIs.
var RedirectURI = redirectURIRule{}

// Validate checks that the value is an absolute URI without a fragment.
func (r redirectURIRule) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_redirect_uri", "redirect URI must be a string")
	}

	u, err := url.Parse(s)
	if err != nil {
		return validation.NewError("validation_redirect_uri", "redirect URI is not a valid URI")
	}
	if !u.IsAbs() {
		return validation.NewError("validation_redirect_uri", "redirect URI must be absolute")
	}
	if u.Fragment != "" {
		return validation.NewError("validation_redirect_uri", "redirect URI must not contain a fragment")
	}
	return nil
}
