package validator

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// RequiredString validates that a string is not empty after trimming whitespace.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:             field,
			Message:           "field is required",
			TranslationKey:    "validation.required",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) <= max
		},
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at most %d characters long", max),
			TranslationKey:    "validation.max_length",
			TranslationValues: map[string]any{"field": field, "max": max},
		},
	}
}

// MinNum validates that a numeric value is greater than or equal to min.
func MinNum[T Numeric](field string, value T, min T) Rule {
	return Rule{
		Check: func() bool {
			return value >= min
		},
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at least %v", min),
			TranslationKey:    "validation.min",
			TranslationValues: map[string]any{"field": field, "min": min},
		},
	}
}

// MaxNum validates that a numeric value is less than or equal to max.
func MaxNum[T Numeric](field string, value T, max T) Rule {
	return Rule{
		Check: func() bool {
			return value <= max
		},
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at most %v", max),
			TranslationKey:    "validation.max",
			TranslationValues: map[string]any{"field": field, "max": max},
		},
	}
}

func ValidRole(field, value string, allowedRoles []string) Rule {
	return Rule{
		Check: func() bool {
			return slices.Contains(allowedRoles, value)
		},
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("role must be one of: %s", strings.Join(allowedRoles, ", ")),
			TranslationKey:    "validation.valid_role",
			TranslationValues: map[string]any{"field": field, "allowed_roles": allowedRoles},
		},
	}
}

// ValidURL accepts absolute http(s) URLs with a host and root-relative paths
// such as "/dashboard/notifications". Any other scheme is rejected.
func ValidURL(field, value string) Rule {
	return Rule{
		Check: func() bool {
			if strings.HasPrefix(value, "/") && !strings.HasPrefix(value, "//") {
				_, err := url.ParseRequestURI(value)
				return err == nil
			}
			u, err := url.ParseRequestURI(value)
			if err != nil {
				return false
			}
			return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must be a valid URL",
			TranslationKey:    "validation.url",
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// ValidEmail performs a structural check only: one "@", a non-empty local
// part and a dotted domain.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			local, domain, ok := strings.Cut(strings.TrimSpace(value), "@")
			if !ok || local == "" || strings.Contains(domain, "@") {
				return false
			}
			dot := strings.LastIndex(domain, ".")
			return dot > 0 && dot < len(domain)-1
		},
		Error: ValidationError{
			Field:             field,
			Message:           "must be a valid email address",
			TranslationKey:    "validation.email",
			TranslationValues: map[string]any{"field": field},
		},
	}
}
