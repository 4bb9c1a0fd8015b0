package field

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/dataextract/internal/domain"
)

var (
	nameRe       = regexp.MustCompile(`^[a-z_]+(\.[a-z_]+)?$`)
	identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	classRe      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*([./][A-Za-z_][A-Za-z0-9_\-]*)*$`)
)

const nameRule = "field names must be lowercase with optional underscores, " +
	"global (no dot) or domain specific (one dot)"

// ValidateName checks name against the field name syntax.
func ValidateName(name string) error {
	if !nameRe.MatchString(name) {
		return domain.NewValidationError(domain.ErrInvalidField, name, nameRule)
	}
	return nil
}

// ValidateGetter checks that getter is a plain identifier.
func ValidateGetter(getter string) error {
	if !identifierRe.MatchString(getter) {
		return domain.NewValidationError(domain.ErrInvalidGetter, getter, "must be an identifier")
	}
	return nil
}

// ValidateClass checks a class identifier (identifiers joined by '.' or '/').
func ValidateClass(class string) error {
	if !classRe.MatchString(class) {
		return domain.NewValidationError(domain.ErrInvalidClass, class, "must be a qualified identifier")
	}
	return nil
}

// IsNamespaced reports whether name carries a domain prefix.
func IsNamespaced(name string) bool {
	return strings.Contains(name, ".")
}

// SplitName splits "domain.sub" into its parts. Global names return ("", name).
func SplitName(name string) (string, string) {
	dom, sub, ok := strings.Cut(name, ".")
	if !ok {
		return "", name
	}
	return dom, sub
}
