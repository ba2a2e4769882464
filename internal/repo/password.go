package repo

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/Skotchmaster/geo_forum/pkg/hash"
)

var (
	reDigit  = regexp.MustCompile(`\p{Nd}`)
	reLower  = regexp.MustCompile(`\p{Ll}`)
	reUpper  = regexp.MustCompile(`\p{Lu}`)
	reSymbol = regexp.MustCompile(`[^\p{L}\p{Nd}]`)
)

// PasswordPolicy is the strength check applied before a password is hashed.
type PasswordPolicy struct {
	MinLength              int
	RequireDigit           bool
	RequireLower           bool
	RequireUpper           bool
	RequireNonAlphanumeric bool
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:              5,
		RequireDigit:           true,
		RequireLower:           true,
		RequireUpper:           true,
		RequireNonAlphanumeric: true,
	}
}

// Validate returns validation.Errors keyed by "password", or nil.
func (p PasswordPolicy) Validate(password string) error {
	rules := []validation.Rule{
		validation.Required,
		validation.RuneLength(p.MinLength, 0),
		validation.Length(0, hash.MaxPasswordBytes).Error("must be at most 72 bytes"),
	}
	if p.RequireDigit {
		rules = append(rules, validation.Match(reDigit).Error("must contain at least one digit"))
	}
	if p.RequireLower {
		rules = append(rules, validation.Match(reLower).Error("must contain at least one lowercase letter"))
	}
	if p.RequireUpper {
		rules = append(rules, validation.Match(reUpper).Error("must contain at least one uppercase letter"))
	}
	if p.RequireNonAlphanumeric {
		rules = append(rules, validation.Match(reSymbol).Error("must contain at least one non-alphanumeric character"))
	}

	return validation.Errors{
		"password": validation.Validate(password, rules...),
	}.Filter()
}
