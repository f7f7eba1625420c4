package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Struct.
var v = validator.New()

// profileUsername mirrors the external profile directory's username policy:
// 3-20 characters, letters, digits and underscores.
var profileUsername = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

func init() {
	_ = v.RegisterValidation("profile_username", func(fl validator.FieldLevel) bool {
		return ProfileUsername(fl.Field().String())
	})
}

// ProfileUsername reports whether s is acceptable as an external profile
// username. At most one underscore is allowed and it may not lead or trail.
func ProfileUsername(s string) bool {
	if !profileUsername.MatchString(s) {
		return false
	}
	if strings.Count(s, "_") > 1 {
		return false
	}
	return !strings.HasPrefix(s, "_") && !strings.HasSuffix(s, "_")
}

// Struct validates the given struct using its validate tags.
// Returns a human-readable error string or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}
