package validation

import (
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/pkg/auth"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule limits
var (
	MaxSkills      = 50
	MaxSkillLength = 60

	NameMinLength = 1
	NameMaxLength = 100

	MinGraduationYear = 1950
	MaxGraduationYear = 2100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Currency *regexp.Regexp
}{
	Currency: regexp.MustCompile(`^[A-Z]{3}$`),
}

// Custom tag names usable in `binding:"..."` struct tags
const (
	TagSelfRole       = "selfrole"
	TagStrongPassword = "strongpassword"
	TagSkills         = "skills"
	TagJobType        = "jobtype"
	TagCurrency       = "currency"
)

// RegisterCustomValidators adds the application rules to v
func RegisterCustomValidators(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagSelfRole:       validateSelfRole,
		TagStrongPassword: validateStrongPassword,
		TagSkills:         validateSkills,
		TagJobType:        validateJobType,
		TagCurrency:       validateCurrency,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}

	// Report json field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return nil
}

// RegisterWithGin installs the custom rules on gin's default binding validator
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterCustomValidators(v)
}

func validateSelfRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).SelfRegistrable()
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	return auth.IsStrongPassword(fl.Field().String())
}

func validateSkills(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}
	if field.Len() > MaxSkills {
		return false
	}
	for i := 0; i < field.Len(); i++ {
		skill := strings.TrimSpace(field.Index(i).String())
		if skill == "" || utf8.RuneCountInString(skill) > MaxSkillLength {
			return false
		}
	}
	return true
}

func validateJobType(fl validator.FieldLevel) bool {
	switch models.JobType(fl.Field().String()) {
	case models.JobFullTime, models.JobPartTime, models.JobInternship, models.JobContract:
		return true
	}
	return false
}

func validateCurrency(fl validator.FieldLevel) bool {
	return CompiledPatterns.Currency.MatchString(fl.Field().String())
}

// NormalizeSkills trims, drops empties and de-duplicates case-insensitively, keeping first spelling
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// NormalizeEmail lower-cases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
