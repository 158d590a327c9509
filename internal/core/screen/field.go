package screen

import (
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Field describes one input of a screen.
//
// Pattern filters keystrokes: a value that does not match it is never stored.
// Rules is a validator tag checked before the value leaves the screen.
type Field struct {
	Name    string
	Label   string
	Pattern *regexp.Regexp
	Rules   string
	Message string
	// Edit fields belong to the confirm step (update screens) and are
	// checked on confirm instead of on submit.
	Edit   bool
	Secret bool
}

// Common input filters.
var (
	AccountIDPattern  = regexp.MustCompile(`^\d{0,11}$`)
	CardNumberPattern = regexp.MustCompile(`^\d{0,16}$`)
	TxnIDPattern      = regexp.MustCompile(`^\d{0,16}$`)
	MenuOptionPattern = regexp.MustCompile(`^\d{0,2}$`)
	UserIDPattern     = regexp.MustCompile(`^.{0,8}$`)
	PasswordPattern   = regexp.MustCompile(`^.{0,8}$`)
	PagePattern       = regexp.MustCompile(`^\d{0,4}$`)
	FlagPattern       = regexp.MustCompile(`^[YN]?$`)
	UserTypePattern   = regexp.MustCompile(`^[AU]?$`)
	MonthPattern      = regexp.MustCompile(`^\d{0,2}$`)
	YearPattern       = regexp.MustCompile(`^\d{0,4}$`)
	DatePattern       = regexp.MustCompile(`^[\d-]{0,10}$`)
	AmountPattern     = regexp.MustCompile(`^-?\d{0,9}(\.\d{0,2})?$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("month", func(fl validator.FieldLevel) bool {
		m, err := strconv.Atoi(fl.Field().String())
		return err == nil && m >= 1 && m <= 12
	})
	_ = v.RegisterValidation("nonzero_amount", func(fl validator.FieldLevel) bool {
		f, err := strconv.ParseFloat(fl.Field().String(), 64)
		return err == nil && f != 0
	})
	return v
}

// Accepts reports whether value passes the input filter.
func (f Field) Accepts(value string) bool {
	return f.Pattern == nil || f.Pattern.MatchString(value)
}

// Check validates value against Rules and returns the message to show, or ""
// when the value is fine.
func (f Field) Check(value string) string {
	if f.Rules == "" {
		return ""
	}
	if err := validate.Var(value, f.Rules); err != nil {
		if f.Message != "" {
			return f.Message
		}
		return f.Label + " is not valid"
	}
	return ""
}
