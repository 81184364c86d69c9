package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/and161185/shopfloor/internal/errs"
	"github.com/and161185/shopfloor/internal/model"
	"github.com/go-playground/validator/v10"
)

var (
	usernameStrip = regexp.MustCompile(`[^A-Za-z0-9@._-]`)
	usernameOK    = regexp.MustCompile(`^[A-Za-z0-9@._-]+$`)
	phoneRe       = regexp.MustCompile(`^[+]?[0-9]+$`)
	emailRe       = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
)

// Minimum lengths enforced at registration.
const (
	MinUsernameLen = 4
	MinPasswordLen = 8
)

// SanitizeUsername drops every character outside [A-Za-z0-9@._-].
func SanitizeUsername(s string) string {
	return usernameStrip.ReplaceAllString(strings.TrimSpace(s), "")
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("email_tld", func(fl validator.FieldLevel) bool {
		return emailRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameOK.MatchString(fl.Field().String())
	})
	return v
}

// check is one validation stage: a field value, its validator tag and the message reported on failure.
type check struct {
	value any
	tag   string
	msg   string
}

// runChecks evaluates stages in order and stops at the first failure.
func runChecks(v *validator.Validate, checks []check) error {
	for _, c := range checks {
		if err := v.Var(c.value, c.tag); err != nil {
			return fmt.Errorf("%w: %s", errs.ErrInvalidInput, c.msg)
		}
	}
	return nil
}

// validateRegistration applies the registration rules in their fixed order.
func validateRegistration(v *validator.Validate, r model.Registration) error {
	required := []check{
		{strings.TrimSpace(r.Username), "required", "username is required"},
		{strings.TrimSpace(r.Password), "required", "password is required"},
		{strings.TrimSpace(r.Role), "required", "role is required"},
		{strings.TrimSpace(r.FullName), "required", "full name is required"},
		{strings.TrimSpace(r.Department), "required", "department is required"},
	}
	if err := runChecks(v, required); err != nil {
		return err
	}
	if _, ok := model.ParseRole(strings.TrimSpace(r.Role)); !ok {
		return fmt.Errorf("%w: unknown role %q", errs.ErrInvalidInput, r.Role)
	}
	return runChecks(v, []check{
		{strings.TrimSpace(r.Email), "omitempty,email_tld", "invalid email format"},
		{strings.TrimSpace(r.Phone), "omitempty,phone", "invalid phone number"},
		{strings.TrimSpace(r.Username), fmt.Sprintf("min=%d", MinUsernameLen), fmt.Sprintf("username must be at least %d characters", MinUsernameLen)},
		{strings.TrimSpace(r.Username), "username", "username may contain only letters, digits and @._-"},
		{r.Password, fmt.Sprintf("min=%d", MinPasswordLen), fmt.Sprintf("password must be at least %d characters", MinPasswordLen)},
	})
}

// itemInput carries the struct-level rules for a new inventory item.
type itemInput struct {
	ItemCode      string `validate:"required,max=64"`
	Description   string `validate:"required"`
	ReorderPoint  int64  `validate:"gte=0"`
	MinStockLevel int64  `validate:"gte=0"`
}

func validateItem(v *validator.Validate, it model.InventoryItem) error {
	in := itemInput{
		ItemCode:      strings.TrimSpace(it.ItemCode),
		Description:   strings.TrimSpace(it.Description),
		ReorderPoint:  it.ReorderPoint,
		MinStockLevel: it.MinStockLevel,
	}
	if err := v.Struct(in); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return fmt.Errorf("%w: %s failed %s", errs.ErrInvalidInput, strings.ToLower(ve[0].Field()), ve[0].Tag())
		}
		return fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	if it.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price must not be negative", errs.ErrInvalidInput)
	}
	return nil
}
