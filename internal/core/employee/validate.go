package employee

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/ogurasousui/codex-graphql-employee/internal/core/apperror"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/validation"
)

// MinSalary は給与の下限です。
const MinSalary = 1000

const (
	dateLayout = "2006-01-02"

	msgInvalidSalary = "Salary must be a number and at least 1000"
	msgInvalidDate   = "Date of joining must be a valid date (YYYY-MM-DD or RFC 3339)"
)

var (
	dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", dateLayout}

	errInvalidDate = errors.New("employee: invalid date")
)

// ParseDate は入社日の文字列を UTC の時刻に変換します。
func ParseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errInvalidDate
}

func validateCreateInput(in CreateEmployeeInput) error {
	var c apperror.Collector

	requireText(&c, in.FirstName, "First name")
	requireText(&c, in.LastName, "Last name")
	if validation.IsBlank(in.Email) {
		c.Add("Email is required")
	} else {
		c.Merge(validation.ValidateEmail(in.Email))
	}
	requireText(&c, in.Designation, "Designation")
	if in.Salary == nil {
		c.Add("Salary is required")
	} else if !isValidSalary(*in.Salary) {
		c.Add(msgInvalidSalary)
	}
	if validation.IsBlank(in.DateOfJoining) {
		c.Add("Date of joining is required")
	} else if _, err := ParseDate(in.DateOfJoining); err != nil {
		c.Add(msgInvalidDate)
	}
	requireText(&c, in.Department, "Department")

	if in.Gender != nil {
		c.Merge(validation.ValidateGender(*in.Gender))
	}

	return c.Err()
}

// validateUpdateInput は指定された項目のみを検証します。
// null を許容しない項目に null が明示された場合はエラーとします。
func validateUpdateInput(in UpdateEmployeeInput) error {
	var c apperror.Collector

	rejectNull(&c, in.FirstName, "First name")
	rejectNull(&c, in.LastName, "Last name")
	rejectNull(&c, in.Email, "Email")
	rejectNull(&c, in.Designation, "Designation")
	rejectNull(&c, in.Salary, "Salary")
	rejectNull(&c, in.DateOfJoining, "Date of joining")
	rejectNull(&c, in.Department, "Department")

	if in.Email.HasValue() {
		c.Merge(validation.ValidateEmail(*in.Email.Value))
	}
	if in.Salary.HasValue() && !isValidSalary(*in.Salary.Value) {
		c.Add(msgInvalidSalary)
	}
	if in.DateOfJoining.HasValue() {
		if _, err := ParseDate(*in.DateOfJoining.Value); err != nil {
			c.Add(msgInvalidDate)
		}
	}
	if in.Gender.HasValue() {
		c.Merge(validation.ValidateGender(*in.Gender.Value))
	}

	return c.Err()
}

func requireText(c *apperror.Collector, value, label string) {
	if validation.IsBlank(value) {
		c.Add(label + " is required")
	}
}

func rejectNull[T any](c *apperror.Collector, field Optional[T], label string) {
	if field.IsNull() {
		c.Add(label + " cannot be null")
	}
}

func isValidSalary(salary float64) bool {
	if math.IsNaN(salary) || math.IsInf(salary, 0) {
		return false
	}
	return salary >= MinSalary
}
