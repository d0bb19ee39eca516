package employee

import "github.com/ogurasousui/codex-graphql-employee/internal/core/apperror"

var (
	ErrEmployeeNotFound       = apperror.NotFound("Employee not found")
	ErrEmailAlreadyExists     = apperror.Conflict("Employee with this email already exists")
	ErrInvalidSalary          = apperror.Validation(msgInvalidSalary)
	ErrSearchCriteriaRequired = apperror.Validation("Please provide at least one search parameter (designation or department)")
)
