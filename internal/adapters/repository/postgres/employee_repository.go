package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/employee"
	pgdb "github.com/ogurasousui/codex-graphql-employee/internal/platform/db/postgres"
)

const employeesEmailKey = "employees_email_key"

const employeeColumns = `id, first_name, last_name, email, gender, designation, salary, date_of_joining, department, employee_photo, created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (first_name, last_name, email, gender, designation, salary, date_of_joining, department, employee_photo, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING `+employeeColumns+`
    `,
		e.FirstName,
		e.LastName,
		e.Email,
		nullableGender(e.Gender),
		e.Designation,
		e.Salary,
		e.DateOfJoining,
		e.Department,
		nullableString(e.Photo),
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET first_name = $1,
               last_name = $2,
               email = $3,
               gender = $4,
               designation = $5,
               salary = $6,
               date_of_joining = $7,
               department = $8,
               employee_photo = $9,
               updated_at = $10
         WHERE id = $11
        RETURNING `+employeeColumns+`
    `,
		e.FirstName,
		e.LastName,
		e.Email,
		nullableGender(e.Gender),
		e.Designation,
		e.Salary,
		e.DateOfJoining,
		e.Department,
		nullableString(e.Photo),
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// FindByIDForUpdate は ID で社員を取得し、トランザクション終了まで行をロックします。
// 読み書きトランザクション外では FindByID と同じです。
func (r *EmployeeRepository) FindByIDForUpdate(ctx context.Context, id string) (*employee.Employee, error) {
	if !pgdb.InReadWriteTransaction(ctx) {
		return r.FindByID(ctx, id)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
           FOR UPDATE
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// FindByEmail はメールアドレスで社員を取得します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE email = $1
         LIMIT 1
    `, email)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は社員を作成日時の新しい順に取得します。
// フィルタの各項目は大文字小文字を区別しない部分一致で AND 結合されます。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, error) {
	args := make([]any, 0, 2)
	conditions := make([]string, 0, 2)

	if filter.Designation != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "strpos(lower(designation), lower("+placeholder+")) > 0")
		args = append(args, *filter.Designation)
	}

	if filter.Department != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "strpos(lower(department), lower("+placeholder+")) > 0")
		args = append(args, *filter.Department)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := `
        SELECT ` + employeeColumns + `
          FROM employees` + whereClause + `
         ORDER BY created_at DESC, id DESC
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}

	return employees, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id            string
		firstName     string
		lastName      string
		email         string
		gender        sql.NullString
		designation   string
		salary        float64
		dateOfJoining time.Time
		department    string
		photo         sql.NullString
		createdAt     time.Time
		updatedAt     time.Time
	)

	if err := row.Scan(
		&id,
		&firstName,
		&lastName,
		&email,
		&gender,
		&designation,
		&salary,
		&dateOfJoining,
		&department,
		&photo,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	emp := &employee.Employee{
		ID:            id,
		FirstName:     firstName,
		LastName:      lastName,
		Email:         email,
		Designation:   designation,
		Salary:        salary,
		DateOfJoining: dateOfJoining.UTC(),
		Department:    department,
		CreatedAt:     createdAt.UTC(),
		UpdatedAt:     updatedAt.UTC(),
	}
	if gender.Valid {
		g := employee.Gender(gender.String)
		emp.Gender = &g
	}
	if photo.Valid {
		p := photo.String
		emp.Photo = &p
	}
	return emp, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			if pgErr.ConstraintName == employeesEmailKey || pgErr.ConstraintName == "" {
				return employee.ErrEmailAlreadyExists
			}
		case checkViolationCode:
			if pgErr.ConstraintName == "employees_salary_check" {
				return employee.ErrInvalidSalary
			}
		}
	}

	return err
}

func nullableGender(value *employee.Gender) any {
	if value == nil {
		return nil
	}
	return string(*value)
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
