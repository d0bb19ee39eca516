package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/employee"
	pgdb "github.com/ogurasousui/codex-graphql-employee/internal/platform/db/postgres"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

type stubEmployeeRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubEmployeeRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

var employeeRowColumns = []string{
	"id", "first_name", "last_name", "email", "gender", "designation", "salary",
	"date_of_joining", "department", "employee_photo", "created_at", "updated_at",
}

func TestScanEmployee_Success(t *testing.T) {
	t.Parallel()

	joined := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	createdAt := time.Now().UTC()
	updatedAt := createdAt.Add(time.Minute)

	row := stubEmployeeRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 12 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*string)) = "emp-1"
		*(dest[1].(*string)) = "Taro"
		*(dest[2].(*string)) = "Yamada"
		*(dest[3].(*string)) = "taro@example.com"

		genderDest := dest[4].(*sql.NullString)
		genderDest.String = "Male"
		genderDest.Valid = true

		*(dest[5].(*string)) = "Engineer"
		*(dest[6].(*float64)) = 5000
		*(dest[7].(*time.Time)) = joined
		*(dest[8].(*string)) = "Platform"

		photoDest := dest[9].(*sql.NullString)
		photoDest.String = "https://media.example.com/employee_photos/a.png"
		photoDest.Valid = true

		*(dest[10].(*time.Time)) = createdAt
		*(dest[11].(*time.Time)) = updatedAt
		return nil
	}}

	emp, err := scanEmployee(row)
	if err != nil {
		t.Fatalf("scanEmployee returned error: %v", err)
	}

	if emp.Gender == nil || *emp.Gender != employee.GenderMale {
		t.Fatalf("expected gender Male, got %+v", emp.Gender)
	}
	if emp.Photo == nil || *emp.Photo != "https://media.example.com/employee_photos/a.png" {
		t.Fatalf("expected photo, got %+v", emp.Photo)
	}
	if emp.Salary != 5000 || !emp.DateOfJoining.Equal(joined) {
		t.Fatalf("unexpected employee %+v", emp)
	}
}

func TestScanEmployee_NullableColumns(t *testing.T) {
	t.Parallel()

	row := stubEmployeeRow{scanFn: func(dest ...interface{}) error {
		*(dest[0].(*string)) = "emp-1"
		return nil
	}}

	emp, err := scanEmployee(row)
	if err != nil {
		t.Fatalf("scanEmployee returned error: %v", err)
	}
	if emp.Gender != nil || emp.Photo != nil {
		t.Fatalf("expected nil gender and photo, got %+v", emp)
	}
}

func TestScanEmployee_NoRows(t *testing.T) {
	t.Parallel()

	row := stubEmployeeRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanEmployee(row)
	if !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestTranslateEmployeePgError(t *testing.T) {
	t.Parallel()

	uniqueErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: employeesEmailKey}
	if !errors.Is(translateEmployeePgError(uniqueErr), employee.ErrEmailAlreadyExists) {
		t.Fatalf("expected unique violation to map to ErrEmailAlreadyExists")
	}

	checkErr := &pgconn.PgError{Code: checkViolationCode, ConstraintName: "employees_salary_check"}
	if !errors.Is(translateEmployeePgError(checkErr), employee.ErrInvalidSalary) {
		t.Fatalf("expected check violation to map to ErrInvalidSalary")
	}

	if !errors.Is(translateEmployeePgError(pgx.ErrNoRows), employee.ErrEmployeeNotFound) {
		t.Fatalf("expected no rows to map to ErrEmployeeNotFound")
	}

	other := errors.New("other")
	if translateEmployeePgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestEmployeeRepository_List_WithFilters(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	query := regexp.QuoteMeta(`FROM employees WHERE strpos(lower(designation), lower($1)) > 0 AND strpos(lower(department), lower($2)) > 0`) +
		`\s+` + regexp.QuoteMeta(`ORDER BY created_at DESC, id DESC`)

	now := time.Now().UTC()
	rows := pgxmock.NewRows(employeeRowColumns).
		AddRow("emp-2", "Hanako", "Sato", "hanako@example.com", nil, "Senior Engineer", 7000.0, now, "Platform", nil, now, now).
		AddRow("emp-1", "Taro", "Yamada", "taro@example.com", "Male", "Engineer", 5000.0, now, "Platform Ops", "https://media.example.com/a.png", now, now)

	mock.ExpectQuery(query).
		WithArgs("engineer", "platform").
		WillReturnRows(rows)

	designation := "engineer"
	department := "platform"
	employees, err := repo.List(context.Background(), employee.ListEmployeesFilter{
		Designation: &designation,
		Department:  &department,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(employees) != 2 {
		t.Fatalf("expected 2 employees, got %d", len(employees))
	}
	if employees[0].Gender != nil || employees[1].Gender == nil {
		t.Fatalf("unexpected gender mapping: %+v %+v", employees[0], employees[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_List_NoFilter(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM employees`) + `\s+` + regexp.QuoteMeta(`ORDER BY created_at DESC, id DESC`)).
		WillReturnRows(pgxmock.NewRows(employeeRowColumns))

	employees, err := repo.List(context.Background(), employee.ListEmployeesFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if employees == nil || len(employees) != 0 {
		t.Fatalf("expected empty slice, got %v", employees)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_Create_DuplicateEmail(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO employees`)).
		WithArgs("Taro", "Yamada", "taro@example.com", nil, "Engineer", 5000.0, now, "Platform", nil, now, now).
		WillReturnError(&pgconn.PgError{Code: uniqueViolationCode, ConstraintName: employeesEmailKey})

	_, err = repo.Create(context.Background(), &employee.Employee{
		FirstName:     "Taro",
		LastName:      "Yamada",
		Email:         "taro@example.com",
		Designation:   "Engineer",
		Salary:        5000,
		DateOfJoining: now,
		Department:    "Platform",
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if !errors.Is(err, employee.ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_Delete(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM employees WHERE id = $1`)).
		WithArgs("emp-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM employees WHERE id = $1`)).
		WithArgs("emp-2").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), "emp-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := repo.Delete(context.Background(), "emp-2"); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_FindByIDForUpdate(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)
	tm := pgdb.NewTransactionManager(mock)
	now := time.Now().UTC()

	// トランザクション外ではロックしない
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`) + `\s+` + regexp.QuoteMeta(`LIMIT 1`)).
		WithArgs("emp-1").
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow("emp-1", "Taro", "Yamada", "taro@example.com", nil, "Engineer", 5000.0, now, "Platform", nil, now, now))

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`) + `\s+` + regexp.QuoteMeta(`FOR UPDATE`)).
		WithArgs("emp-1").
		WillReturnRows(pgxmock.NewRows(employeeRowColumns).
			AddRow("emp-1", "Taro", "Yamada", "taro@example.com", nil, "Engineer", 5000.0, now, "Platform", nil, now, now))
	mock.ExpectCommit()

	if _, err := repo.FindByIDForUpdate(context.Background(), "emp-1"); err != nil {
		t.Fatalf("FindByIDForUpdate outside transaction returned error: %v", err)
	}

	err = tm.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		found, err := repo.FindByIDForUpdate(ctx, "emp-1")
		if err != nil {
			return err
		}
		if found.ID != "emp-1" {
			t.Fatalf("unexpected employee %+v", found)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("FindByIDForUpdate in transaction returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
