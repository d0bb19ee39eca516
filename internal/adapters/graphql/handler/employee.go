package handler

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/ogurasousui/codex-graphql-employee/internal/core/employee"
)

type employeeInput struct {
	FirstName     string
	LastName      string
	Email         string
	Gender        *string
	Designation   string
	Salary        float64
	DateOfJoining string
	Department    string
	EmployeePhoto *string
}

type updateEmployeeInput struct {
	FirstName     graphql.NullString
	LastName      graphql.NullString
	Email         graphql.NullString
	Gender        graphql.NullString
	Designation   graphql.NullString
	Salary        graphql.NullFloat
	DateOfJoining graphql.NullString
	Department    graphql.NullString
	EmployeePhoto graphql.NullString
}

type employeeIDArgs struct {
	Eid graphql.ID
}

type searchEmployeesArgs struct {
	Designation *string
	Department  *string
}

type addEmployeeArgs struct {
	Input employeeInput
}

type updateEmployeeArgs struct {
	Eid   graphql.ID
	Input updateEmployeeInput
}

// GetAllEmployees は全社員を新しい順に返します。
func (r *Resolver) GetAllEmployees(ctx context.Context) ([]*employeeResolver, error) {
	if _, err := r.authenticate(ctx); err != nil {
		return nil, err
	}

	list, err := r.employees.ListEmployees(ctx)
	if err != nil {
		return nil, r.toGraphQLError(ctx, err)
	}
	return toEmployeeResolvers(list), nil
}

// GetEmployeeByID は ID で社員を返します。
func (r *Resolver) GetEmployeeByID(ctx context.Context, args employeeIDArgs) (*employeeResolver, error) {
	if _, err := r.authenticate(ctx); err != nil {
		return nil, err
	}

	emp, err := r.employees.GetEmployee(ctx, employee.GetEmployeeInput{ID: string(args.Eid)})
	if err != nil {
		return nil, r.toGraphQLError(ctx, err)
	}
	return &employeeResolver{e: emp}, nil
}

// SearchEmployees は職位・部署で社員を検索します。
func (r *Resolver) SearchEmployees(ctx context.Context, args searchEmployeesArgs) ([]*employeeResolver, error) {
	if _, err := r.authenticate(ctx); err != nil {
		return nil, err
	}

	list, err := r.employees.SearchEmployees(ctx, employee.SearchEmployeesInput{
		Designation: args.Designation,
		Department:  args.Department,
	})
	if err != nil {
		return nil, r.toGraphQLError(ctx, err)
	}
	return toEmployeeResolvers(list), nil
}

// AddEmployee は社員を追加します。
func (r *Resolver) AddEmployee(ctx context.Context, args addEmployeeArgs) (*employeeResolver, error) {
	if _, err := r.authenticate(ctx); err != nil {
		return nil, err
	}

	in := args.Input
	salary := in.Salary
	emp, err := r.employees.CreateEmployee(ctx, employee.CreateEmployeeInput{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		Gender:        in.Gender,
		Designation:   in.Designation,
		Salary:        &salary,
		DateOfJoining: in.DateOfJoining,
		Department:    in.Department,
		Photo:         in.EmployeePhoto,
	})
	if err != nil {
		return nil, r.toGraphQLError(ctx, err)
	}
	return &employeeResolver{e: emp}, nil
}

// UpdateEmployee は入力に含まれる項目のみを更新します。
func (r *Resolver) UpdateEmployee(ctx context.Context, args updateEmployeeArgs) (*employeeResolver, error) {
	if _, err := r.authenticate(ctx); err != nil {
		return nil, err
	}

	in := args.Input
	emp, err := r.employees.UpdateEmployee(ctx, employee.UpdateEmployeeInput{
		ID:            string(args.Eid),
		FirstName:     optionalString(in.FirstName),
		LastName:      optionalString(in.LastName),
		Email:         optionalString(in.Email),
		Gender:        optionalString(in.Gender),
		Designation:   optionalString(in.Designation),
		Salary:        employee.Optional[float64]{Set: in.Salary.Set, Value: in.Salary.Value},
		DateOfJoining: optionalString(in.DateOfJoining),
		Department:    optionalString(in.Department),
		Photo:         optionalString(in.EmployeePhoto),
	})
	if err != nil {
		return nil, r.toGraphQLError(ctx, err)
	}
	return &employeeResolver{e: emp}, nil
}

// DeleteEmployee は社員を削除し、削除前の状態を返します。
func (r *Resolver) DeleteEmployee(ctx context.Context, args employeeIDArgs) (*employeeResolver, error) {
	if _, err := r.authenticate(ctx); err != nil {
		return nil, err
	}

	emp, err := r.employees.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: string(args.Eid)})
	if err != nil {
		return nil, r.toGraphQLError(ctx, err)
	}
	return &employeeResolver{e: emp}, nil
}

func optionalString(v graphql.NullString) employee.Optional[string] {
	return employee.Optional[string]{Set: v.Set, Value: v.Value}
}

func toEmployeeResolvers(list []*employee.Employee) []*employeeResolver {
	out := make([]*employeeResolver, 0, len(list))
	for _, e := range list {
		out = append(out, &employeeResolver{e: e})
	}
	return out
}

type employeeResolver struct {
	e *employee.Employee
}

func (r *employeeResolver) ID() graphql.ID {
	return graphql.ID(r.e.ID)
}

func (r *employeeResolver) FirstName() string {
	return r.e.FirstName
}

func (r *employeeResolver) LastName() string {
	return r.e.LastName
}

func (r *employeeResolver) Email() string {
	return r.e.Email
}

func (r *employeeResolver) Gender() *string {
	if r.e.Gender == nil {
		return nil
	}
	g := string(*r.e.Gender)
	return &g
}

func (r *employeeResolver) Designation() string {
	return r.e.Designation
}

func (r *employeeResolver) Salary() float64 {
	return r.e.Salary
}

func (r *employeeResolver) DateOfJoining() string {
	return formatTimestamp(r.e.DateOfJoining)
}

func (r *employeeResolver) Department() string {
	return r.e.Department
}

func (r *employeeResolver) EmployeePhoto() *string {
	return r.e.Photo
}

func (r *employeeResolver) CreatedAt() string {
	return formatTimestamp(r.e.CreatedAt)
}

func (r *employeeResolver) UpdatedAt() string {
	return formatTimestamp(r.e.UpdatedAt)
}
