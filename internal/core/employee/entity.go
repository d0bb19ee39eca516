package employee

import "time"

// Gender は社員の性別です。
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Employee は社員エンティティです。
type Employee struct {
	ID            string
	FirstName     string
	LastName      string
	Email         string
	Gender        *Gender
	Designation   string
	Salary        float64
	DateOfJoining time.Time
	Department    string
	Photo         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
