// Package jobs implements the marketplace side of JobConnect: employers
// post openings and workers browse them with search, filters and sorting.
package jobs

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Status tracks whether a posting accepts applications.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Job is a posted opening.
type Job struct {
	bun.BaseModel  `bun:"table:jobs,alias:job"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	EmployerID     string     `bun:"employer_id,notnull" json:"employer_id"`
	Title          string     `bun:"title,notnull" json:"title"`
	Company        string     `bun:"company,notnull" json:"company"`
	Category       string     `bun:"category" json:"category,omitempty"`
	Location       string     `bun:"location" json:"location,omitempty"`
	JobType        string     `bun:"job_type" json:"job_type,omitempty"`
	SalaryMin      int        `bun:"salary_min" json:"salary_min,omitempty"`
	SalaryMax      int        `bun:"salary_max" json:"salary_max,omitempty"`
	Description    string     `bun:"description" json:"description,omitempty"`
	RequiredSkills []string   `bun:"required_skills,type:jsonb" json:"required_skills"`
	Benefits       []string   `bun:"benefits,type:jsonb" json:"benefits,omitempty"`
	Urgent         bool       `bun:"urgent" json:"urgent"`
	Status         Status     `bun:"status,notnull,default:'open'" json:"status"`
	PostedAt       *time.Time `bun:"posted_at,nullzero,default:current_timestamp" json:"posted_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Open reports whether the posting still accepts applications.
func (j *Job) Open() bool {
	return j != nil && j.Status == StatusOpen
}

// Salary returns the posting's midpoint salary used for salary sorting.
func (j *Job) Salary() int {
	if j.SalaryMax > 0 {
		return (j.SalaryMin + j.SalaryMax) / 2
	}
	return j.SalaryMin
}
