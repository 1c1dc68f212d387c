package jobs

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// JobTypes lists the accepted employment types.
func JobTypes() []any {
	return []any{"full-time", "part-time", "contract", "temporary", "internship"}
}

// PostJobInput is the payload for posting an opening.
type PostJobInput struct {
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Category       string   `json:"category"`
	Location       string   `json:"location"`
	JobType        string   `json:"job_type"`
	SalaryMin      int      `json:"salary_min"`
	SalaryMax      int      `json:"salary_max"`
	Description    string   `json:"description"`
	RequiredSkills []string `json:"required_skills"`
	Benefits       []string `json:"benefits"`
	Urgent         bool     `json:"urgent"`
}

// Validate checks the posting payload.
func (i PostJobInput) Validate() error {
	err := validation.ValidateStruct(&i,
		validation.Field(&i.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&i.Company, validation.Required, validation.Length(2, 200)),
		validation.Field(&i.Location, validation.Required),
		validation.Field(&i.JobType, validation.Required, validation.In(JobTypes()...)),
		validation.Field(&i.Description, validation.Required, validation.Length(10, 5000)),
		validation.Field(&i.SalaryMin, validation.Min(0)),
		validation.Field(&i.SalaryMax, validation.Min(0)),
	)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid job posting").
			WithCode(errors.CodeBadRequest)
	}

	if i.SalaryMax > 0 && i.SalaryMax < i.SalaryMin {
		return errors.New("salary_max must not be below salary_min", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	return nil
}
