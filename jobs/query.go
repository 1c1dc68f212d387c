package jobs

import (
	"sort"
	"strings"
)

// SortOrder enumerates the supported listing orders.
type SortOrder string

const (
	SortNewest     SortOrder = "newest"
	SortSalaryHigh SortOrder = "salary-high"
	SortSalaryLow  SortOrder = "salary-low"
)

// Query filters and orders a job listing. Zero values match everything.
type Query struct {
	Search   string
	Category string
	Location string
	JobType  string
	Sort     SortOrder
}

// FilterSort applies the query to an in-memory listing. Search matches the
// title, company and required skills case-insensitively.
func FilterSort(listing []*Job, q Query) []*Job {
	out := make([]*Job, 0, len(listing))

	term := strings.ToLower(strings.TrimSpace(q.Search))

	for _, job := range listing {
		if job == nil {
			continue
		}
		if q.Category != "" && !strings.EqualFold(job.Category, q.Category) {
			continue
		}
		if q.Location != "" && !strings.Contains(strings.ToLower(job.Location), strings.ToLower(q.Location)) {
			continue
		}
		if q.JobType != "" && !strings.EqualFold(job.JobType, q.JobType) {
			continue
		}
		if term != "" && !matchesSearch(job, term) {
			continue
		}
		out = append(out, job)
	}

	switch q.Sort {
	case SortSalaryHigh:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Salary() > out[j].Salary()
		})
	case SortSalaryLow:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Salary() < out[j].Salary()
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return postedAfter(out[i], out[j])
		})
	}

	return out
}

func matchesSearch(job *Job, term string) bool {
	if strings.Contains(strings.ToLower(job.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(job.Company), term) {
		return true
	}
	for _, skill := range job.RequiredSkills {
		if strings.Contains(strings.ToLower(skill), term) {
			return true
		}
	}
	return false
}

func postedAfter(a, b *Job) bool {
	if a.PostedAt == nil {
		return false
	}
	if b.PostedAt == nil {
		return true
	}
	return a.PostedAt.After(*b.PostedAt)
}
