package jobs

import "time"

type Job struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Requirements    []string  `json:"requirements"`
	Salary          int64     `json:"salary"`
	ExperienceLevel int       `json:"experienceLevel"`
	Location        string    `json:"location"`
	JobType         string    `json:"jobType"`
	Positions       int       `json:"positions"`
	CompanyID       string    `json:"companyId"`
	CreatedBy       string    `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
}
