// Package types provides type definitions for structured data used throughout the cv-pipeline system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// Profile represents a candidate's full career history as stored by the
// profile service. Role entries are the only list whose size drives chunking
// decisions; everything else is treated as small fixed-cost metadata.
type Profile struct {
	Name           string          `json:"name,omitempty"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Location       string          `json:"location,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	WorkExperience []Role          `json:"work_experience"`
	Education      []Education     `json:"education,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`
	Skills         []string        `json:"skills,omitempty"`
	Projects       []Project       `json:"projects,omitempty"`
}

// Role represents one work experience entry in a profile
type Role struct {
	ID          string   `json:"id,omitempty"`
	Company     string   `json:"company_name"`
	Title       string   `json:"job_title"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Location    string   `json:"location,omitempty"`
	Description []string `json:"description"`
	Skills      []string `json:"skills,omitempty"`
}

// Education represents one education entry in a profile
type Education struct {
	ID          string `json:"id,omitempty"`
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

// Certification represents one certification entry in a profile
type Certification struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Year   string `json:"year,omitempty"`
}

// Project represents one project entry in a profile
type Project struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RoleCount returns the number of work experience entries
func (p *Profile) RoleCount() int {
	return len(p.WorkExperience)
}

// BulletCount returns the total number of description bullets across all roles
func (p *Profile) BulletCount() int {
	count := 0
	for _, role := range p.WorkExperience {
		count += len(role.Description)
	}
	return count
}
