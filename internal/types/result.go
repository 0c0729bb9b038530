package types

import "encoding/json"

// GeneratedResult is the unified document produced by the generation backend
// and the unit consumed by the quality validator and auto-corrector.
type GeneratedResult struct {
	CV          CV     `json:"cv"`
	CoverLetter string `json:"cover_letter,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

// CV is the structured resume portion of a generated result
type CV struct {
	Name                   string                 `json:"name,omitempty"`
	Contact                string                 `json:"contact,omitempty"`
	Summary                string                 `json:"summary,omitempty"`
	ProfessionalExperience ProfessionalExperience `json:"professional_experience"`
	Education              []Education            `json:"education,omitempty"`
	Certifications         []Certification        `json:"certifications,omitempty"`
	CoreCompetencies       []string               `json:"core_competencies,omitempty"`
}

// ProfessionalExperience wraps the generated role list
type ProfessionalExperience struct {
	Roles []CVRole `json:"roles"`
}

// CVRole represents one generated role entry. Field names intentionally differ
// from the profile-side Role: the backend emits company/title/bullets.
type CVRole struct {
	Company   string     `json:"company"`
	Title     string     `json:"title"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Location  string     `json:"location,omitempty"`
	Bullets   BulletList `json:"bullets"`
}

// BulletList tolerates the two bullet shapes backends produce: a plain string
// array, or an array of objects carrying a "content" field. Normalization to
// plain strings happens here, at the ingestion boundary, so downstream
// consumers never see the object form.
type BulletList []string

// UnmarshalJSON accepts ["a","b"] or [{"content":"a"},{"content":"b"}]
func (b *BulletList) UnmarshalJSON(data []byte) error {
	var plain []string
	if err := json.Unmarshal(data, &plain); err == nil {
		*b = plain
		return nil
	}

	var objects []struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(data, &objects); err != nil {
		return err
	}

	out := make([]string, 0, len(objects))
	for _, obj := range objects {
		if obj.Content != "" {
			out = append(out, obj.Content)
		}
	}
	*b = out
	return nil
}

// Roles returns the generated role list, tolerating a nil receiver
func (r *GeneratedResult) Roles() []CVRole {
	if r == nil {
		return nil
	}
	return r.CV.ProfessionalExperience.Roles
}

// SetRoles replaces the generated role list
func (r *GeneratedResult) SetRoles(roles []CVRole) {
	r.CV.ProfessionalExperience.Roles = roles
}

// BulletCount returns the total number of bullets across all generated roles
func (r *GeneratedResult) BulletCount() int {
	count := 0
	for _, role := range r.Roles() {
		count += len(role.Bullets)
	}
	return count
}
