package models

import "time"

// Domain models matching the database schema in db/migrations.

type Posting struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	WorkMode     string    `json:"work_mode" db:"work_mode"`
	ContractMode string    `json:"contract_mode" db:"contract_mode"`
	Available    bool      `json:"available" db:"available"`
	Slug         string    `json:"slug" db:"slug"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Applicant struct {
	ID         int64     `json:"id" db:"id"`
	PostingID  int64     `json:"posting_id" db:"posting_id"`
	FullName   string    `json:"full_name" db:"full_name"`
	Phone      string    `json:"phone" db:"phone"`
	Email      string    `json:"email" db:"email"`
	Skills     string    `json:"skills" db:"skills"`
	VideoRef   string    `json:"video_ref" db:"video_ref"`
	Transcript string    `json:"transcript" db:"transcript"`
	Profile    string    `json:"profile" db:"profile"`
	VideoURL   string    `json:"video_url" db:"video_url"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// NewPosting returns a posting open for applications. Slug, ID and CreatedAt
// are assigned on creation.
func NewPosting(name, description, workMode, contractMode string) *Posting {
	return &Posting{
		Name:         name,
		Description:  description,
		WorkMode:     workMode,
		ContractMode: contractMode,
		Available:    true,
	}
}

func NewApplicant(postingID int64, fullName string) *Applicant {
	return &Applicant{PostingID: postingID, FullName: fullName}
}

// PostingPatch carries a partial update. A nil field was not supplied and is
// left untouched; a non-nil field is written even when it holds a zero value.
// Slug, ID and CreatedAt are immutable and have no counterpart here.
type PostingPatch struct {
	Name         *string `json:"name,omitempty"`
	Description  *string `json:"description,omitempty"`
	WorkMode     *string `json:"work_mode,omitempty"`
	ContractMode *string `json:"contract_mode,omitempty"`
	Available    *bool   `json:"available,omitempty"`
}

func (p PostingPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.WorkMode == nil && p.ContractMode == nil && p.Available == nil
}

// Apply copies the supplied fields onto dst.
func (p PostingPatch) Apply(dst *Posting) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.WorkMode != nil {
		dst.WorkMode = *p.WorkMode
	}
	if p.ContractMode != nil {
		dst.ContractMode = *p.ContractMode
	}
	if p.Available != nil {
		dst.Available = *p.Available
	}
}

// ApplicantPatch follows the same rules as PostingPatch. The owning posting
// cannot be changed.
type ApplicantPatch struct {
	FullName   *string `json:"full_name,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Email      *string `json:"email,omitempty"`
	Skills     *string `json:"skills,omitempty"`
	VideoRef   *string `json:"video_ref,omitempty"`
	Transcript *string `json:"transcript,omitempty"`
	Profile    *string `json:"profile,omitempty"`
	VideoURL   *string `json:"video_url,omitempty"`
}

func (p ApplicantPatch) IsEmpty() bool {
	return p.FullName == nil && p.Phone == nil && p.Email == nil && p.Skills == nil &&
		p.VideoRef == nil && p.Transcript == nil && p.Profile == nil && p.VideoURL == nil
}

func (p ApplicantPatch) Apply(dst *Applicant) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&dst.FullName, p.FullName)
	set(&dst.Phone, p.Phone)
	set(&dst.Email, p.Email)
	set(&dst.Skills, p.Skills)
	set(&dst.VideoRef, p.VideoRef)
	set(&dst.Transcript, p.Transcript)
	set(&dst.Profile, p.Profile)
	set(&dst.VideoURL, p.VideoURL)
}
