package models_test

import (
	"testing"

	"github.com/garnizeh/vagas/pkg/models"
)

func ptr[T any](v T) *T { return &v }

func TestPostingPatch_ApplyOnlySupplied(t *testing.T) {
	p := models.Posting{Name: "Dev", Description: "desc", WorkMode: "remote", ContractMode: "CLT", Available: true, Slug: "dev-0001"}

	patch := models.PostingPatch{Name: ptr("Senior Dev"), Available: ptr(false)}
	if patch.IsEmpty() {
		t.Fatalf("patch should not be empty")
	}
	patch.Apply(&p)

	if p.Name != "Senior Dev" || p.Available {
		t.Fatalf("supplied fields not applied: %#v", p)
	}
	if p.Description != "desc" || p.WorkMode != "remote" || p.ContractMode != "CLT" || p.Slug != "dev-0001" {
		t.Fatalf("omitted fields changed: %#v", p)
	}
}

func TestPostingPatch_ZeroValueIsWritten(t *testing.T) {
	p := models.Posting{WorkMode: "remote"}
	models.PostingPatch{WorkMode: ptr("")}.Apply(&p)
	if p.WorkMode != "" {
		t.Fatalf("explicit empty value should overwrite, got %q", p.WorkMode)
	}
}

func TestApplicantPatch(t *testing.T) {
	if !(models.ApplicantPatch{}).IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}

	a := models.Applicant{FullName: "Ana", Email: "ana@example.com", Profile: "old"}
	models.ApplicantPatch{Profile: ptr("new")}.Apply(&a)
	if a.Profile != "new" || a.FullName != "Ana" || a.Email != "ana@example.com" {
		t.Fatalf("unexpected applicant after patch: %#v", a)
	}
}

func TestNewPosting_AvailableByDefault(t *testing.T) {
	p := models.NewPosting("Backend", "Go services", "remote", "PJ")
	if !p.Available {
		t.Fatalf("new postings should be available")
	}
	if p.Slug != "" || p.ID != 0 || !p.CreatedAt.IsZero() {
		t.Fatalf("storage-assigned fields must be unset: %+v", p)
	}

	a := models.NewApplicant(p.ID, "Ana")
	if a.FullName != "Ana" || a.PostingID != p.ID {
		t.Fatalf("unexpected applicant %+v", a)
	}
}
