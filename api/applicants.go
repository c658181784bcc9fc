package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/garnizeh/vagas/internal/records"
	"github.com/garnizeh/vagas/pkg/models"
)

// ApplicantStore is the part of the record store used by ApplicantsHandler.
type ApplicantStore interface {
	CreateApplicant(ctx context.Context, a *models.Applicant) (*models.Applicant, error)
	GetApplicant(ctx context.Context, id int64) (*models.Applicant, error)
	ListApplicants(ctx context.Context, page records.Page) (records.List[models.Applicant], error)
	UpdateApplicant(ctx context.Context, id int64, patch models.ApplicantPatch) (*models.Applicant, error)
	DeleteApplicant(ctx context.Context, id int64) error
	RequestProfile(ctx context.Context, id int64) (int64, error)
}

type ApplicantsHandler struct {
	store ApplicantStore
}

func NewApplicantsHandler(s ApplicantStore) *ApplicantsHandler {
	return &ApplicantsHandler{store: s}
}

const applicantNotFound = "Candidato não encontrado"

type createApplicantRequest struct {
	PostingID  int64  `json:"posting_id"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Skills     string `json:"skills"`
	VideoRef   string `json:"video_ref"`
	Transcript string `json:"transcript"`
	Profile    string `json:"profile"`
	VideoURL   string `json:"video_url"`
}

type profileJobResponse struct {
	JobID       int64 `json:"job_id"`
	ApplicantID int64 `json:"applicant_id"`
}

func (h *ApplicantsHandler) CreateApplicant(w http.ResponseWriter, r *http.Request) {
	var req createApplicantRequest
	if !readValidated(w, r, schemaApplicantCreate, &req) {
		return
	}

	a := models.NewApplicant(req.PostingID, req.FullName)
	a.Phone = req.Phone
	a.Email = req.Email
	a.Skills = req.Skills
	a.VideoRef = req.VideoRef
	a.Transcript = req.Transcript
	a.Profile = req.Profile
	a.VideoURL = req.VideoURL

	created, err := h.store.CreateApplicant(r.Context(), a)
	if err != nil {
		writeStoreError(w, r, err, applicantNotFound)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/applicants/%d", created.ID))
	writeJSON(w, created, http.StatusCreated)
}

func (h *ApplicantsHandler) ListApplicants(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListApplicants(r.Context(), parsePage(r))
	if err != nil {
		writeStoreError(w, r, err, applicantNotFound)
		return
	}

	writeJSON(w, newListResponse(list), http.StatusOK)
}

func (h *ApplicantsHandler) GetApplicant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	a, err := h.store.GetApplicant(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, applicantNotFound)
		return
	}

	writeJSON(w, a, http.StatusOK)
}

// UpdateApplicant serves both PUT and PATCH; only supplied fields change.
func (h *ApplicantsHandler) UpdateApplicant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var patch models.ApplicantPatch
	if !readValidated(w, r, schemaApplicantUpdate, &patch) {
		return
	}

	a, err := h.store.UpdateApplicant(r.Context(), id, patch)
	if err != nil {
		writeStoreError(w, r, err, applicantNotFound)
		return
	}

	writeJSON(w, a, http.StatusOK)
}

func (h *ApplicantsHandler) DeleteApplicant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteApplicant(r.Context(), id); err != nil {
		writeStoreError(w, r, err, applicantNotFound)
		return
	}

	writeJSON(w, messageResponse{Message: "Candidato deletado com sucesso"}, http.StatusOK)
}

// RequestProfile queues profile generation and answers 202.
func (h *ApplicantsHandler) RequestProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	jobID, err := h.store.RequestProfile(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, applicantNotFound)
		return
	}

	writeJSON(w, profileJobResponse{JobID: jobID, ApplicantID: id}, http.StatusAccepted)
}
