package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/garnizeh/vagas/internal/records"
	"github.com/garnizeh/vagas/internal/slug"
	"github.com/garnizeh/vagas/pkg/models"
	"github.com/gorilla/mux"
)

// PostingStore is the part of the record store used by PostingsHandler.
type PostingStore interface {
	CreatePosting(ctx context.Context, p *models.Posting) (*models.Posting, error)
	GetPosting(ctx context.Context, id int64) (*models.Posting, error)
	GetPostingBySlug(ctx context.Context, slug string) (*models.Posting, error)
	ListPostings(ctx context.Context, page records.Page) (records.List[models.Posting], error)
	UpdatePosting(ctx context.Context, id int64, patch models.PostingPatch) (*models.Posting, error)
	DeletePosting(ctx context.Context, id int64) error
	ListApplicantsForPosting(ctx context.Context, postingID int64, page records.Page) (records.List[models.Applicant], error)
}

type PostingsHandler struct {
	store PostingStore
}

func NewPostingsHandler(s PostingStore) *PostingsHandler {
	return &PostingsHandler{store: s}
}

const postingNotFound = "Vaga não encontrada"

type createPostingRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	WorkMode     string `json:"work_mode"`
	ContractMode string `json:"contract_mode"`
	Available    *bool  `json:"available"`
}

func (h *PostingsHandler) CreatePosting(w http.ResponseWriter, r *http.Request) {
	var req createPostingRequest
	if !readValidated(w, r, schemaPostingCreate, &req) {
		return
	}

	// A name without any slug-safe character would produce a bare suffix.
	if slug.Normalize(req.Name) == "" {
		writeErrorDetails(w, r, http.StatusUnprocessableEntity, CodeValidationFailed, "request body failed validation",
			[]FieldError{{Field: "name", Message: "name must contain at least one letter or digit"}})
		return
	}

	p := models.NewPosting(req.Name, req.Description, req.WorkMode, req.ContractMode)
	if req.Available != nil {
		p.Available = *req.Available
	}

	created, err := h.store.CreatePosting(r.Context(), p)
	if err != nil {
		writeStoreError(w, r, err, postingNotFound)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/v1/postings/%d", created.ID))
	writeJSON(w, created, http.StatusCreated)
}

func (h *PostingsHandler) ListPostings(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListPostings(r.Context(), parsePage(r))
	if err != nil {
		writeStoreError(w, r, err, postingNotFound)
		return
	}

	writeJSON(w, newListResponse(list), http.StatusOK)
}

func (h *PostingsHandler) GetPosting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.store.GetPosting(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, postingNotFound)
		return
	}

	writeJSON(w, p, http.StatusOK)
}

// GetPublicPosting serves the shareable page data for a slug.
func (h *PostingsHandler) GetPublicPosting(w http.ResponseWriter, r *http.Request) {
	s := mux.Vars(r)["slug"]
	if s == "" {
		WriteError(w, r, http.StatusNotFound, CodeNotFound, postingNotFound)
		return
	}

	p, err := h.store.GetPostingBySlug(r.Context(), s)
	if err != nil {
		writeStoreError(w, r, err, postingNotFound)
		return
	}

	writeJSON(w, p, http.StatusOK)
}

// UpdatePosting serves both PUT and PATCH; only supplied fields change.
func (h *PostingsHandler) UpdatePosting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var patch models.PostingPatch
	if !readValidated(w, r, schemaPostingUpdate, &patch) {
		return
	}

	p, err := h.store.UpdatePosting(r.Context(), id, patch)
	if err != nil {
		writeStoreError(w, r, err, postingNotFound)
		return
	}

	writeJSON(w, p, http.StatusOK)
}

func (h *PostingsHandler) DeletePosting(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeletePosting(r.Context(), id); err != nil {
		writeStoreError(w, r, err, postingNotFound)
		return
	}

	writeJSON(w, messageResponse{Message: "Vaga deletada com sucesso"}, http.StatusOK)
}

func (h *PostingsHandler) ListPostingApplicants(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	list, err := h.store.ListApplicantsForPosting(r.Context(), id, parsePage(r))
	if err != nil {
		writeStoreError(w, r, err, postingNotFound)
		return
	}

	writeJSON(w, newListResponse(list), http.StatusOK)
}
