package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/briannzioki/qwiksale-listings/internal/domain"
	"github.com/briannzioki/qwiksale-listings/internal/service"
	"github.com/briannzioki/qwiksale-listings/pkg/httputil"
	"github.com/briannzioki/qwiksale-listings/pkg/validator"
)

// ListingHandler handles HTTP requests for listing endpoints.
type ListingHandler struct {
	service *service.ListingService
	logger  *slog.Logger
}

// NewListingHandler creates a new listing HTTP handler.
func NewListingHandler(svc *service.ListingService, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateListingRequest is the JSON request body for creating a listing.
type CreateListingRequest struct {
	Kind        string  `json:"kind" validate:"required,oneof=product service"`
	Name        string  `json:"name" validate:"required,min=1,max=500"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Subcategory *string `json:"subcategory" validate:"omitempty,max=100"`
	Price       *int64  `json:"price" validate:"omitempty,gte=0"`
	Featured    bool    `json:"featured"`
	Location    *string `json:"location" validate:"omitempty,max=200"`

	Brand     *string `json:"brand" validate:"omitempty,max=100"`
	Condition *string `json:"condition" validate:"omitempty,oneof='brand new' 'pre-owned'"`

	RateType     *string `json:"rate_type" validate:"omitempty,oneof=hour day fixed"`
	Availability *string `json:"availability" validate:"omitempty,max=200"`
	ServiceArea  *string `json:"service_area" validate:"omitempty,max=200"`

	SellerID *string `json:"seller_id" validate:"omitempty,uuid"`
}

// UpdateListingRequest is the JSON request body for updating a listing.
type UpdateListingRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=500"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,max=100"`
	Subcategory *string `json:"subcategory" validate:"omitempty,max=100"`
	Price       *int64  `json:"price" validate:"omitempty,gte=0"`
	Featured    *bool   `json:"featured"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	Status      *string `json:"status" validate:"omitempty,oneof=active sold hidden draft archived"`

	Brand     *string `json:"brand" validate:"omitempty,max=100"`
	Condition *string `json:"condition" validate:"omitempty,oneof='brand new' 'pre-owned'"`

	RateType     *string `json:"rate_type" validate:"omitempty,oneof=hour day fixed"`
	Availability *string `json:"availability" validate:"omitempty,max=200"`
	ServiceArea  *string `json:"service_area" validate:"omitempty,max=200"`
}

// --- Handlers ---

// BrowseProducts handles GET /api/v1/products
func (h *ListingHandler) BrowseProducts(w http.ResponseWriter, r *http.Request) {
	h.browse(w, r, domain.KindProduct)
}

// BrowseServices handles GET /api/v1/services
func (h *ListingHandler) BrowseServices(w http.ResponseWriter, r *http.Request) {
	h.browse(w, r, domain.KindService)
}

// browse runs the query pipeline for one kind. Malformed query parameters
// are normalized away rather than rejected, so this endpoint never returns
// 4xx for a bad query string.
func (h *ListingHandler) browse(w http.ResponseWriter, r *http.Request, kind domain.ListingKind) {
	params := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	result, err := h.service.Browse(r.Context(), kind, params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

// GetListing handles GET /api/v1/listings/{idOrSlug}
// It accepts both a UUID (listing ID) and a slug for lookup.
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "idOrSlug")
	if idOrSlug == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "listing id or slug is required"},
		})
		return
	}

	var (
		listing *domain.Listing
		err     error
	)

	if _, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		listing, err = h.service.GetListing(r.Context(), idOrSlug)
	} else {
		listing, err = h.service.GetListingBySlug(r.Context(), idOrSlug)
	}

	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: listing})
}

// CreateListing handles POST /api/v1/listings
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.CreateListingInput{
		Kind:         domain.ListingKind(req.Kind),
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Subcategory:  req.Subcategory,
		Price:        req.Price,
		Featured:     req.Featured,
		Location:     req.Location,
		Brand:        req.Brand,
		Condition:    req.Condition,
		RateType:     req.RateType,
		Availability: req.Availability,
		ServiceArea:  req.ServiceArea,
		SellerID:     req.SellerID,
	}

	listing, err := h.service.CreateListing(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: listing})
}

// UpdateListing handles PUT /api/v1/listings/{id}
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := &service.UpdateListingInput{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Subcategory:  req.Subcategory,
		Price:        req.Price,
		Featured:     req.Featured,
		Location:     req.Location,
		Status:       req.Status,
		Brand:        req.Brand,
		Condition:    req.Condition,
		RateType:     req.RateType,
		Availability: req.Availability,
		ServiceArea:  req.ServiceArea,
	}

	listing, err := h.service.UpdateListing(r.Context(), id.String(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: listing})
}

// DeleteListing handles DELETE /api/v1/listings/{id}
func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteListing(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": id.String(), "status": "deleted"}})
}
