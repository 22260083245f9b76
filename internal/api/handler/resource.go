package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/carejournal/carejournal/internal/api/response"
	"github.com/carejournal/carejournal/internal/filter"
)

// CRUDService is the service shape shared by the clinical resources. T is the
// entity, C the create body and U the update body.
type CRUDService[T, C, U any] interface {
	List(ctx context.Context, filters []filter.Filter) ([]*T, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, input *C) (*T, error)
	Update(ctx context.Context, id int64, input *U) (*T, error)
	Delete(ctx context.Context, id int64) (*T, error)
}

// ResourceHandler serves list, get, create, update and delete for one
// resource collection.
type ResourceHandler[T, C, U any] struct {
	path string
	svc  CRUDService[T, C, U]
	id   func(*T) int64
	errs *Errors
}

// NewResourceHandler creates a handler for the collection mounted at path.
// id extracts the identifier used in the Location header of created rows.
func NewResourceHandler[T, C, U any](path string, svc CRUDService[T, C, U], id func(*T) int64, errs *Errors) *ResourceHandler[T, C, U] {
	return &ResourceHandler[T, C, U]{path: path, svc: svc, id: id, errs: errs}
}

// List handles GET {path}. Every query parameter filters the result by
// exact match on the field of the same name.
func (h *ResourceHandler[T, C, U]) List(w http.ResponseWriter, r *http.Request) {
	filters, ok := h.errs.filters(w, r)
	if !ok {
		return
	}
	items, err := h.svc.List(r.Context(), filters)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	if items == nil {
		items = []*T{}
	}
	response.JSON(w, r, http.StatusOK, items)
}

// Get handles GET {path}/{id}.
func (h *ResourceHandler[T, C, U]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, item)
}

// Create handles POST {path}.
func (h *ResourceHandler[T, C, U]) Create(w http.ResponseWriter, r *http.Request) {
	var input C
	if !decode(w, r, &input) {
		return
	}
	item, err := h.svc.Create(r.Context(), &input)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.Created(w, r, fmt.Sprintf("%s/%d", h.path, h.id(item)), item)
}

// Update handles PUT {path}/{id}.
func (h *ResourceHandler[T, C, U]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input U
	if !decode(w, r, &input) {
		return
	}
	item, err := h.svc.Update(r.Context(), id, &input)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, item)
}

// Delete handles DELETE {path}/{id} and returns the removed row.
func (h *ResourceHandler[T, C, U]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, item)
}

// DetailService lists and fetches a resource as a read model D that embeds
// its related records.
type DetailService[D any] interface {
	ListDetails(ctx context.Context, filters []filter.Filter) ([]*D, error)
	GetDetail(ctx context.Context, id int64) (*D, error)
}

// DetailHandler is a ResourceHandler whose List and Get answer with the
// detail read model. Filters still apply to the entity's own fields.
type DetailHandler[T, C, U, D any] struct {
	*ResourceHandler[T, C, U]
	details DetailService[D]
}

// NewDetailHandler creates a handler for the collection mounted at path.
func NewDetailHandler[T, C, U, D any](path string, svc interface {
	CRUDService[T, C, U]
	DetailService[D]
}, id func(*T) int64, errs *Errors) *DetailHandler[T, C, U, D] {
	return &DetailHandler[T, C, U, D]{
		ResourceHandler: NewResourceHandler[T, C, U](path, svc, id, errs),
		details:         svc,
	}
}

// List handles GET {path}.
func (h *DetailHandler[T, C, U, D]) List(w http.ResponseWriter, r *http.Request) {
	filters, ok := h.errs.filters(w, r)
	if !ok {
		return
	}
	items, err := h.details.ListDetails(r.Context(), filters)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	if items == nil {
		items = []*D{}
	}
	response.JSON(w, r, http.StatusOK, items)
}

// Get handles GET {path}/{id}.
func (h *DetailHandler[T, C, U, D]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.details.GetDetail(r.Context(), id)
	if err != nil {
		h.errs.Write(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, item)
}
