package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jaekwang-park/todo-items-api/internal/middleware"
	"github.com/jaekwang-park/todo-items-api/internal/model"
	"github.com/jaekwang-park/todo-items-api/internal/service"
)

const (
	ItemsPath       = "/api/v1/items"
	maxItemBodySize = 1 << 20 // 1 MB
)

type ItemHandler struct {
	svc        *service.ItemService
	serializer *ItemSerializer
}

func NewItemHandler(svc *service.ItemService) *ItemHandler {
	return &ItemHandler{
		svc:        svc,
		serializer: NewItemSerializer(),
	}
}

// ServeHTTP routes /api/v1/items/ and /api/v1/items/{id}/. The trailing slash is optional.
func (h *ItemHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, ItemsPath), "/")

	if strings.Contains(rest, "/") {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
		return
	}

	// /api/v1/items/{id}
	if rest != "" {
		// A value that is not a UUID can never name a stored item.
		id, err := uuid.Parse(rest)
		if err != nil {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
			return
		}

		switch r.Method {
		case http.MethodGet:
			h.handleRetrieve(w, r, id.String())
		case http.MethodPut:
			h.handleUpdate(w, r, id.String(), false)
		case http.MethodPatch:
			h.handleUpdate(w, r, id.String(), true)
		case http.MethodDelete:
			h.handleDestroy(w, r, id.String())
		default:
			writeMethodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete)
		}
		return
	}

	// /api/v1/items
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleCreate(w, r)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *ItemHandler) handleList(w http.ResponseWriter, r *http.Request) {
	var params model.ItemListParams

	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status := model.ItemStatus(statusStr)
		if !status.IsValid() {
			WriteError(w, http.StatusBadRequest, "INVALID_STATUS", "status must be 'all', 'completed' or 'pending'")
			return
		}
		params.Completed = status.Completed()
	}

	items, err := h.svc.List(r.Context(), params)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decode(w, r)
	if !ok {
		return
	}

	item, err := h.svc.Create(r.Context(), input)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) handleRetrieve(w http.ResponseWriter, r *http.Request, id string) {
	item, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string, partial bool) {
	input, ok := h.decode(w, r)
	if !ok {
		return
	}

	var (
		item model.Item
		err  error
	)
	if partial {
		item, err = h.svc.Patch(r.Context(), id, input)
	} else {
		item, err = h.svc.Replace(r.Context(), id, input)
	}
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) handleDestroy(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.Delete(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decode reads the request body through the serializer. It writes the error
// response itself and reports false when the body is unusable.
func (h *ItemHandler) decode(w http.ResponseWriter, r *http.Request) (service.ItemInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxItemBodySize)

	input, err := h.serializer.Decode(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			WriteError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large")
		case errors.Is(err, errMalformedBody):
			WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		default:
			handleServiceError(w, r, err)
		}
		return service.ItemInput{}, false
	}
	return input, true
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteFieldErrors(w, verr.Fields)
	case errors.Is(err, service.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"error", err,
			"request_id", middleware.RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
