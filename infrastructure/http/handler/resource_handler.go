package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fixora/resourcesvc/application/port/inbound"
	"github.com/fixora/resourcesvc/infrastructure/http/middleware"
	"github.com/fixora/resourcesvc/infrastructure/http/response"
)

const maxBodyBytes = 1 << 20

type ResourceHandler struct {
	resourceUseCase inbound.ResourceManagementUseCase
}

func NewResourceHandler(resourceUseCase inbound.ResourceManagementUseCase) *ResourceHandler {
	return &ResourceHandler{resourceUseCase: resourceUseCase}
}

// RegisterRoutes mounts the resource endpoints on router. Authentication is
// applied by the caller on the same router.
func (h *ResourceHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/resources", h.ListResources).Methods(http.MethodGet)
	router.HandleFunc("/resources", h.UpsertResource).Methods(http.MethodPost)
	router.HandleFunc("/resources/{id}", h.GetResource).Methods(http.MethodGet)
	router.HandleFunc("/resources/{id}", h.UpdateResource).Methods(http.MethodPut)
	router.HandleFunc("/resources/{id}", h.DeleteResource).Methods(http.MethodDelete)
}

// GetResource handles GET /v1/resources/{id}
func (h *ResourceHandler) GetResource(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	response.Result(w, h.resourceUseCase.GetResource(r.Context(), id))
}

// UpsertResource handles POST /v1/resources. Without an id in the body the
// resource is created (201), otherwise the existing one is updated (200).
func (h *ResourceHandler) UpsertResource(w http.ResponseWriter, r *http.Request) {
	var req inbound.UpsertResourceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}

	res := h.resourceUseCase.UpsertResource(r.Context(), req, middleware.ActorID(r.Context()))
	response.ResultWithStatus(w, status, res)
}

// UpdateResource handles PUT /v1/resources/{id}. The path id wins over any
// id in the body.
func (h *ResourceHandler) UpdateResource(w http.ResponseWriter, r *http.Request) {
	var req inbound.UpsertResourceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	req.ID = mux.Vars(r)["id"]

	response.Result(w, h.resourceUseCase.UpsertResource(r.Context(), req, middleware.ActorID(r.Context())))
}

// ListResources handles GET /v1/resources?pageNum=&pageSize=&name=
func (h *ResourceHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	pageNum, err := queryInt(q.Get("pageNum"))
	if err != nil {
		response.BadRequest(w, "pageNum must be an integer")
		return
	}
	pageSize, err := queryInt(q.Get("pageSize"))
	if err != nil {
		response.BadRequest(w, "pageSize must be an integer")
		return
	}

	req := inbound.ListResourcesRequest{
		Page: inbound.PageInput{PageNum: pageNum, PageSize: pageSize},
		Name: q.Get("name"),
	}
	response.Result(w, h.resourceUseCase.ListResources(r.Context(), req, middleware.ActorID(r.Context())))
}

// DeleteResource handles DELETE /v1/resources/{id}
func (h *ResourceHandler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	response.Result(w, h.resourceUseCase.DeleteResource(r.Context(), id, middleware.ActorID(r.Context())))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return errors.New("invalid request body")
	}
	return nil
}

func queryInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
