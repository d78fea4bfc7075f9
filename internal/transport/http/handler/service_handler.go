package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"laundry-api/internal/domain"
	"laundry-api/internal/transport/http/ez"
	resp "laundry-api/internal/transport/http/response"
)

// Catalog is the service offering store as seen by the HTTP layer.
type Catalog interface {
	Create(ctx context.Context, in domain.NewService) (*domain.Service, error)
	ListActive(ctx context.Context) ([]domain.Service, error)
	Get(ctx context.Context, id uint) (*domain.Service, error)
	Update(ctx context.Context, id uint, p domain.ServicePatch) (*domain.Service, error)
	Deactivate(ctx context.Context, id uint) error
}

type ServiceResult struct {
	Message string          `json:"message"`
	Service *domain.Service `json:"service"`
}

type ServiceHandler struct {
	catalog Catalog
	opt     ez.Options
}

func NewServiceHandler(catalog Catalog, opt ez.Options) *ServiceHandler {
	return &ServiceHandler{catalog: catalog, opt: opt}
}

func (h *ServiceHandler) Priority() int { return 20 }

// MountAPI registers /services. Reads are public; writes need an admin.
func (h *ServiceHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api.Group("/services"), h.opt)

	ez.RegisterAction(e, ez.Action[domain.NewService, ServiceResult]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindJSON,
		Role:   domain.RoleAdmin,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.NewService) (ServiceResult, error) {
			s, err := h.catalog.Create(c.Request.Context(), *in)
			if err != nil {
				return ServiceResult{}, ez.Internal(resp.MsgCreateFailed, err)
			}
			return ServiceResult{Message: resp.MsgServiceCreated, Service: s}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, []domain.Service]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Service, error) {
			list, err := h.catalog.ListActive(c.Request.Context())
			if err != nil {
				return nil, ez.Internal(resp.MsgFetchFailed, err)
			}
			return list, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Service]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Service, error) {
			id, ok := parseID(c)
			if !ok {
				return nil, ez.NotFound(resp.MsgServiceNotFound)
			}
			s, err := h.catalog.Get(c.Request.Context(), id)
			if err != nil {
				return nil, serviceErr(err, resp.MsgFetchOneFailed)
			}
			return s, nil
		},
	})

	ez.RegisterAction(e, ez.Action[domain.ServicePatch, ServiceResult]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: ez.BindJSON,
		Role:   domain.RoleAdmin,
		Handler: func(c *gin.Context, in *domain.ServicePatch) (ServiceResult, error) {
			id, ok := parseID(c)
			if !ok {
				return ServiceResult{}, ez.NotFound(resp.MsgServiceNotFound)
			}
			s, err := h.catalog.Update(c.Request.Context(), id, *in)
			if err != nil {
				return ServiceResult{}, serviceErr(err, resp.MsgUpdateFailed)
			}
			return ServiceResult{Message: resp.MsgServiceUpdated, Service: s}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, resp.Body]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: ez.BindNone,
		Role:   domain.RoleAdmin,
		Handler: func(c *gin.Context, _ *struct{}) (resp.Body, error) {
			id, ok := parseID(c)
			if !ok {
				return resp.Body{}, ez.NotFound(resp.MsgServiceNotFound)
			}
			if err := h.catalog.Deactivate(c.Request.Context(), id); err != nil {
				return resp.Body{}, serviceErr(err, resp.MsgDeleteFailed)
			}
			return resp.Message(resp.MsgServiceDeleted), nil
		},
	})
}

// parseID treats anything that is not a positive integer as an id that
// matches no row.
func parseID(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, strconv.IntSize)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func serviceErr(err error, internalMsg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return ez.NotFound(resp.MsgServiceNotFound)
	}
	return ez.Internal(internalMsg, err)
}
