package department

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hmsd/hospital-api/internal/handler"
	"github.com/hmsd/hospital-api/internal/service/department"
)

type Handler struct {
	svc *department.Service
}

func NewHandler(svc *department.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/departments", h.List)
	r.GET("/departments/:id", h.GetDetail)
}

func (h *Handler) List(c *gin.Context) {
	departments, err := h.svc.List(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(departments))
}

func (h *Handler) GetDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid department ID"))
		return
	}

	detail, err := h.svc.GetDetail(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(detail))
}
