package report

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hmsd/hospital-api/internal/handler"
	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/service/report"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/reports/download/:filename", h.Download)
}

func (h *Handler) List(c *gin.Context) {
	files, err := h.svc.List()
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(&model.ReportListing{
		Downloads: files,
	}))
}

func (h *Handler) Download(c *gin.Context) {
	path, err := h.svc.Resolve(c.Param("filename"))
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.FileAttachment(path, c.Param("filename"))
}
