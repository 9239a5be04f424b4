package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hmsd/hospital-api/internal/handler"
	"github.com/hmsd/hospital-api/internal/middleware"
	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/service/appointment"
	"github.com/hmsd/hospital-api/internal/service/department"
	"github.com/hmsd/hospital-api/internal/service/patient"
	"github.com/hmsd/hospital-api/internal/service/report"
	"github.com/hmsd/hospital-api/internal/service/treatment"
)

type Handler struct {
	patientSvc     *patient.Service
	appointmentSvc *appointment.Service
	treatmentSvc   *treatment.Service
	departmentSvc  *department.Service
	reportSvc      *report.Service
}

func NewHandler(
	patientSvc *patient.Service,
	appointmentSvc *appointment.Service,
	treatmentSvc *treatment.Service,
	departmentSvc *department.Service,
	reportSvc *report.Service,
) *Handler {
	return &Handler{
		patientSvc:     patientSvc,
		appointmentSvc: appointmentSvc,
		treatmentSvc:   treatmentSvc,
		departmentSvc:  departmentSvc,
		reportSvc:      reportSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/patient/profile", h.GetProfile)
	r.POST("/patient/profile", h.SaveProfile)
	r.GET("/patient/dashboard", h.Dashboard)
	r.GET("/patient/appointments", h.ListAppointments)
	r.POST("/appointments/book", h.BookAppointment)
	r.POST("/patient/appointments/:id/cancel", h.CancelAppointment)
	r.GET("/patient/treatments", h.ListTreatments)
	r.GET("/patient/export_treatments", h.ExportTreatments)
}

func (h *Handler) GetProfile(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	profile, err := h.patientSvc.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) SaveProfile(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	var req model.UpsertPatientProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	profile, err := h.patientSvc.UpsertProfile(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

// Dashboard returns the department catalog the booking page is built from.
func (h *Handler) Dashboard(c *gin.Context) {
	departments, err := h.departmentSvc.List(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"departments": departments,
	}))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	appointments, err := h.appointmentSvc.ListForPatient(c.Request.Context(), claims.UserID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) BookAppointment(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	appt, err := h.appointmentSvc.Book(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appt))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	if err := h.appointmentSvc.Cancel(c.Request.Context(), id, claims.UserID); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"message": "Appointment cancelled",
	}))
}

func (h *Handler) ListTreatments(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	treatments, err := h.treatmentSvc.ListForPatient(c.Request.Context(), claims.UserID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(treatments))
}

// ExportTreatments enqueues a CSV export and returns the task ID; the file is
// generated asynchronously by the worker.
func (h *Handler) ExportTreatments(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	job, err := h.reportSvc.Enqueue(c.Request.Context(), model.ExportPatientTreatments, claims.UserID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusAccepted, handler.NewSuccessResponse(&model.ExportResponse{
		Message: "Export started",
		TaskID:  job.TaskID,
	}))
}
