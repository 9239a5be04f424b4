package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hmsd/hospital-api/internal/handler"
	"github.com/hmsd/hospital-api/internal/middleware"
	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/service/appointment"
	"github.com/hmsd/hospital-api/internal/service/doctor"
)

type Handler struct {
	doctorSvc      *doctor.Service
	appointmentSvc *appointment.Service
}

func NewHandler(doctorSvc *doctor.Service, appointmentSvc *appointment.Service) *Handler {
	return &Handler{
		doctorSvc:      doctorSvc,
		appointmentSvc: appointmentSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/doctor/profile", h.GetProfile)
	r.POST("/doctor/profile", h.SaveProfile)
	r.GET("/doctor/availability", h.GetAvailability)
	r.POST("/doctor/availability", h.SaveAvailability)
	r.GET("/doctor/appointments", h.ListAppointments)
	r.POST("/doctor/appointments/:id/complete", h.CompleteAppointment)
}

func (h *Handler) GetProfile(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	profile, err := h.doctorSvc.GetProfile(c.Request.Context(), claims.UserID)
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

	var req model.UpsertDoctorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	profile, err := h.doctorSvc.UpsertProfile(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

// GetAvailability returns the doctor's own calendar as stored, not the
// derived open-slot listing patients see.
func (h *Handler) GetAvailability(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	profile, err := h.doctorSvc.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"availability": profile.Availability,
	}))
}

func (h *Handler) SaveAvailability(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	var req struct {
		Availability model.AvailabilityCalendar `json:"availability" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	profile, err := h.doctorSvc.UpsertProfile(c.Request.Context(), claims.UserID, &model.UpsertDoctorProfileRequest{
		Availability: req.Availability,
	})
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"availability": profile.Availability,
	}))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	appointments, err := h.appointmentSvc.ListForDoctor(c.Request.Context(), claims.UserID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
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

	var req model.CompleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	treatment, err := h.appointmentSvc.Complete(c.Request.Context(), id, claims.UserID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(treatment))
}
