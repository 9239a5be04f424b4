package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hmsd/hospital-api/internal/handler"
	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/internal/service/appointment"
	"github.com/hmsd/hospital-api/internal/service/department"
	"github.com/hmsd/hospital-api/internal/service/doctor"
	"github.com/hmsd/hospital-api/internal/service/patient"
	"github.com/hmsd/hospital-api/internal/service/report"
)

type Handler struct {
	doctorSvc      *doctor.Service
	patientSvc     *patient.Service
	appointmentSvc *appointment.Service
	departmentSvc  *department.Service
	reportSvc      *report.Service
}

func NewHandler(
	doctorSvc *doctor.Service,
	patientSvc *patient.Service,
	appointmentSvc *appointment.Service,
	departmentSvc *department.Service,
	reportSvc *report.Service,
) *Handler {
	return &Handler{
		doctorSvc:      doctorSvc,
		patientSvc:     patientSvc,
		appointmentSvc: appointmentSvc,
		departmentSvc:  departmentSvc,
		reportSvc:      reportSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/admin/dashboard", h.Dashboard)
	r.GET("/admin/doctors", h.ListDoctors)
	r.POST("/admin/doctors", h.CreateDoctor)
	r.GET("/admin/doctors/:id", h.GetDoctor)
	r.PUT("/admin/doctors/:id", h.UpdateDoctor)
	r.DELETE("/admin/doctors/:id", h.DeleteDoctor)
	r.POST("/admin/doctors/:id/profile", h.SaveDoctorProfile)
	r.GET("/admin/patients", h.ListPatients)
	r.GET("/admin/appointments", h.ListAppointments)
	r.POST("/admin/block_user/:id", h.BlockUser)
	r.POST("/admin/departments", h.CreateDepartment)
	r.GET("/admin/export/:id", h.ExportDoctorAppointments)
}

func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.appointmentSvc.Stats(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.doctorSvc.List(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req model.CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	user, err := h.doctorSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(user))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	detail, err := h.doctorSvc.Get(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(detail))
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	var req model.UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.doctorSvc.Update(c.Request.Context(), id, &req); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"message": "Doctor updated",
	}))
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	if err := h.doctorSvc.Delete(c.Request.Context(), id); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"message": "Doctor deleted",
	}))
}

// SaveDoctorProfile lets the admin edit any doctor's profile in place.
func (h *Handler) SaveDoctorProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	var req model.UpsertDoctorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	profile, err := h.doctorSvc.UpsertProfile(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.patientSvc.List(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.appointmentSvc.ListAll(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) BlockUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	var req model.BlockUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.doctorSvc.ApplyAction(c.Request.Context(), id, req.Action); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"message": "Action applied",
	}))
}

func (h *Handler) CreateDepartment(c *gin.Context) {
	var req model.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	dept, err := h.departmentSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(dept))
}

// ExportDoctorAppointments enqueues a CSV export of one doctor's
// appointment history.
func (h *Handler) ExportDoctorAppointments(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	job, err := h.reportSvc.Enqueue(c.Request.Context(), model.ExportDoctorAppointments, id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusAccepted, handler.NewSuccessResponse(&model.ExportResponse{
		Message: "Export started",
		TaskID:  job.TaskID,
	}))
}
