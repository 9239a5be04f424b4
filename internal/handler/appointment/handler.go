package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hmsd/hospital-api/internal/handler"
	"github.com/hmsd/hospital-api/internal/service/appointment"
	"github.com/hmsd/hospital-api/internal/service/availability"
)

// Handler serves the booking-support views: any authenticated user can look
// up a doctor's open slots and existing appointments.
type Handler struct {
	availabilitySvc *availability.Service
	appointmentSvc  *appointment.Service
}

func NewHandler(availabilitySvc *availability.Service, appointmentSvc *appointment.Service) *Handler {
	return &Handler{
		availabilitySvc: availabilitySvc,
		appointmentSvc:  appointmentSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/doctor/:id/availability", h.DoctorAvailability)
	r.GET("/doctor/:id/appointments", h.DoctorAppointments)
}

// DoctorAvailability lists the doctor's open days with the slots still free
// on each. A doctor without a saved calendar yields an empty list.
func (h *Handler) DoctorAvailability(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	slots, err := h.availabilitySvc.SlotsForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func (h *Handler) DoctorAppointments(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	appointments, err := h.appointmentSvc.ListForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}
