package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminh "github.com/hmsd/hospital-api/internal/handler/admin"
	appointmenth "github.com/hmsd/hospital-api/internal/handler/appointment"
	authh "github.com/hmsd/hospital-api/internal/handler/auth"
	departmenth "github.com/hmsd/hospital-api/internal/handler/department"
	doctorh "github.com/hmsd/hospital-api/internal/handler/doctor"
	healthh "github.com/hmsd/hospital-api/internal/handler/health"
	patienth "github.com/hmsd/hospital-api/internal/handler/patient"
	reporth "github.com/hmsd/hospital-api/internal/handler/report"
	"github.com/hmsd/hospital-api/internal/middleware"
	"github.com/hmsd/hospital-api/internal/model"
	"github.com/hmsd/hospital-api/pkg/metrics"
)

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	authH        *authh.Handler
	adminH       *adminh.Handler
	doctorH      *doctorh.Handler
	patientH     *patienth.Handler
	appointmentH *appointmenth.Handler
	departmentH  *departmenth.Handler
	reportH      *reporth.Handler
	healthH      *healthh.Handler
}

type Config struct {
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	CORS             middleware.CORSConfig
	Metrics          *metrics.Metrics
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authh.Handler,
	adminH *adminh.Handler,
	doctorH *doctorh.Handler,
	patientH *patienth.Handler,
	appointmentH *appointmenth.Handler,
	departmentH *departmenth.Handler,
	reportH *reporth.Handler,
	healthH *healthh.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	middleware.RegisterValidators()

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)
	if config.Metrics != nil {
		engine.Use(middleware.Metrics(config.Metrics))
	}
	engine.Use(middleware.CORS(config.CORS))
	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst)
		engine.Use(limiter.RateLimit())
	}

	return &Router{
		engine:       engine,
		auth:         auth,
		authH:        authH,
		adminH:       adminH,
		doctorH:      doctorH,
		patientH:     patientH,
		appointmentH: appointmentH,
		departmentH:  departmentH,
		reportH:      reportH,
		healthH:      healthH,
	}
}

func (r *Router) Setup() {
	root := r.engine.Group("")

	root.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.healthH.RegisterRoutes(root)
	r.authH.RegisterPublicRoutes(root)

	authed := root.Group("")
	authed.Use(r.auth.Authenticate())
	{
		r.authH.RegisterRoutes(authed)
		r.departmentH.RegisterRoutes(authed)
		r.appointmentH.RegisterRoutes(authed)
		r.reportH.RegisterRoutes(authed)
	}

	patients := authed.Group("")
	patients.Use(r.auth.RequireRole(model.RolePatient))
	r.patientH.RegisterRoutes(patients)

	doctors := authed.Group("")
	doctors.Use(r.auth.RequireRole(model.RoleDoctor))
	r.doctorH.RegisterRoutes(doctors)

	admins := authed.Group("")
	admins.Use(r.auth.RequireRole(model.RoleAdmin))
	{
		r.adminH.RegisterRoutes(admins)
		admins.GET("/admin/reports/list", r.reportH.List)
		admins.GET("/admin/reports/download/:filename", r.reportH.Download)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
