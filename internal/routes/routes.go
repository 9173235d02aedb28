package routes

import (
	"net/http"

	"healthcare-app-server/internal/handlers"
	"healthcare-app-server/internal/logger"
	"healthcare-app-server/internal/middleware"
	"healthcare-app-server/internal/models"
	"healthcare-app-server/internal/services"

	"github.com/gin-gonic/gin"
)

// Services bundles what the handlers need.
type Services struct {
	Identity    *services.IdentityService
	Credentials *services.CredentialService
	Guard       *services.Guard
	Scheduling  *services.SchedulingService
	Log         *logger.Logger
}

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, svc Services) {
	log := svc.Log.WithComponent("http")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(svc.Identity, svc.Credentials, log)
	userHandler := handlers.NewUserHandler(svc.Identity, log)
	doctorHandler := handlers.NewDoctorHandler(svc.Identity, svc.Scheduling, log)
	appointmentHandler := handlers.NewAppointmentHandler(svc.Scheduling, log)

	authenticated := middleware.AuthMiddleware(svc.Guard, log)
	patientsOnly := middleware.RoleAuthMiddleware(models.RolePatient)
	doctorsOnly := middleware.RoleAuthMiddleware(models.RoleDoctor)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/me", authenticated, authHandler.Me)
			authRoutes.POST("/logout", authenticated, authHandler.Logout)
		}

		patientRoutes := api.Group("/patients", authenticated, patientsOnly)
		{
			patientRoutes.GET("/profile", userHandler.GetProfile)
			patientRoutes.PUT("/profile", userHandler.UpdateProfile)
		}

		doctorRoutes := api.Group("/doctors")
		{
			// Own-profile routes are registered before /:id so "profile" is not
			// taken as a doctor id.
			doctorRoutes.POST("/profile", authenticated, doctorsOnly, doctorHandler.CreateProfile)
			doctorRoutes.GET("/profile/me", authenticated, doctorsOnly, doctorHandler.GetMyProfile)
			doctorRoutes.PUT("/profile", authenticated, doctorsOnly, doctorHandler.UpdateProfile)

			doctorRoutes.GET("", doctorHandler.ListDoctors)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctor)
			doctorRoutes.GET("/:id/slots", doctorHandler.GetSlots)
		}

		appointmentRoutes := api.Group("/appointments", authenticated)
		{
			appointmentRoutes.POST("", patientsOnly, appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("/patient", patientsOnly, appointmentHandler.GetPatientAppointments)
			appointmentRoutes.GET("/doctor", doctorsOnly, appointmentHandler.GetDoctorAppointments)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})
}
