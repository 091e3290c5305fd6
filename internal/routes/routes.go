package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/handlers"
	"github.com/Sydani-Tech/hemotrackr-admin-sub000/internal/middleware"
)

// CORSMiddleware allows the configured dashboard origin to call the API,
// including the Authorization header used for bearer tokens.
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight OPTIONS requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware(h.Cfg.CORSOrigin))

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/register/donor", h.RegisterDonor)
		v1.POST("/register/organization", h.RegisterOrganization)
		v1.POST("/login", h.Login)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware(h.DB))
		{
			auth.GET("/profile/me", h.GetMyProfile)

			// --- Notification Routes ---
			auth.GET("/notifications", h.GetMyNotifications)
			auth.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)
		}

		// --- Facility Routes (Hospital / Blood Bank: Request Issuer) ---
		facility := v1.Group("/facility")
		facility.Use(middleware.AuthMiddleware(h.DB))
		facility.Use(middleware.FacilityMiddleware(h.DB))
		{
			facility.POST("/blood-requests", h.CreateBloodRequest)
			facility.GET("/blood-requests", h.GetMyBloodRequests)
			facility.GET("/blood-requests/:id", h.GetBloodRequestDetails)
			facility.PATCH("/blood-requests/:id/cancel", h.CancelBloodRequest)
			facility.PATCH("/blood-requests/:id/confirm-delivery", h.ConfirmDelivery)

			facility.GET("/blood-requests/:id/offers", h.GetRequestOffers)
			facility.POST("/offers/:id/accept", h.AcceptOffer)

			facility.GET("/appointments", h.GetFacilityAppointments)
			facility.PATCH("/appointments/:id", h.ProcessAppointment)

			facility.GET("/dashboard-stats", h.GetFacilityStats)
		}

		// --- Blood Bank Routes (Marketplace Supplier) ---
		bank := v1.Group("/bank")
		bank.Use(middleware.AuthMiddleware(h.DB))
		bank.Use(middleware.BloodBankMiddleware(h.DB))
		{
			bank.GET("/marketplace/blood-requests", h.GetOpenRequests)
			bank.POST("/marketplace/blood-requests/:id/offers", h.SubmitOffer)
			bank.GET("/marketplace/blood-requests/:id/check-offer", h.CheckOffer)

			bank.GET("/riders", h.GetRiders)
			bank.PATCH("/offers/:id/assign-rider", h.AssignRider)
			bank.POST("/offers/:id/dispatch", h.DispatchOffer)

			bankInventory := bank.Group("/inventory")
			{
				bankInventory.POST("/", h.CreateInventoryItem)
				bankInventory.GET("/", h.GetMyInventoryItems)
				bankInventory.PUT("/:id", h.UpdateInventoryItem)
				bankInventory.DELETE("/:id", h.DeleteInventoryItem)
			}

			bank.GET("/dashboard-stats", h.GetBankStats)
		}

		// --- Donor Routes ---
		donor := v1.Group("/donor")
		donor.Use(middleware.AuthMiddleware(h.DB))
		donor.Use(middleware.DonorMiddleware(h.DB))
		{
			donor.POST("/appointments", h.CreateAppointment)
			donor.GET("/appointments", h.GetMyAppointments)
		}

		// --- Regulator Routes ---
		regulator := v1.Group("/regulator")
		regulator.Use(middleware.AuthMiddleware(h.DB))
		regulator.Use(middleware.RegulatorMiddleware(h.DB))
		{
			regulator.GET("/blood-requests", h.GetAllBloodRequests)
			regulator.PATCH("/blood-requests/:id/reject", h.RejectBloodRequest)
			regulator.GET("/dashboard-stats", h.GetRegulatorStats)
		}

		// --- Admin Routes ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(h.DB))
		admin.Use(middleware.AdminMiddleware(h.DB))
		{
			admin.POST("/create-regulator", h.CreateRegulator)
			admin.PATCH("/organizations/:id", h.ProcessOrganization)

			admin.POST("/riders", h.CreateRider)
			admin.PATCH("/riders/:id", h.UpdateRider)

			admin.GET("/settings", h.GetSettings)
			admin.PATCH("/settings", h.UpdateSettings)
		}
	}

	return router
}
