package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	bookingHttp "github.com/restobook/resto-booking-backend/internal/booking/http"
	"github.com/restobook/resto-booking-backend/internal/command"
	"github.com/restobook/resto-booking-backend/internal/ledger"
	personHttp "github.com/restobook/resto-booking-backend/internal/person/http"
)

// Config carries the settings and dependencies needed to build the router.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Ledger       *ledger.Ledger
	Session      *command.Session
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Recovery) and registering routes.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// Initialize HTTP Handlers (injecting the ledger and command session).
	personHandler := personHttp.NewHandler(cfg.Ledger)
	bookingHandler := bookingHttp.NewHandler(cfg.Session)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		personHttp.RegisterRoutes(v1, personHandler)
		bookingHttp.RegisterRoutes(v1, bookingHandler)
	}

	return r
}
