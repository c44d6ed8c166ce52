package app

import (
	"github.com/gin-gonic/gin"

	"github.com/restobook/resto-booking-backend/internal/api"
	"github.com/restobook/resto-booking-backend/internal/command"
	"github.com/restobook/resto-booking-backend/internal/ledger"
)

// Config holds the settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router  *gin.Engine
	Ledger  *ledger.Ledger
	Session *command.Session
}

// NewContainer initializes the ledger, the command session and the
// router, and returns the container.
func NewContainer(cfg Config) *Container {
	led := ledger.New()
	session := command.NewSession(led)

	router := api.NewRouter(api.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		Ledger:       led,
		Session:      session,
	})

	return &Container{
		Router:  router,
		Ledger:  led,
		Session: session,
	}
}
