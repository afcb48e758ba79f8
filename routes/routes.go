package routes

import (
	"net/http"
	"time"

	"publicseva-be/controllers"
	"publicseva-be/middlewares"
	"publicseva-be/services"
	authUtils "publicseva-be/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps is everything the routes need from main.
type Deps struct {
	Auth        *services.AuthService
	Issues      *services.IssueService
	Admin       *services.AdminService
	Tokens      *authUtils.TokenManager
	Counter     middlewares.Counter
	LimitPrefix string
	DailyLimit  int
	CORSOrigins []string
}

// Setup builds the engine with every route registered.
func Setup(deps Deps) (*gin.Engine, error) {
	if err := controllers.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(), cors.New(corsConfig(deps.CORSOrigins)))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "PublicSeva Backend Running")
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api")
	guards := newGuards(deps)

	AuthRoutes(api, controllers.NewAuthController(deps.Auth))
	UserRoutes(api, guards)
	IssueRoutes(api, controllers.NewIssueController(deps.Issues), guards)
	AdminRoutes(api, controllers.NewAdminController(deps.Admin), guards)

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middlewares.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middlewares.RequestIDHeader, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

type guardSet struct {
	deps Deps
}

func newGuards(deps Deps) guardSet {
	return guardSet{deps: deps}
}

// authed requires a valid bearer token, then runs any extra guards.
func (g guardSet) authed(extra ...middlewares.Guard) gin.HandlerFunc {
	chain := append([]middlewares.Guard{middlewares.Authenticate(g.deps.Tokens)}, extra...)
	return middlewares.Chain(controllers.RespondError, chain...)
}

func (g guardSet) issueLimit() middlewares.Guard {
	return middlewares.IssueRateLimiter(g.deps.Counter, g.deps.LimitPrefix, g.deps.DailyLimit)
}
