package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"backend/config"
	"backend/controllers"
	"backend/middlewares"
	"backend/repository"
	"backend/services"
)

// SetupRouter wires repositories, services and controllers onto the REST
// surface. All state is injected; nothing here lives in package globals.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	userRepo := repository.NewUserRepository(db)
	mealRepo := repository.NewMealRepository(db)

	authSvc := services.NewAuthService(userRepo, []byte(cfg.JWTSecret))
	mealSvc := services.NewMealService(mealRepo)
	fdcSvc := services.NewFDCService(cfg.FDCAPIKey)

	authCtl := controllers.NewAuthController(authSvc)
	mealCtl := controllers.NewMealController(mealSvc)
	nutritionCtl := controllers.NewNutritionController(fdcSvc)

	requireAuth := middlewares.AuthMiddleware([]byte(cfg.JWTSecret), userRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
		auth.GET("/me", requireAuth, authCtl.Me)
		auth.PUT("/me", requireAuth, authCtl.UpdateMe)
	}

	// Public: lookups carry no user state.
	r.GET("/api/nutrition", nutritionCtl.Lookup)

	meals := r.Group("/api/meals")
	meals.Use(requireAuth)
	{
		meals.GET("", mealCtl.List)
		meals.POST("", mealCtl.Create)
		meals.GET("/:id", mealCtl.Get)
		meals.PUT("/:id", mealCtl.Update)
		meals.DELETE("/:id", mealCtl.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r
}
