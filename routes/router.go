// Package routes assembles the HTTP surface.
package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/princinho/shopitbackend/apperrors"
	"github.com/princinho/shopitbackend/config"
	"github.com/princinho/shopitbackend/controllers"
	"github.com/princinho/shopitbackend/logging"
	"github.com/princinho/shopitbackend/middleware"
	"github.com/princinho/shopitbackend/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(cfg config.ServerConfig, logger *slog.Logger, auth *controllers.AuthController) *gin.Engine {
	r := gin.New()

	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.Recovery(logger))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	r.Use(middleware.ErrorHandler(logger, cfg.IsProduction()))
	r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.NotFound(fmt.Sprintf("Route not found: %s %s", c.Request.Method, c.Request.URL.Path)))
		c.Abort()
	})

	api := r.Group("/api/v1")
	{
		api.POST("/register", auth.Register())
		api.POST("/login", auth.Login())
		api.GET("/logout", auth.Logout())
		api.POST("/password/forgot", auth.ForgotPassword())
		api.PUT("/password/reset/:token", auth.ResetPassword())
	}

	guard := middleware.Authenticate(auth.Users, auth.Tokens)

	me := api.Group("", guard)
	{
		me.GET("/me", auth.GetProfile())
		me.PUT("/me/update", auth.UpdateProfile())
		me.PUT("/me/upload_avatar", auth.UploadAvatar())
		me.PUT("/password/update", auth.UpdatePassword())
	}

	admin := api.Group("/admin", guard, middleware.Authorize(models.RoleAdmin))
	{
		admin.GET("/users", auth.AllUsers())
		admin.GET("/users/:id", auth.GetUserDetails())
		admin.PUT("/users/:id", auth.UpdateUser())
		admin.DELETE("/users/:id", auth.DeleteUser())
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowed[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
