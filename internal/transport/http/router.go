package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"teachhub/internal/middleware"
)

type Handlers struct {
	Auth       *AuthHandler
	Profile    *ProfileHandler
	Course     *CourseHandler
	Enrollment *EnrollmentHandler
	Review     *ReviewHandler
}

type RouterDeps struct {
	Limiter        *middleware.RateLimiter
	Access         middleware.AccessValidator
	AllowedOrigins []string
	Metrics        http.Handler
	// Health reports whether the backing stores are reachable.
	Health func(ctx context.Context) error
}

func NewRouter(h Handlers, deps RouterDeps) *gin.Engine {
	r := gin.Default()
	// Handlers pass the gin context on; this lets them see client disconnects.
	r.ContextWithFallback = true
	r.MaxMultipartMemory = maxUploadMemory

	config := cors.DefaultConfig()
	config.AllowOrigins = deps.AllowedOrigins
	config.AllowCredentials = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}
	r.Use(cors.New(config))

	r.GET("/healthz", func(c *gin.Context) {
		if deps.Health != nil {
			if err := deps.Health(c); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	authRequired := middleware.AuthMiddleware(deps.Access)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", deps.Limiter.Limit("register", 10, 1*time.Minute), h.Auth.Register)
			auth.POST("/login", deps.Limiter.Limit("login", 5, 1*time.Minute), h.Auth.Login)
		}
		profile := api.Group("/profile")
		profile.Use(authRequired)
		{
			profile.GET("", h.Profile.Get)
			profile.POST("/teacher", h.Profile.BecomeTeacher)
			profile.POST("/learner", h.Profile.BecomeLearner)
			profile.PATCH("/teacher", h.Profile.UpdateTeacher)
			profile.PATCH("/learner", h.Profile.UpdateLearner)
			profile.DELETE("/teacher", h.Profile.DeleteTeacher)
			profile.DELETE("/learner", h.Profile.DeleteLearner)
		}
		course := api.Group("/courses")
		course.Use(authRequired)
		{
			course.GET("", h.Course.List)
			course.GET("/:id", h.Course.GetOne)
			course.POST("", h.Course.Create)
			course.PATCH("/:id", h.Course.Update)
			course.DELETE("/:id", h.Course.Delete)
			course.POST("/:id/deactivate", h.Course.Deactivate)
			course.POST("/:id/reactivate", h.Course.Reactivate)
			course.GET("/:id/transactions", h.Course.Transactions)
			course.POST("/:id/enroll", deps.Limiter.Limit("enroll", 10, 1*time.Minute), h.Enrollment.Enroll)
			course.POST("/:id/reviews", h.Review.Submit)
		}
		review := api.Group("/reviews")
		review.Use(authRequired)
		{
			review.PUT("/:id", h.Review.Edit)
			review.DELETE("/:id", h.Review.Delete)
		}
		me := api.Group("/me")
		me.Use(authRequired)
		{
			me.GET("/enrollments", h.Enrollment.Mine)
			me.GET("/reviews", h.Review.Mine)
			me.GET("/courses", h.Course.MyCourses)
			me.GET("/sales", h.Course.Sales)
		}
	}

	return r
}
