// Package api wires the HTTP server: routes, middleware and lifecycle.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fitgrid/internal/config"
	"fitgrid/internal/handlers"
	"fitgrid/internal/middleware"
)

type Server struct {
	srv *http.Server
}

func NewServer(cfg *config.Config, h *handlers.Handler) *Server {
	gin.SetMode(cfg.GinMode)

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.CORS(),
	)

	router.GET("/health", h.Health)
	router.GET("/metrics", middleware.MetricsHandler())

	api := router.Group("/api")
	{
		series := api.Group("/series")
		{
			series.POST("", h.CreateSeries)
			series.GET("", h.ListSeries)
			series.GET("/:id", h.GetSeries)
			series.PUT("/:id", h.UpdateSeries)
			series.PATCH("/:id/active", h.ToggleSeries)
			series.DELETE("/:id", h.DeleteSeries)
			series.POST("/:id/generate", h.GenerateSeries)
		}

		classes := api.Group("/classes")
		{
			classes.POST("", h.CreateClass)
			classes.GET("", h.ListClasses)
			classes.GET("/search", h.SearchClasses)
			classes.GET("/:id", h.GetClass)
			classes.PUT("/:id", h.UpdateClass)
			classes.DELETE("/:id", h.DeleteClass)
			classes.PATCH("/:id/status", h.ChangeClassStatus)
			classes.PATCH("/:id/instructor", h.ReassignInstructor)
		}

		api.GET("/schedule", h.Schedule)

		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.PATCH("/cancel", h.CancelBooking)
		}

		rooms := api.Group("/rooms")
		{
			rooms.POST("", h.CreateRoom)
			rooms.GET("", h.ListRooms)
			rooms.GET("/:id", h.GetRoom)
		}

		instructors := api.Group("/instructors")
		{
			instructors.POST("", h.CreateInstructor)
			instructors.GET("", h.ListInstructors)
			instructors.GET("/:id", h.GetInstructor)
		}

		activityTypes := api.Group("/activity-types")
		{
			activityTypes.POST("", h.CreateActivityType)
			activityTypes.GET("", h.ListActivityTypes)
			activityTypes.GET("/:id", h.GetActivityType)
		}
	}

	return &Server{
		srv: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  cfg.RequestTimeout,
			WriteTimeout: cfg.RequestTimeout,
			IdleTimeout:  2 * time.Minute,
		},
	}
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
