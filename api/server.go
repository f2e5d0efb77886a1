// Package api serves the read-only listing endpoints the embedded booking
// form loads its hotel and category data from.
package api

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ryab476/hotel-booking/config"
	"github.com/ryab476/hotel-booking/storage"
)

// HotelWithCategories is the response shape the mini-app form expects.
type HotelWithCategories struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	Categories []CategorySummary `json:"categories"`
}

// CategorySummary is the category projection inside HotelWithCategories.
// Price is a plain float for the form's JavaScript.
type CategorySummary struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Server hosts the listing API
type Server struct {
	store  storage.Store
	srv    *http.Server
	logger *zap.Logger
}

// NewServer builds the gin router and wraps it in an http.Server on the
// given port.
func NewServer(store storage.Store, port string, logger *zap.Logger) *Server {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(errorHandler())
	router.Use(requestID())
	router.Use(rateLimit())
	// Allow-all CORS: the form is served from the mini-app host
	router.Use(cors.Default())

	s := &Server{
		store: store,
		srv: &http.Server{
			Addr:    ":" + port,
			Handler: router,
		},
		logger: logger,
	}

	router.GET("/api/hotels-with-categories", s.hotelsWithCategories)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return s
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("API server started", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// hotelsWithCategories returns every hotel with its room categories
func (s *Server) hotelsWithCategories(c *gin.Context) {
	hotels, err := s.store.ListHotels("name", false)
	if err != nil {
		s.logger.Error("Failed to list hotels", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "Ошибка загрузки данных", "")
		return
	}

	result := make([]HotelWithCategories, 0, len(hotels))
	for _, hotel := range hotels {
		categories, err := s.store.ListRoomCategories(hotel.ID)
		if err != nil {
			s.logger.Error("Failed to list room categories",
				zap.Int64("hotel_id", hotel.ID), zap.Error(err))
			jsonError(c, http.StatusInternalServerError, "Ошибка загрузки данных", "")
			return
		}

		entry := HotelWithCategories{
			ID:         hotel.ID,
			Name:       hotel.Name,
			Categories: make([]CategorySummary, 0, len(categories)),
		}
		for _, rc := range categories {
			entry.Categories = append(entry.Categories, CategorySummary{
				ID:    rc.ID,
				Name:  rc.Name,
				Price: rc.Price.InexactFloat64(),
			})
		}
		result = append(result, entry)
	}

	c.JSON(http.StatusOK, result)
}
