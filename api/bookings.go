package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/skyresults/internal/domain"
	"github.com/Domenick1991/skyresults/internal/navigation"
	"github.com/Domenick1991/skyresults/internal/service/booking"
	"github.com/Domenick1991/skyresults/internal/view"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.HandoffUseCase
	results view.ResultStore
}

type handoffResponse struct {
	Token     string              `json:"token"`
	Flight    domain.FlightRecord `json:"flight"`
	CreatedAt string              `json:"created_at"`
	ExpiresAt string              `json:"expires_at"`
}

func NewBookingHandler(service booking.HandoffUseCase, results view.ResultStore) *BookingHandler {
	return &BookingHandler{service: service, results: results}
}

func (h *BookingHandler) Register(router gin.IRoutes) {
	router.POST("/book", h.create)
	router.GET("/book/:token", h.get)
}

// create books the flight at index in a result set the results page stored,
// so the hand-off carries exactly the record that was shown.
func (h *BookingHandler) create(c *gin.Context) {
	resultID := c.PostForm("results")
	index, err := strconv.Atoi(c.PostForm("index"))
	if resultID == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "results and index are required"})
		return
	}

	ctx := c.Request.Context()
	v := view.New(nil, h.service, view.WithResultStore(h.results, 0))
	defer v.Close()

	if err := v.Resume(ctx, resultID); err != nil {
		if errors.Is(err, view.ErrResultsExpired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "search results expired, please search again"})
			return
		}
		slog.ErrorContext(ctx, "failed to load result set", "results", resultID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start booking"})
		return
	}

	location, err := v.Book(ctx, index)
	if err != nil {
		if errors.Is(err, view.ErrNoSuchFlight) || errors.Is(err, navigation.ErrInvalidPayload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.ErrorContext(ctx, "booking hand-off failed", "results", resultID, "index", index, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start booking"})
		return
	}

	c.Redirect(http.StatusSeeOther, location)
}

func (h *BookingHandler) get(c *gin.Context) {
	handoff, err := h.service.Get(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, booking.ErrHandoffNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, handoffResponse{
		Token:     handoff.Token,
		Flight:    handoff.Flight,
		CreatedAt: handoff.CreatedAt.Format(time.RFC3339),
		ExpiresAt: handoff.ExpiresAt.Format(time.RFC3339),
	})
}
