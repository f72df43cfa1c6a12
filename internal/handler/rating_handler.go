package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novatorsmobile/studentvoice-api/internal/dto"
	"github.com/novatorsmobile/studentvoice-api/internal/service"
	"github.com/novatorsmobile/studentvoice-api/pkg/response"
)

// RatingHandler exposes derived ratings for the entity hierarchy.
type RatingHandler struct {
	service *service.RatingService
}

// NewRatingHandler constructs a rating handler.
func NewRatingHandler(svc *service.RatingService) *RatingHandler {
	return &RatingHandler{service: svc}
}

// Meeting godoc
// @Summary Get a meeting's rating
// @Tags Ratings
// @Produce json
// @Param id path string true "Meeting ID"
// @Success 200 {object} response.Envelope
// @Router /ratings/meetings/{id} [get]
func (h *RatingHandler) Meeting(c *gin.Context) {
	rating, err := h.service.Meeting(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.RatingResponse{Rating: rating}, nil)
}

// Subject godoc
// @Summary Get a subject's rating
// @Tags Ratings
// @Produce json
// @Param id path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /ratings/subjects/{id} [get]
func (h *RatingHandler) Subject(c *gin.Context) {
	rating, err := h.service.Subject(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.RatingResponse{Rating: rating}, nil)
}

// Teacher godoc
// @Summary Get a teacher's rating
// @Tags Ratings
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /ratings/teachers/{id} [get]
func (h *RatingHandler) Teacher(c *gin.Context) {
	rating, err := h.service.Teacher(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.RatingResponse{Rating: rating}, nil)
}

// University godoc
// @Summary Get a university's rating rollups
// @Tags Ratings
// @Produce json
// @Param id path string true "University ID"
// @Success 200 {object} response.Envelope
// @Router /ratings/universities/{id} [get]
func (h *RatingHandler) University(c *gin.Context) {
	rollup, err := h.service.University(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rollup, nil)
}
