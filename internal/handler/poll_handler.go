package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/novatorsmobile/studentvoice-api/internal/service"
	appErrors "github.com/novatorsmobile/studentvoice-api/pkg/errors"
	"github.com/novatorsmobile/studentvoice-api/pkg/response"
)

// PollHandler handles poll endpoints.
type PollHandler struct {
	service *service.PollService
}

// NewPollHandler constructs a poll handler.
func NewPollHandler(svc *service.PollService) *PollHandler {
	return &PollHandler{service: svc}
}

// List godoc
// @Summary List polls
// @Tags Polls
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /polls [get]
func (h *PollHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	polls, pagination, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, polls, pagination)
}

// Get godoc
// @Summary Get poll by id
// @Tags Polls
// @Produce json
// @Param id path string true "Poll ID"
// @Success 200 {object} response.Envelope
// @Router /polls/{id} [get]
func (h *PollHandler) Get(c *gin.Context) {
	poll, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, poll, nil)
}

// Results godoc
// @Summary List the recorded answer sets of a poll
// @Tags Polls
// @Produce json
// @Security BearerAuth
// @Param id path string true "Poll ID"
// @Success 200 {object} response.Envelope
// @Router /polls/{id}/results [get]
func (h *PollHandler) Results(c *gin.Context) {
	results, err := h.service.Results(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Submit godoc
// @Summary Submit one poll result
// @Description Records a respondent's answers and updates the poll's running averages.
// @Tags Polls
// @Accept json
// @Produce json
// @Param id path string true "Poll ID"
// @Param payload body service.SubmitPollResultRequest true "Answer set"
// @Success 201 {object} response.Envelope
// @Router /polls/{id}/results [post]
func (h *PollHandler) Submit(c *gin.Context) {
	var req service.SubmitPollResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	poll, err := h.service.Submit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, poll)
}
