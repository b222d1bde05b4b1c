package handlers

import (
	"net/http"

	"facility_workorders/internal/adapter/http/dto/request"
	"facility_workorders/internal/adapter/http/dto/response"
	"facility_workorders/internal/usecase"

	"github.com/gin-gonic/gin"
)

// QuoteHandler exposes the bid ledger.
type QuoteHandler struct {
	usecase usecase.IQuoteUseCase
}

func NewQuoteHandler(uc usecase.IQuoteUseCase) *QuoteHandler {
	return &QuoteHandler{usecase: uc}
}

// Submit godoc
// @Summary      Submit a quote for a work order open for bidding
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id path string true "Work order id"
// @Param        payload body request.QuoteRequest true "Quote"
// @Success      201 {object} response.QuoteResponse
// @Failure      400 {object} pkg.HTTPError
// @Failure      409 {object} pkg.HTTPError
// @Security     BearerAuth
// @Router       /work-orders/{id}/quotes [post]
func (h *QuoteHandler) Submit(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload request.QuoteRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeAppError(c, errInvalidPayload.WithDetails(err))
		return
	}
	q, err := h.usecase.Submit(c.Request.Context(), c.Param("id"), payload.ToInput(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.FromQuote(q))
}

// ListForWorkOrder godoc
// @Summary      List the quotes of a work order
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Work order id"
// @Success      200 {array} response.QuoteResponse
// @Security     BearerAuth
// @Router       /work-orders/{id}/quotes [get]
func (h *QuoteHandler) ListForWorkOrder(c *gin.Context) {
	list, err := h.usecase.ListFor(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromQuotes(list))
}

// Share godoc
// @Summary      Forward selected quotes to the client
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id path string true "Work order id"
// @Param        payload body request.ShareQuotesRequest true "Quote ids"
// @Success      200 {object} response.WorkOrderResponse
// @Security     BearerAuth
// @Router       /work-orders/{id}/quotes/share [post]
func (h *QuoteHandler) Share(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload request.ShareQuotesRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeAppError(c, errInvalidPayload.WithDetails(err))
		return
	}
	wo, err := h.usecase.ShareWithClient(c.Request.Context(), c.Param("id"), payload.QuoteIDs, actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromWorkOrder(wo))
}

// Get godoc
// @Summary      Get a quote
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote id"
// @Success      200 {object} response.QuoteResponse
// @Failure      404 {object} pkg.HTTPError
// @Security     BearerAuth
// @Router       /quotes/{id} [get]
func (h *QuoteHandler) Get(c *gin.Context) {
	q, err := h.usecase.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromQuote(q))
}

// Revise godoc
// @Summary      Revise a pending quote
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Param        id path string true "Quote id"
// @Param        payload body request.QuoteRequest true "Revised amounts"
// @Success      200 {object} response.QuoteResponse
// @Security     BearerAuth
// @Router       /quotes/{id} [put]
func (h *QuoteHandler) Revise(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var payload request.QuoteRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeAppError(c, errInvalidPayload.WithDetails(err))
		return
	}
	q, err := h.usecase.Revise(c.Request.Context(), c.Param("id"), payload.ToInput(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromQuote(q))
}

// Recommend godoc
// @Summary      Approve/reject recommendation against the benchmark
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote id"
// @Success      200 {object} response.RecommendationResponse
// @Security     BearerAuth
// @Router       /quotes/{id}/recommendation [get]
func (h *QuoteHandler) Recommend(c *gin.Context) {
	rec, err := h.usecase.Recommend(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromRecommendation(rec))
}

// Accept godoc
// @Summary      Accept a quote
// @Description  Accepts the quote, rejects its open siblings and assigns the work order.
// @Tags         quotes
// @Produce      json
// @Param        id path string true "Quote id"
// @Success      200 {object} response.AcceptQuoteResponse
// @Failure      409 {object} pkg.HTTPError
// @Security     BearerAuth
// @Router       /quotes/{id}/accept [post]
func (h *QuoteHandler) Accept(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	res, err := h.usecase.Accept(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.FromAcceptResult(res))
}
