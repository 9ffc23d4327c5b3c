package transaction

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/dwarvesf/ape-bridge-backend/internal/intake"
	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/query"
	"github.com/dwarvesf/ape-bridge-backend/internal/tracker"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/logger"
	"github.com/dwarvesf/ape-bridge-backend/internal/view"
)

type handler struct {
	intake   intake.IIntake
	query    query.IQuery
	tracker  tracker.ITracker
	logger   *logger.Logger
	validate *validator.Validate
}

func New(intake intake.IIntake, query query.IQuery, tracker tracker.ITracker, logger *logger.Logger) IHandler {
	return &handler{
		intake:   intake,
		query:    query,
		tracker:  tracker,
		logger:   logger,
		validate: validator.New(),
	}
}

// Create godoc
// @Summary Submit a bridge transaction
// @Description Records a deposit or withdrawal intent as a pending transaction
// @id createTransaction
// @Tags Transaction
// @Accept json
// @Produce json
// @Param request body CreateRequest true "Bridge transfer"
// @Success 201 {object} view.Response[model.BridgeTransaction]
// @Failure 400 {object} view.Response[any]
// @Failure 409 {object} view.Response[any]
// @Failure 500 {object} view.Response[any]
// @Router /transactions [post]
func (h *handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("[Create][ShouldBindJSON]", map[string]string{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, model.NewValidationError("body", "malformed request body"), "", ""))
		return
	}

	record, err := h.intake.Submit(c.Request.Context(), intake.SubmitRequest{
		WalletAddress:   req.WalletAddress,
		Asset:           req.Asset,
		Amount:          req.Amount,
		FromNetwork:     req.FromNetwork,
		ToNetwork:       req.ToNetwork,
		TransactionHash: req.TransactionHash,
	})
	if err != nil {
		h.respondError(c, "[Create][Submit]", err)
		return
	}

	c.JSON(http.StatusCreated, view.CreateResponse(record, nil, "", ""))
}

// ListByWallet godoc
// @Summary List bridge transactions of a wallet
// @Description Returns every transaction of the wallet, newest first. The address match is case-insensitive
// @id listTransactionsByWallet
// @Tags Transaction
// @Produce json
// @Param address path string true "Wallet address"
// @Success 200 {object} view.Response[[]model.BridgeTransaction]
// @Failure 500 {object} view.Response[any]
// @Router /transactions/wallet/{address} [get]
func (h *handler) ListByWallet(c *gin.Context) {
	records, err := h.query.ListByWallet(c.Request.Context(), c.Param("address"))
	if err != nil {
		h.respondError(c, "[ListByWallet][ListByWallet]", err)
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(records, nil, "", ""))
}

// GetByHash godoc
// @Summary Get a bridge transaction by source transaction hash
// @id getTransactionByHash
// @Tags Transaction
// @Produce json
// @Param hash path string true "Source chain transaction hash"
// @Success 200 {object} view.Response[model.BridgeTransaction]
// @Failure 404 {object} view.Response[any]
// @Failure 500 {object} view.Response[any]
// @Router /transactions/hash/{hash} [get]
func (h *handler) GetByHash(c *gin.Context) {
	record, err := h.query.GetByHash(c.Request.Context(), c.Param("hash"))
	if err != nil {
		h.respondError(c, "[GetByHash][GetByHash]", err)
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(record, nil, "", ""))
}

// GetByID godoc
// @Summary Get a bridge transaction by id
// @id getTransactionByID
// @Tags Transaction
// @Produce json
// @Param id path int true "Transaction id"
// @Success 200 {object} view.Response[model.BridgeTransaction]
// @Failure 400 {object} view.Response[any]
// @Failure 404 {object} view.Response[any]
// @Router /transactions/{id} [get]
func (h *handler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	record, err := h.query.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "[GetByID][GetByID]", err)
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(record, nil, "", ""))
}

// UpdateStatus godoc
// @Summary Update the status of a bridge transaction
// @Description Applies a monotonic status transition. Completed and failed records are immutable
// @id updateTransactionStatus
// @Tags Transaction
// @Accept json
// @Produce json
// @Param id path int true "Transaction id"
// @Param request body UpdateStatusRequest true "Target status"
// @Success 200 {object} view.Response[model.BridgeTransaction]
// @Failure 400 {object} view.Response[any]
// @Failure 404 {object} view.Response[any]
// @Failure 409 {object} view.Response[any]
// @Failure 422 {object} view.Response[any]
// @Router /transactions/{id}/status [patch]
func (h *handler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, model.NewValidationError("body", "malformed request body"), "", ""))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.logger.Debug("[UpdateStatus][Validator]", map[string]string{
			"error": err.Error(),
			"id":    c.Param("id"),
		})
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, statusValidationError(err), "", ""))
		return
	}

	record, err := h.tracker.UpdateStatus(c.Request.Context(), id, req.Status, req.Confirmations)
	if err != nil {
		h.respondError(c, "[UpdateStatus][UpdateStatus]", err)
		return
	}

	c.JSON(http.StatusOK, view.CreateResponse(record, nil, "", ""))
}

func (h *handler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, view.CreateResponse[any](nil, model.NewValidationError("id", "id must be a positive integer"), "", ""))
		return 0, false
	}
	return id, true
}

func (h *handler) respondError(c *gin.Context, step string, err error) {
	code := StatusCode(err)
	fields := map[string]string{
		"error": err.Error(),
		"path":  c.FullPath(),
	}
	if code >= http.StatusInternalServerError {
		h.logger.Error(step, fields)
	} else {
		h.logger.Debug(step, fields)
	}
	c.JSON(code, view.CreateResponse[any](nil, err, "", ""))
}

// StatusCode maps an error kind to its HTTP status.
func StatusCode(err error) int {
	bridgeErr, ok := model.AsBridgeError(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch bridgeErr.Kind {
	case model.ErrorKindValidation:
		return http.StatusBadRequest
	case model.ErrorKindConflict:
		return http.StatusConflict
	case model.ErrorKindNotFound:
		return http.StatusNotFound
	case model.ErrorKindInvalidTransition:
		if bridgeErr.Reason == model.TransitionReasonTerminal {
			return http.StatusConflict
		}
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func statusValidationError(err error) *model.BridgeError {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		if verrs[0].Field() == "Confirmations" {
			return model.NewValidationError("confirmations", "confirmations must not be negative")
		}
	}
	return model.NewValidationError("status", "status must be one of: pending, confirming, completed, failed")
}
