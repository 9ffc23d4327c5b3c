package intake

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/monitoring"
	"github.com/dwarvesf/ape-bridge-backend/internal/store/bridgetransaction"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/logger"
)

type Intake struct {
	store    bridgetransaction.IStore
	fees     FeeTable
	required map[model.Network]int
	validate *validator.Validate
	logger   *logger.Logger
	recorder *monitoring.BusinessMetricsRecorder
}

// New fails when a collaborator is missing. requiredConfirmations maps a
// source network to its finality threshold; unmapped networks use the default.
func New(
	store bridgetransaction.IStore,
	fees FeeTable,
	requiredConfirmations map[model.Network]int,
	logger *logger.Logger,
	recorder *monitoring.BusinessMetricsRecorder,
) (*Intake, error) {
	switch {
	case store == nil:
		return nil, errors.New("intake: store is required")
	case fees == nil:
		return nil, errors.New("intake: fee table is required")
	case logger == nil:
		return nil, errors.New("intake: logger is required")
	case recorder == nil:
		return nil, errors.New("intake: metrics recorder is required")
	}

	required := make(map[model.Network]int, len(requiredConfirmations))
	for network, n := range requiredConfirmations {
		if n > 0 {
			required[network] = n
		}
	}

	return &Intake{
		store:    store,
		fees:     fees,
		required: required,
		validate: validator.New(),
		logger:   logger,
		recorder: recorder,
	}, nil
}

func (i *Intake) Submit(ctx context.Context, req SubmitRequest) (*model.BridgeTransaction, error) {
	if err := i.validateRequest(req); err != nil {
		i.recorder.RecordIntake(string(req.FromNetwork), "rejected")
		i.logger.Debug("[Submit][validateRequest]", map[string]string{
			"error":  err.Error(),
			"wallet": req.WalletAddress,
		})
		return nil, err
	}

	record := &model.BridgeTransaction{
		WalletAddress:         strings.TrimSpace(req.WalletAddress),
		TransactionHash:       strings.TrimSpace(req.TransactionHash),
		FromNetwork:           req.FromNetwork,
		ToNetwork:             req.ToNetwork,
		Asset:                 req.Asset,
		Amount:                strings.TrimSpace(req.Amount),
		Fee:                   i.fees.Lookup(req.Asset, req.FromNetwork, req.ToNetwork),
		Status:                model.TransactionStatusPending,
		Confirmations:         0,
		RequiredConfirmations: i.requiredFor(req.FromNetwork),
		Type:                  model.TypeForRoute(req.FromNetwork),
	}

	created, err := i.store.Create(ctx, record)
	if err != nil {
		status := "error"
		if model.IsKind(err, model.ErrorKindConflict) {
			status = "conflict"
		}
		i.recorder.RecordIntake(string(req.FromNetwork), status)
		i.logger.Error("[Submit][Create]", map[string]string{
			"error":   err.Error(),
			"tx_hash": record.TransactionHash,
		})
		return nil, err
	}

	i.recorder.RecordIntake(string(created.FromNetwork), "accepted")
	i.logger.Info("[Submit] bridge transaction accepted", map[string]string{
		"id":      strconv.FormatInt(created.ID, 10),
		"tx_hash": created.TransactionHash,
		"type":    string(created.Type),
		"fee":     created.Fee,
	})
	return created, nil
}

// validateRequest checks fields in a fixed order and reports the first violation.
func (i *Intake) validateRequest(req SubmitRequest) error {
	if i.validate.Var(strings.TrimSpace(req.WalletAddress), "required") != nil {
		return model.NewValidationError("walletAddress", "wallet address is required")
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return model.NewValidationError("amount", "amount must be a decimal number")
	}
	if !amount.IsPositive() {
		return model.NewValidationError("amount", "amount must be greater than 0")
	}

	if i.validate.Var(string(req.FromNetwork), "required,oneof=ethereum apechain") != nil {
		return model.NewValidationError("fromNetwork", "fromNetwork must be one of: ethereum, apechain")
	}
	if i.validate.Var(string(req.ToNetwork), "required,oneof=ethereum apechain") != nil {
		return model.NewValidationError("toNetwork", "toNetwork must be one of: ethereum, apechain")
	}
	if req.FromNetwork == req.ToNetwork {
		return model.NewValidationError("toNetwork", "source and destination networks must differ")
	}

	if i.validate.Var(string(req.Asset), "required,oneof=eth ape") != nil {
		return model.NewValidationError("asset", "asset must be one of: eth, ape")
	}
	if i.validate.Var(strings.TrimSpace(req.TransactionHash), "required") != nil {
		return model.NewValidationError("transactionHash", "transaction hash is required")
	}

	return nil
}

func (i *Intake) requiredFor(network model.Network) int {
	if n, ok := i.required[network]; ok {
		return n
	}
	return model.DefaultRequiredConfirmations
}
