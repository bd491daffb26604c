// Package walletdelivery manages delivery layer of the wallet ledger.
package walletdelivery

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/wallet-ledger/internal/domain"
	"github.com/go-petr/wallet-ledger/pkg/errorspkg"
	"github.com/go-petr/wallet-ledger/pkg/web"
)

// Service provides service layer interface needed by wallet delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package walletdelivery
type Service interface {
	Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferTxResult, error)
	Balances(ctx context.Context, key string) (domain.Balances, error)
	AllBalances(ctx context.Context) (map[string]domain.Balances, error)
	SetBalances(ctx context.Context, key string, balances domain.Balances) error
	Transactions(ctx context.Context, key string, limit int) ([]domain.Transaction, error)
}

// Notifier sends out-of-band notifications about completed transfers.
// Failures never fail the transfer.
type Notifier interface {
	TransferCompleted(ctx context.Context, transaction domain.Transaction)
}

// Handler facilitates wallet delivery layer logic.
type Handler struct {
	service  Service
	notifier Notifier
}

// NewHandler returns wallet handler.
func NewHandler(s Service, n Notifier) *Handler {
	return &Handler{
		service:  s,
		notifier: n,
	}
}

type transferRequest struct {
	Sender      string `json:"sender" binding:"required"`
	Recipient   string `json:"recipient" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Currency    string `json:"currency" binding:"required,currency"`
	BankAmount  string `json:"bank_amount"`
	Description string `json:"description"`
}

type transferData struct {
	Success          bool               `json:"success"`
	Transaction      domain.Transaction `json:"transaction"`
	SenderBalance    domain.Balances    `json:"sender_balance"`
	RecipientBalance domain.Balances    `json:"recipient_balance"`
}

// Transfer handles http request to transfer funds between two wallets.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	arg := domain.CreateTransferParams{
		Sender:         req.Sender,
		Recipient:      req.Recipient,
		WalletAmount:   req.Amount,
		Currency:       req.Currency,
		BankAmount:     req.BankAmount,
		Description:    req.Description,
		IdempotencyKey: gctx.GetHeader("Idempotency-Key"),
	}

	result, err := h.service.Transfer(ctx, arg)
	if err != nil {
		respondError(gctx, err)
		return
	}

	if h.notifier != nil {
		go h.notifier.TransferCompleted(context.Background(), result.Transaction)
	}

	gctx.JSON(http.StatusOK, web.Response{Data: transferData{
		Success:          true,
		Transaction:      result.Transaction,
		SenderBalance:    result.SenderBalance,
		RecipientBalance: result.RecipientBalance,
	}})
}

// GetBalance handles http request to read a single account's balances,
// lazily creating the account.
func (h *Handler) GetBalance(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	balances, err := h.service.Balances(ctx, gctx.Param("account"))
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: balances})
}

// ListBalances handles http request to dump every account's balances.
func (h *Handler) ListBalances(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	balances, err := h.service.AllBalances(ctx)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: balances})
}

type setBalanceRequest struct {
	Balances map[string]string `json:"balances" binding:"required"`
}

// SetBalance handles http request to administratively overwrite an account's
// balances.
func (h *Handler) SetBalance(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req setBalanceRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	balances := make(domain.Balances, len(req.Balances))

	for currency, amount := range req.Balances {
		d, err := decimal.NewFromString(amount)
		if err != nil {
			l.Info().Err(err).Send()
			gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))

			return
		}

		balances[currency] = d
	}

	account := gctx.Param("account")

	if err := h.service.SetBalances(ctx, account, balances); err != nil {
		respondError(gctx, err)
		return
	}

	updated, err := h.service.Balances(ctx, account)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: updated})
}

// ListTransactions handles http request to list an account's transactions,
// newest first.
func (h *Handler) ListTransactions(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	limit := 0

	if raw := gctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			l.Info().Str("limit", raw).Msg("invalid limit")
			gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))

			return
		}

		limit = parsed
	}

	transactions, err := h.service.Transactions(ctx, gctx.Param("account"), limit)
	if err != nil {
		respondError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: transactions})
}

func respondError(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())
	l.Info().Err(err).Send()

	switch err {
	case
		domain.ErrInvalidAmount,
		domain.ErrNegativeAmount,
		domain.ErrInsufficientBalance,
		domain.ErrCurrencyNotSupported:
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	case domain.ErrIdempotencyConflict:
		gctx.JSON(http.StatusConflict, web.Error(err))

		return
	case domain.ErrPersistenceFailure:
		gctx.JSON(http.StatusInternalServerError, web.Error(err))

		return
	}

	gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
}
