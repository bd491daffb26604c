// Package providerdelivery manages passthrough routes over the external
// payment provider client.
package providerdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/wallet-ledger/internal/provider"
	"github.com/go-petr/wallet-ledger/pkg/errorspkg"
	"github.com/go-petr/wallet-ledger/pkg/web"
)

// Client provides the provider client interface needed by the passthrough
// handlers.
type Client interface {
	Wallets(ctx context.Context, customerID string) ([]provider.Wallet, error)
	WalletHistory(ctx context.Context, walletID string) ([]provider.HistoryItem, error)
	ExchangeRate(ctx context.Context, from, to string) (provider.Rate, error)
}

// Handler facilitates provider passthrough delivery logic.
type Handler struct {
	client Client
}

// NewHandler returns provider passthrough handler.
func NewHandler(c Client) *Handler {
	return &Handler{client: c}
}

// Wallets proxies the customer's wallet listing.
func (h *Handler) Wallets(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	wallets, err := h.client.Wallets(ctx, gctx.Param("id"))
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusBadGateway, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: wallets})
}

// WalletHistory proxies the wallet's movement history.
func (h *Handler) WalletHistory(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	items, err := h.client.WalletHistory(ctx, gctx.Param("id"))
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusBadGateway, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: items})
}

// ExchangeRate proxies the provider's rate quote for a currency pair.
func (h *Handler) ExchangeRate(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	rate, err := h.client.ExchangeRate(ctx, gctx.Param("from"), gctx.Param("to"))
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusBadGateway, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: rate})
}
