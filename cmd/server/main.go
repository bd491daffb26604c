package main

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/go-petr/wallet-ledger/pkg/configpkg"

	"github.com/go-petr/wallet-ledger/internal/middleware"
	"github.com/go-petr/wallet-ledger/internal/notifier"
	"github.com/go-petr/wallet-ledger/internal/provider"
	"github.com/go-petr/wallet-ledger/internal/providerdelivery"
	"github.com/go-petr/wallet-ledger/internal/ratefee"
	"github.com/go-petr/wallet-ledger/internal/walletdelivery"
	"github.com/go-petr/wallet-ledger/internal/walletrepo"
	"github.com/go-petr/wallet-ledger/internal/walletservice"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	server, err := createServer(logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	err = server.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}

func createPolicy(config configpkg.Config) (*ratefee.Policy, error) {
	walletFeeRate, err := decimal.NewFromString(config.WalletFeeRate)
	if err != nil {
		return nil, errors.New("invalid wallet fee rate")
	}

	conversionFeeRate, err := decimal.NewFromString(config.ConversionFeeRate)
	if err != nil {
		return nil, errors.New("invalid conversion fee rate")
	}

	exchangeRate, err := decimal.NewFromString(config.ExchangeRate)
	if err != nil {
		return nil, errors.New("invalid exchange rate")
	}

	preferences, err := ratefee.ParsePreferences(config.SettlementPreferences)
	if err != nil {
		return nil, errors.New("invalid settlement preferences")
	}

	return ratefee.New(walletFeeRate, conversionFeeRate, ratefee.NewFixedRates(exchangeRate), preferences), nil
}

func createServer(logger zerolog.Logger, config configpkg.Config) (*gin.Engine, error) {

	walletRepo, err := walletrepo.NewRepoJSON(config.StorePath)
	if err != nil {
		return nil, err
	}

	policy, err := createPolicy(config)
	if err != nil {
		return nil, err
	}

	walletService := walletservice.New(walletRepo, policy)

	var transferNotifier walletdelivery.Notifier = notifier.Noop{}
	if config.SMTPHost != "" {
		transferNotifier = notifier.NewSMTP(config, logger)
	}

	walletHandler := walletdelivery.NewHandler(walletService, transferNotifier)

	providerClient := provider.NewClient(config.ProviderBaseURL, config.ProviderAPIKey)
	providerHandler := providerdelivery.NewHandler(providerClient)

	if providerClient.DryRun() {
		logger.Info().Msg("payment provider client in dry-run mode")
	}

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()

	server.Use(middleware.RequestLogger(logger))
	server.Use(gin.Recovery())

	server.GET("/balances", walletHandler.ListBalances)
	server.GET("/balances/:account", walletHandler.GetBalance)
	server.PUT("/balances/:account", walletHandler.SetBalance)
	server.POST("/transfers", walletHandler.Transfer)
	server.GET("/accounts/:account/transactions", walletHandler.ListTransactions)

	server.GET("/provider/customers/:id/wallets", providerHandler.Wallets)
	server.GET("/provider/wallets/:id/history", providerHandler.WalletHistory)
	server.GET("/provider/rates/:from/:to", providerHandler.ExchangeRate)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("currency", walletdelivery.ValidCurrency)
		if err != nil {
			return nil, errors.New("cannot register currency validator")
		}
	}

	return server, nil
}
