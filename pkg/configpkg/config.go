// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper fron a config file or environement variables.
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	StorePath     string `mapstructure:"STORE_PATH"`
	Environement  string `mapstructure:"GO_ENV"`

	// Rate and fee policy. Decimal values kept as strings and parsed once
	// at wiring time.
	WalletFeeRate     string `mapstructure:"WALLET_FEE_RATE"`
	ConversionFeeRate string `mapstructure:"CONVERSION_FEE_RATE"`
	ExchangeRate      string `mapstructure:"EXCHANGE_RATE"`
	// SettlementPreferences lists per-account preferred settlement
	// currencies as "account=CUR" pairs separated by commas.
	SettlementPreferences string `mapstructure:"SETTLEMENT_PREFERENCES"`

	// External payment provider. Dry-run mode when the API key is empty.
	ProviderBaseURL string `mapstructure:"PROVIDER_BASE_URL"`
	ProviderAPIKey  string `mapstructure:"PROVIDER_API_KEY"`

	// Outbound transfer notifications. Noop sender when the host is empty.
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = viper.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
