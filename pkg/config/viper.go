// Package config initializes the application's configuration. It uses the
// Viper library to read settings from a config file and environment
// variables, providing a unified configuration system.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InitConfig initializes the application's configuration using Viper. It
// sets defaults for every knob, defines the config search paths, and enables
// environment variable overrides (PNCP_ prefix, dots become underscores).
// Designed to be called once at startup.
func InitConfig(logger *zap.Logger) {
	// A local .env is convenient for credentials during development; absence
	// is not an error.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/pncp-watcher/")
	viper.AddConfigPath("$HOME/.pncp-watcher")

	viper.SetDefault("http.base_url", "https://pncp.gov.br/api/consulta")
	viper.SetDefault("http.max_attempts", 5)
	viper.SetDefault("http.retry_delay", "2s")
	viper.SetDefault("http.backoff_multiplier", 2.0)
	viper.SetDefault("http.timeout", "30s")

	viper.SetDefault("search.keywords", []string{
		"obra", "engenharia", "construção", "reforma", "pavimentação",
		"edificação", "infraestrutura", "saneamento",
	})
	viper.SetDefault("search.region.cnpj_prefix", "41")
	viper.SetDefault("search.region.abbreviation", "pr")
	viper.SetDefault("search.region.names", []string{"paraná", "parana"})
	viper.SetDefault("search.region.cities", []string{
		"curitiba", "londrina", "maringá", "ponta grossa", "cascavel",
		"são josé dos pinhais", "foz do iguaçu", "colombo", "guarapuava",
	})
	viper.SetDefault("search.lookback_days", 7)
	viper.SetDefault("search.modalities", []int{4, 5, 6, 7, 8, 9})

	viper.SetDefault("export.results_dir", "resultados_licitacoes")
	viper.SetDefault("export.file_prefix", "licitacoes_parana")

	viper.SetDefault("email.sender", "")
	viper.SetDefault("email.password", "")
	viper.SetDefault("email.recipient", "")
	viper.SetDefault("email.smtp_host", "smtp.gmail.com")
	viper.SetDefault("email.smtp_port", 465)

	viper.SetEnvPrefix("PNCP") // e.g. PNCP_EMAIL_SENDER=alerts@example.com
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Info("config file not found; using defaults and environment variables")
		} else {
			logger.Error("error reading config file", zap.Error(err))
		}
	} else {
		logger.Info("using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
