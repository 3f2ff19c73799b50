package cmd

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "resume-screener"
)

type Config struct {
	CompanyName   string               `mapstructure:"company-name"`
	Screening     *ScreeningConfig     `mapstructure:"screening"`
	Source        *SourceConfig        `mapstructure:"source"`
	Notifications *NotificationsConfig `mapstructure:"notifications"`
	AI            *AIConfig            `mapstructure:"ai"`
}

type ScreeningConfig struct {
	Threshold                 float64 `mapstructure:"threshold"`
	RetryLimit                int     `mapstructure:"retry-limit"`
	ExtractionConfidenceFloor float64 `mapstructure:"extraction-confidence-floor"`
	Workers                   int     `mapstructure:"workers"`
	NotificationEnabled       bool    `mapstructure:"notification-enabled"`
}

type SourceConfig struct {
	Dir    string        `mapstructure:"dir"`
	GitHub *GitHubConfig `mapstructure:"github"`
}

type GitHubConfig struct {
	Owner     string `mapstructure:"owner"`
	Repo      string `mapstructure:"repo"`
	TokenFile string `mapstructure:"token-file"`
}

type NotificationsConfig struct {
	SMTP *SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	From         string `mapstructure:"from"`
	PasswordFile string `mapstructure:"password-file"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	Model        string `mapstructure:"model"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-screener is a cli for automated first-pass resume screening of job candidates",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-screener.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	// Secrets may come from a .env file next to the config.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
