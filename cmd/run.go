package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/ai/gemini"
	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/notify"
	"github.com/spigell/resume-screener/internal/scorer"
	"github.com/spigell/resume-screener/internal/screening"
	"github.com/spigell/resume-screener/internal/secrets"
	"github.com/spigell/resume-screener/internal/source"
	"github.com/spigell/resume-screener/internal/workflow"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	defaultSourceDir = "resumes"
)

var sendPrompt = promptui.Select{
	Label: "Send real emails to candidates?",
	Items: []string{PromptYes, PromptNo},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a screening session for a job role",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("job-role", "r", "", "job role folder with candidate documents")
	runCmd.Flags().String("job-title", "", "override the job title from the config")
	runCmd.Flags().BoolP("test-mode", "t", false, "simulate notifications instead of sending them")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before sending real emails")
	runCmd.Flags().StringP("output", "o", "", "write the session report JSON to this file")

	runCmd.MarkFlagRequired("job-role")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-screener", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if err := validateScreening(config.Screening); err != nil {
		logger.Fatal("validating the screening configuration", zap.Error(err))
	}

	requirements, err := screening.RequirementsFromMap(viper.GetStringMap("job"))
	if err != nil {
		logger.Fatal("decoding job requirements", zap.Error(err))
	}
	requirements.Threshold = config.Screening.Threshold

	if title := cmd.Flag("job-title").Value.String(); title != "" {
		requirements.Title = title
	}

	if err := requirements.Validate(); err != nil {
		logger.Fatal("validating job requirements", zap.Error(err))
	}

	src, err := buildSource(config, logger)
	if err != nil {
		logger.Fatal("building the document source", zap.Error(err))
	}

	generator, err := buildGenerator(ctx, config.AI)
	if err != nil {
		logger.Fatal(
			"building the gemini generator",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file in the configuration file or GEMINI_API_KEY in the environment"),
		)
	}

	logger.Info("model configured", zap.String("model", generator.Model()))

	sender, err := buildSender(cmd, config, logger)
	if err != nil {
		logger.Fatal("building the notification sender", zap.Error(err))
	}

	notifier, err := notify.NewNotifier(sender, config.CompanyName, logger)
	if err != nil {
		logger.Fatal("building the notifier", zap.Error(err))
	}

	orchestrator, err := workflow.New(workflow.Config{
		Requirements:              requirements,
		JobRole:                   cmd.Flag("job-role").Value.String(),
		Workers:                   config.Screening.Workers,
		ExtractionConfidenceFloor: config.Screening.ExtractionConfidenceFloor,
		NotificationRetries:       workflow.DefaultNotificationRetries,
	},
		src,
		extract.New(logger),
		scorer.New(generator, scorerRetryLimit(config), maxLogLength(config), logger),
		notifier,
		logger,
	)
	if err != nil {
		logger.Fatal("building the orchestrator", zap.Error(err))
	}

	// First interrupt stops dispatch and lets in-flight candidates finish,
	// the second one aborts the session.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		orchestrator.Stop()
		<-signals
		cancel()
	}()

	report, err := orchestrator.Run(ctx)
	if err != nil {
		logger.Fatal("screening session failed", zap.Error(err))
	}

	if err := writeReport(cmd, report, logger); err != nil {
		logger.Fatal("writing the session report", zap.Error(err))
	}
}

func buildSource(config *Config, log *zap.Logger) (source.Source, error) {
	if config.Source != nil && config.Source.GitHub != nil {
		gh := config.Source.GitHub

		token, err := secrets.Load(secrets.Source{
			Name: "github token",
			File: gh.TokenFile,
			Env:  "GITHUB_TOKEN",
		})
		if err != nil {
			return nil, err
		}

		return source.NewGitHub(token, gh.Owner, gh.Repo, log)
	}

	dir := defaultSourceDir
	if config.Source != nil && config.Source.Dir != "" {
		dir = config.Source.Dir
	}

	return source.NewFilesystem(dir)
}

func buildGenerator(ctx context.Context, config *AIConfig) (ai.Generator, error) {
	if config == nil || config.Gemini == nil {
		return nil, fmt.Errorf("the ai.gemini section is required in the configuration file")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	return gemini.NewGenerator(ctx, apiKey, config.Gemini.Model)
}

// buildSender picks the delivery mode. Real SMTP delivery requires enabled
// notifications, no test mode and either auto-approve or an interactive yes.
func buildSender(cmd *cobra.Command, config *Config, log *zap.Logger) (notify.Sender, error) {
	testMode := cmd.Flag("test-mode").Value.String() == "true"

	if testMode || !config.Screening.NotificationEnabled {
		log.Info("notifications run in simulation mode",
			zap.Bool("test_mode", testMode),
			zap.Bool("enabled", config.Screening.NotificationEnabled),
		)
		return notify.NewSimulated(log), nil
	}

	if config.Notifications == nil || config.Notifications.SMTP == nil {
		return nil, fmt.Errorf("the notifications.smtp section is required when notifications are enabled")
	}

	if cmd.Flag("auto-approve").Value.String() == "false" {
		_, answer, err := sendPrompt.Run()
		if err != nil {
			return nil, err
		}
		if answer == PromptNo {
			log.Info("falling back to simulation mode", zap.String("reason", "got no from prompt"))
			return notify.NewSimulated(log), nil
		}
	}

	smtp := config.Notifications.SMTP

	password, err := secrets.Load(secrets.Source{
		Name: "smtp password",
		File: smtp.PasswordFile,
		Env:  "SMTP_PASSWORD",
	})
	if err != nil {
		return nil, err
	}

	return notify.NewSMTPSender(smtp.Host, smtp.Port, smtp.From, password)
}

// validateScreening rejects invalid configured values up front. Unset values
// fall back to defaults further down the stack; set ones are taken as is.
func validateScreening(config *ScreeningConfig) error {
	if config == nil {
		return fmt.Errorf("the screening section is required in the configuration file")
	}
	if config.RetryLimit < 0 {
		return fmt.Errorf("screening.retry-limit must not be negative, got %d", config.RetryLimit)
	}
	if config.Workers < 0 {
		return fmt.Errorf("screening.workers must not be negative, got %d", config.Workers)
	}
	if config.ExtractionConfidenceFloor < 0 || config.ExtractionConfidenceFloor > 1 {
		return fmt.Errorf("screening.extraction-confidence-floor must be in [0, 1], got %v", config.ExtractionConfidenceFloor)
	}
	return nil
}

func scorerRetryLimit(config *Config) int {
	if viper.IsSet("screening.retry-limit") {
		return config.Screening.RetryLimit
	}
	if config.AI != nil && config.AI.Gemini != nil && config.AI.Gemini.MaxRetries > 0 {
		return config.AI.Gemini.MaxRetries
	}
	return -1
}

func maxLogLength(config *Config) int {
	if config.AI != nil && config.AI.Gemini != nil {
		return config.AI.Gemini.MaxLogLength
	}
	return 0
}

func writeReport(cmd *cobra.Command, report *workflow.SessionReport, log *zap.Logger) error {
	pretty, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session report: %w", err)
	}

	if output := cmd.Flag("output").Value.String(); output != "" {
		if err := os.WriteFile(output, pretty, 0o644); err != nil {
			return fmt.Errorf("write session report: %w", err)
		}
		log.Info("session report written", zap.String("filename", output))
		return nil
	}

	fmt.Println(string(pretty))
	return nil
}
