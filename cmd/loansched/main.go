package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/duyet/finance-hub-sub000/internal/config"
	"github.com/duyet/finance-hub-sub000/pkg/constants"
	"github.com/duyet/finance-hub-sub000/pkg/datetime"
	"github.com/duyet/finance-hub-sub000/pkg/output"
	"github.com/duyet/finance-hub-sub000/pkg/rates"
	"github.com/duyet/finance-hub-sub000/pkg/schedule"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info" // Default to info level
	}

	// Parse log level
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	// Determine output format
	format := loggingConfig.Format
	if format == "" {
		format = "json" // Default to JSON for production
	}

	// Configure encoder
	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Configure output file if specified
	if loggingConfig.OutputFile != "" {
		// Ensure the directory exists
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

// applyRateChanges folds the rate events after the first into the schedule
// through the splicer, the way a rate-entry collaborator would: each change
// is applied with the outstanding balance and remaining term at its
// effective date.
func applyRateChanges(engine *schedule.Engine, loanName string, installments []schedule.Installment, changes []rates.Event) []schedule.Installment {
	for _, change := range changes {
		outstanding := 0.0
		remaining := 0
		for i, installment := range installments {
			if !datetime.BeforeMonth(installment.DueDate, change.EffectiveDate) && installment.Status != schedule.StatusPaid {
				outstanding = installment.OpeningBalance
				remaining = len(installments) - i
				break
			}
		}
		installments = engine.Splice(loanName, change.EffectiveDate, change.AnnualRatePercent,
			outstanding, installments, remaining)
	}
	return installments
}

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty // Default to pretty format
	}
	if outputFormat != constants.OutputFormatPretty && outputFormat != constants.OutputFormatCSV {
		logger.Fatal(fmt.Sprintf("invalid output format: %s", outputFormat),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	engine := schedule.NewEngine(logger, nil)

	for _, loan := range conf.Loans {
		loanConfig, err := loan.ToLoanConfig()
		if err != nil {
			logger.Fatal("failed to parse loan configuration",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		events, err := loan.ToRateEvents()
		if err != nil {
			logger.Fatal("failed to parse rate events",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}

		// The schedule is created from the initial rate event; later events
		// are rate changes spliced into the generated schedule.
		sorted := rates.Sorted(events)
		if len(sorted) == 0 {
			logger.Error("no rate events for loan, skipping",
				zap.String("op", "main"),
				zap.String("loan", loan.Name),
			)
			continue
		}
		installments, err := engine.Generate(loanConfig, sorted[:1])
		if err != nil {
			logger.Fatal("failed to generate schedule",
				zap.String("op", "main"),
				zap.String("loan", loan.Name),
				zap.Error(err),
			)
		}
		if loanConfig.Method == schedule.MethodReducingBalance {
			installments = applyRateChanges(engine, loan.Name, installments, sorted[1:])
		}

		report := schedule.Validate(installments)
		for _, violation := range report.Errors {
			logger.Warn("Schedule integrity warning: "+violation,
				zap.String("op", "main"),
				zap.String("loan", loan.Name),
			)
		}

		summary := schedule.Summarize(installments, loanConfig.Principal)

		// Handle output.
		switch outputFormat {
		case constants.OutputFormatPretty:
			output.PrettyFormat(loan.Name, installments, summary)
		case constants.OutputFormatCSV:
			output.CsvFormat(loan.Name, installments)
		}
	}
}
