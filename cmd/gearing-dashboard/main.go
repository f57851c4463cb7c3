package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iwvelando/gearing-dashboard/internal/breakdown"
	"github.com/iwvelando/gearing-dashboard/internal/config"
	"github.com/iwvelando/gearing-dashboard/internal/gearing"
	"github.com/iwvelando/gearing-dashboard/internal/server"
	"github.com/iwvelando/gearing-dashboard/internal/workbook"
	"github.com/iwvelando/gearing-dashboard/pkg/constants"
	"github.com/iwvelando/gearing-dashboard/pkg/output"
	"github.com/iwvelando/gearing-dashboard/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

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

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		cfg.OutputPaths = []string{loggingConfig.OutputFile}
		cfg.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return cfg.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	inputFile := flag.String("input", "", "spreadsheet to analyze (.csv, .xlsx, .xlsm)")
	mode := flag.String("mode", constants.ModeGearing, "run mode: gearing, breakdown, serve")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	sectionFlag := flag.String("section", "", "section key written by the csv output format")
	sheetFlag := flag.String("sheet", "", "sheet to read for the gearing mode")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := validation.ValidateMode(*mode); err != nil {
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning, zap.String("op", "main"))
	}

	if *mode == constants.ModeServe {
		if err := serve(logger, conf, *serverConfigLocation, *logLevel); err != nil {
			logger.Fatal("server failed", zap.String("op", "main"), zap.Error(err))
		}
		return
	}

	if *inputFile == "" {
		logger.Fatal("an input spreadsheet is required, pass -input", zap.String("op", "main"))
	}
	wb, err := loadWorkbook(*inputFile)
	if err != nil {
		logger.Fatal("failed to load spreadsheet",
			zap.String("op", "main"),
			zap.String("input", *inputFile),
			zap.Error(err),
		)
	}

	switch *mode {
	case constants.ModeBreakdown:
		output.BreakdownFormat(os.Stdout, breakdown.Run(logger, wb, conf.Breakdown.ToOptions()))
	default:
		section := conf.Output.Section
		if *sectionFlag != "" {
			section = *sectionFlag
		}
		if err := runGearing(os.Stdout, logger, conf, wb, *sheetFlag, outputFormat, section); err != nil {
			logger.Fatal("failed to compute gearing dashboard",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}

func loadWorkbook(path string) (*workbook.Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateUpload(filepath.Base(path), int64(len(data)), 0); err != nil {
		return nil, err
	}
	return workbook.Load(filepath.Base(path), data)
}

// runGearing computes every configured section of wb and writes it in the
// requested format. The csv format writes a single section, the first one
// when sectionKey is empty.
func runGearing(w io.Writer, logger *zap.Logger, conf *config.Configuration, wb *workbook.Workbook, sheetName, format, sectionKey string) error {
	filter, err := conf.Filter.ToFilter()
	if err != nil {
		return err
	}

	sheet := gearing.SelectSheet(wb)
	if sheetName != "" {
		s, ok := wb.Sheet(sheetName)
		if !ok {
			return fmt.Errorf("sheet %q not found in %s", sheetName, wb.Name)
		}
		sheet = s
	}

	report := gearing.Run(gearing.NewRunContext(logger, filter, conf.GearingSections()), sheet)
	if format == constants.OutputFormatPretty {
		output.PrettyFormat(w, report)
		return nil
	}

	if sectionKey == "" && len(report.Sections) > 0 {
		sectionKey = report.Sections[0].Section.Key
	}
	section, err := report.Section(sectionKey)
	if err != nil {
		return err
	}
	if section.Err != nil {
		return fmt.Errorf("section %s: %w", sectionKey, section.Err)
	}
	return output.CsvFormat(w, section)
}

// serve runs the dashboard HTTP server until SIGINT or SIGTERM. Logging set in
// the server configuration replaces the pipeline logger.
func serve(logger *zap.Logger, conf *config.Configuration, serverConfigPath, logLevelOverride string) error {
	serverCfg, err := server.LoadConfig(serverConfigPath)
	if err != nil {
		return err
	}
	if serverCfg.Logging != (config.LoggingConfig{}) {
		serverLogger, err := initializeLogger(serverCfg.Logging, logLevelOverride)
		if err != nil {
			return err
		}
		defer func() {
			_ = serverLogger.Sync()
		}()
		logger = serverLogger
	}

	handler, err := server.NewHandler(logger, server.Options{
		MaxUploadSize: serverCfg.UploadSizeBytes(),
		CacheSize:     serverCfg.CacheSize,
		Version:       version,
		Sections:      conf.GearingSections(),
		Breakdown:     conf.Breakdown.ToOptions(),
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              serverCfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       serverCfg.ReadTimeoutDuration(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			zap.String("op", "main.serve"),
			zap.String("address", httpServer.Addr),
			zap.String("version", version),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("op", "main.serve"), zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeoutDuration())
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped", zap.String("op", "main.serve"))
	return nil
}
