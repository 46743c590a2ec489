package main

import (
	"errors"
	"io"

	"github.com/Alias1177/CardioPredictor/internal/api/prediction"
	"github.com/Alias1177/CardioPredictor/internal/app"
	"github.com/Alias1177/CardioPredictor/internal/config"
	"github.com/Alias1177/CardioPredictor/internal/features"
	"github.com/Alias1177/CardioPredictor/internal/history"
	"github.com/Alias1177/CardioPredictor/internal/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// All linker flags will be set at build time.
var version = "dev"

// errReported marks failures that were already printed for the user
var errReported = errors.New("reported")

var overrides config.Overrides

// env holds what every command needs once configuration is resolved
type env struct {
	cfg        *config.Config
	client     *prediction.Client
	store      *history.Store
	controller *session.Controller
	closers    []io.Closer
}

func (e *env) Close() {
	for _, c := range e.closers {
		_ = c.Close()
	}
}

// setup resolves configuration once and builds the controller around it
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(overrides)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}
	e.closers = append(e.closers, app.SetupLogging(cfg.LogLevel, cfg.LogFile))
	log.Debug().
		Str("api_base", cfg.APIBase).
		Str("history_backend", cfg.HistoryBackend).
		Str("history_path", cfg.HistoryPath).
		Dur("request_timeout", cfg.RequestTimeout).
		Msg("Configuration loaded")

	storage, closer, err := app.OpenHistoryStorage(cfg)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.closers = append(e.closers, closer)

	e.client = app.NewPredictionClient(cfg)
	e.store = history.NewStore(storage)
	e.controller = session.New(session.Options{
		Schema:    features.Heart(),
		Predictor: e.client,
		History:   e.store,
	})
	e.controller.Restore(cmd.Context())
	return e, nil
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:           "predictor",
	Short:         "Estimate heart disease risk with a remote prediction service.",
	Long:          `Predictor validates thirteen clinical measurements, asks the prediction service for a risk estimate and keeps the last three results on this device.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&overrides.APIBase, "api-base", "", "Prediction service base URL (overrides PREDICTOR_API_BASE and the built-in default)")
	rootCmd.PersistentFlags().StringVar(&overrides.LogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(predictCmd, historyCmd, statusCmd, schemaCmd, modelInfoCmd, batchCmd)
	historyCmd.AddCommand(historyClearCmd)
}
