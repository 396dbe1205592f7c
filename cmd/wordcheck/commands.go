package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NivBraz/wordcheck-service/internal/app"
	"github.com/NivBraz/wordcheck-service/internal/config"
	"github.com/NivBraz/wordcheck-service/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type options struct {
	configPath string
	addr       string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "wordcheck",
		Short:         "Word list validation service",
		Long:          "wordcheck loads a fixed vocabulary at startup and answers membership and listing queries over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (default: ./"+config.DefaultPath+" if present)")

	root.AddCommand(newServeCommand(opts), newWordsCommand(opts))
	return root
}

func newServeCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the vocabulary and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger := logging.New(cfg.Logging, version)

			// Create context that listens for the interrupt signal from the OS
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg, logger, os.Stderr)
			if err != nil {
				logger.Error("startup failed", "error", err)
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			return application.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address host:port, overrides config")
	return cmd
}

func newWordsCommand(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "words",
		Short: "Load the vocabulary and print the normalized words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			cfg.Logging.Output = "stderr"
			logger := logging.New(cfg.Logging, version)

			wb, err := app.LoadVocabulary(cmd.Context(), cfg, logger, os.Stderr)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "    ")
				return enc.Encode(wb.Words())
			}
			for _, w := range wb.Words() {
				fmt.Fprintln(out, w)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d words\n", wb.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the words as a JSON array")
	return cmd
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.addr != "" {
		if err := cfg.Server.SetAddr(opts.addr); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
