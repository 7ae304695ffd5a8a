/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/suparena/entitybind"
	"github.com/suparena/entitybind/binding"
	"github.com/suparena/entitybind/config"
	_ "github.com/suparena/entitybind/datastore/ddb"
	_ "github.com/suparena/entitybind/datastore/mock"
	_ "github.com/suparena/entitybind/datastore/mongo"
	"github.com/suparena/entitybind/filetrigger"
	"github.com/suparena/entitybind/logging"
	"github.com/suparena/entitybind/manifest"
)

// errInvalidManifest is returned when at least one function fails to index.
var errInvalidManifest = errors.New("manifest has functions that cannot be indexed")

type flags struct {
	manifest string
	envFile  string
}

func newRootCommand() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "bindcheck",
		Short:         "Validate document binding manifests",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&f.manifest, "manifest", "m", "functions.yaml", "function manifest to load")
	root.PersistentFlags().StringVar(&f.envFile, "env", "", "dotenv file with application settings (default: process environment)")

	root.AddCommand(newValidateCommand(f), newWatchCommand(f), newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			info := entitybind.GetVersionInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bindcheck version %s\n", info.Version)
			fmt.Fprintf(out, "Git commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "Build date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
		},
	}
}

func newValidateCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Index every function of a manifest and print its bindings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			host, m, err := f.load(zap.NewNop())
			if err != nil {
				return err
			}
			defer host.Close()
			failures, err := m.Register(host, nil)
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), host, m, failures)
		},
	}
}

func newWatchCommand(f *flags) *cobra.Command {
	opts := filetrigger.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the file triggers of a manifest with no-op handlers, logging each invocation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logOpts, err := logging.LoadOptions()
			if err != nil {
				return err
			}
			logger, err := logging.New(logOpts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			host, m, err := f.load(logger)
			if err != nil {
				return err
			}
			defer host.Close()
			failures, err := m.Register(host, nil)
			if err != nil {
				return err
			}
			for name, ferr := range failures {
				logger.Warn("function not indexed", zap.String("function", name), zap.Error(ferr))
			}

			listener, err := filetrigger.NewListener(host, opts, logger)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return listener.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&opts.RootPath, "root", opts.RootPath, "directory trigger paths are relative to")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", opts.Debounce, "quiet period before a change is dispatched")
	cmd.Flags().IntVar(&opts.MaxConcurrency, "concurrency", opts.MaxConcurrency, "maximum concurrent invocations")
	return cmd
}

// load reads the manifest and builds a host over the configured settings.
func (f *flags) load(logger *zap.Logger) (*entitybind.Host, *manifest.Manifest, error) {
	m, err := manifest.Load(f.manifest)
	if err != nil {
		return nil, nil, err
	}

	var settings config.Settings = config.Env{}
	if f.envFile != "" {
		file, err := config.ReadFile(f.envFile)
		if err != nil {
			return nil, nil, err
		}
		settings = config.Chain{file, config.Env{}}
	} else {
		config.LoadDotEnv()
	}
	opts, err := config.LoadOptions()
	if err != nil {
		return nil, nil, err
	}

	host := entitybind.New(
		entitybind.WithSettings(settings),
		entitybind.WithOptions(opts),
		entitybind.WithLogger(logger),
		entitybind.WithProvider(filetrigger.NewProvider()),
	)
	return host, m, nil
}

func report(out io.Writer, host *entitybind.Host, m *manifest.Manifest, failures map[string]error) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FUNCTION\tPARAMETER\tDIRECTION\tSHAPE\tBINDING\tCONNECTION")
	for _, fn := range m.Functions {
		if err, failed := failures[fn.Name]; failed {
			fmt.Fprintf(w, "%s\t-\t-\t-\tERROR\t%v\n", fn.Name, err)
			continue
		}
		bindings, err := host.Bindings(fn.Name)
		if err != nil {
			return err
		}
		for _, b := range bindings {
			p := b.Parameter()
			switch d := b.(type) {
			case *binding.Descriptor:
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", fn.Name, p.Name, p.Direction, d.Shape(), d.Classification(), redact(d.ConnectionString()))
			case *filetrigger.Binding:
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\tFileTrigger(%s)\t-\n", fn.Name, p.Name, p.Direction, p.Type, d.Attribute().Path)
			default:
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%T\t-\n", fn.Name, p.Name, p.Direction, p.Type, b)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(failures) > 0 {
		return fmt.Errorf("%w: %d of %d", errInvalidManifest, len(failures), len(m.Functions))
	}
	return nil
}
