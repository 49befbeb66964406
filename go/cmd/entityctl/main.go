package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/feast-dev/feast-entity/go/internal/feast/model"
	"github.com/feast-dev/feast-entity/go/internal/feast/registry"
)

type cliOptions struct {
	configPath string
	verbose    bool
	logger     zerolog.Logger
}

func initLogger(out io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).Level(level).With().Timestamp().Str("app", "entityctl").Logger()
	log.Logger = logger
	return logger
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:           "entityctl",
		Short:         "Manage feast entities in a registry",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = initLogger(cmd.ErrOrStderr(), opts.verbose)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "feature_store.yaml", "path to the repo's feature_store.yaml")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newApplyCommand(opts),
		newListCommand(opts),
		newDescribeCommand(opts),
		newDeleteCommand(opts),
	)
	return root
}

func openStore(ctx context.Context, opts *cliOptions) (*registry.RepoConfig, registry.EntityStore, error) {
	config, err := registry.NewRepoConfigFromConfigPath(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	store, err := registry.NewEntityStore(ctx, config)
	if err != nil {
		return nil, nil, err
	}
	opts.logger.Debug().Str("project", config.Project).Msg("opened registry")
	return config, store, nil
}

func newApplyCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply FILE",
		Short: "Validate and register the entities defined in FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			definitions, err := loadDefinitions(args[0])
			if err != nil {
				return err
			}
			diagnostics := model.LogDiagnostics{Logger: &opts.logger}
			entities := make([]*model.Entity, 0, len(definitions))
			for _, definition := range definitions {
				entity, err := definition.build(diagnostics)
				if err != nil {
					return err
				}
				if err := entity.IsValid(); err != nil {
					return err
				}
				entities = append(entities, entity)
			}

			ctx := cmd.Context()
			config, store, err := openStore(ctx, opts)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, entity := range entities {
				if err := store.ApplyEntity(ctx, config.Project, entity); err != nil {
					return errors.Wrapf(err, "failed to apply entity %s", entity.Name)
				}
				opts.logger.Info().Str("entity", entity.Name).Str("project", config.Project).Msg("applied entity")
			}
			return nil
		},
	}
}

func newListCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the project's entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			config, store, err := openStore(ctx, opts)
			if err != nil {
				return err
			}
			defer store.Close()

			entities, err := store.ListEntities(ctx, config.Project)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, entity := range entities {
				keys := make([]string, 0, len(entity.JoinKeys()))
				for _, key := range entity.JoinKeys() {
					keys = append(keys, fmt.Sprintf("%s:%s", key.Name, key.ValueType))
				}
				fmt.Fprintf(out, "%s\t%s\n", entity.Name, strings.Join(keys, ","))
			}
			return nil
		},
	}
}

func newDescribeCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe NAME",
		Short: "Print an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			config, store, err := openStore(ctx, opts)
			if err != nil {
				return err
			}
			defer store.Close()

			entity, err := store.GetEntity(ctx, config.Project, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), entity.String())
			return nil
		},
	}
}

func newDeleteCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove an entity from the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			config, store, err := openStore(ctx, opts)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteEntity(ctx, config.Project, args[0]); err != nil {
				return err
			}
			opts.logger.Info().Str("entity", args[0]).Str("project", config.Project).Msg("deleted entity")
			return nil
		},
	}
}

// tracingEnabled reports whether ENABLE_DATADOG_TRACING asks for traces to be
// sent to the local Datadog agent.
func tracingEnabled() bool {
	enabled, err := strconv.ParseBool(os.Getenv("ENABLE_DATADOG_TRACING"))
	return err == nil && enabled
}

func run() error {
	if tracingEnabled() {
		tracer.Start(tracer.WithServiceName("entityctl"))
		defer tracer.Stop()
	}
	return newRootCommand().ExecuteContext(context.Background())
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("entityctl failed")
	}
}
