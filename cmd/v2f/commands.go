package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ryanhaynes01/Individual-Project/internal/bootstrap"
	"github.com/ryanhaynes01/Individual-Project/internal/cli"
	"github.com/ryanhaynes01/Individual-Project/internal/domain/entity"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/config"
	"github.com/ryanhaynes01/Individual-Project/internal/infra/rabbitmq"
	"github.com/ryanhaynes01/Individual-Project/internal/usecase"
	"github.com/ryanhaynes01/Individual-Project/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	logLevel string
	limit    int
	queue    bool
	email    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "v2f",
		Short:         "Convert videos into directories of numbered frames",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List source videos and whether they are converted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLocal(cmd, opts, func(ctx context.Context, local *bootstrap.Local, _ *config.Config) error {
				return runList(cmd, local)
			})
		},
	}

	convertCmd := &cobra.Command{
		Use:   "convert <video>...",
		Short: "Extract every frame of the named source videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.queue {
				return runEnqueue(cmd, opts, args)
			}
			return withLocal(cmd, opts, func(ctx context.Context, local *bootstrap.Local, _ *config.Config) error {
				return runConvert(ctx, cmd, local, args)
			})
		},
	}
	convertCmd.Flags().BoolVar(&opts.queue, "queue", false, "send conversion requests to the worker queue instead of converting locally")
	convertCmd.Flags().StringVar(&opts.email, "email", "", "address to notify on failure (with --queue)")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLocal(cmd, opts, func(ctx context.Context, local *bootstrap.Local, cfg *config.Config) error {
				limit := opts.limit
				if limit <= 0 {
					limit = cfg.HistoryLimit
				}
				return runHistory(ctx, cmd, local, limit)
			})
		},
	}
	historyCmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "number of records (default HISTORY_LIMIT)")

	root.AddCommand(listCmd, convertCmd, historyCmd)
	return root
}

func loadConfig(opts *options) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	log, err := logger.NewDevelopment(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func withLocal(cmd *cobra.Command, opts *options, fn func(context.Context, *bootstrap.Local, *config.Config) error) error {
	cfg, log, err := loadConfig(opts)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	local, err := bootstrap.NewLocal(ctx, cfg, cli.NewLineNotifier(cmd.OutOrStdout()), log)
	if err != nil {
		return err
	}
	defer local.Close()

	return fn(ctx, local, cfg)
}

func runList(cmd *cobra.Command, local *bootstrap.Local) error {
	videos := local.Sources.Execute()
	out := cmd.OutOrStdout()
	if len(videos) == 0 {
		fmt.Fprintf(out, "%s is empty!\n", local.Sources.SourceDir())
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, v := range videos {
		mark := ""
		if v.Converted {
			mark = "converted"
		}
		fmt.Fprintf(tw, "%s\t%s\n", v.Name, mark)
	}
	return tw.Flush()
}

// runConvert converts sequentially and fails if any conversion failed.
func runConvert(ctx context.Context, cmd *cobra.Command, local *bootstrap.Local, names []string) error {
	failed := 0
	for _, name := range names {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conv, err := local.Converter.Execute(ctx, name, cli.NewProgressBar(cmd.ErrOrStderr(), name))
		if err != nil {
			if conv == nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
		}
		if conv.Status == entity.ConversionStatusFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(names))
	}
	return nil
}

func runHistory(ctx context.Context, cmd *cobra.Command, local *bootstrap.Local, limit int) error {
	items, err := local.Converter.History(ctx, limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tSTATUS\tVIDEO\tFRAMES\tOUTPUT")
	for _, c := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			c.CreatedAt.Local().Format("2006-01-02 15:04:05"), c.Status, c.SourceName, c.FrameCount, c.OutputDir)
	}
	return tw.Flush()
}

func runEnqueue(cmd *cobra.Command, opts *options, names []string) error {
	cfg, log, err := loadConfig(opts)
	if err != nil {
		return err
	}
	defer log.Sync()

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return fmt.Errorf("connect to rabbitmq: %w", err)
	}
	defer conn.Close()

	pub, err := rabbitmq.NewPublisher(conn, cfg.RabbitMQExchange)
	if err != nil {
		return err
	}
	defer pub.Close()

	if err := pub.Declare(rabbitmq.ConsumerConfig{
		RequestQueue: cfg.RabbitMQRequestQueue,
		StatusQueue:  cfg.RabbitMQStatusQueue,
		DLQ:          cfg.RabbitMQDLQ,
		Exchange:     cfg.RabbitMQExchange,
	}); err != nil {
		return err
	}

	sent, err := usecase.NewEnqueueRequestsUseCase(pub, log).Execute(cmd.Context(), names, opts.email)
	for _, msg := range sent {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", msg.RequestID, msg.SourceName)
	}
	return err
}
