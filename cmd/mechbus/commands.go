package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/mechanistan/internal/app"
)

var (
	configPath string
	logLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(runCmd, treeCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:           "mechbus",
	Short:         "Run hierarchical message bus scenarios",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run [topology.yaml]",
	Short: "Build a forest and play its steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		application, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown()

		if err := application.Load(args[0]); err != nil {
			return err
		}
		res, err := application.Run(ctx)
		if err != nil {
			return err
		}
		if len(res.Rejected) > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d steps rejected\n", len(res.Rejected), res.Executed)
		}

		if !application.Config().Scripts.Watch {
			return nil
		}
		if err := application.Watch(); err != nil {
			return err
		}
		application.Logger().Info("watching scripts, interrupt to exit")
		<-ctx.Done()
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree [topology.yaml]",
	Short: "Print the forest a document builds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer application.Shutdown()

		if err := application.Load(args[0]); err != nil {
			return err
		}
		return application.Tree(cmd.OutOrStdout())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mechbus %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func newApp(cmd *cobra.Command) (*app.Application, error) {
	return app.New(app.Options{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		Output:     cmd.OutOrStdout(),
		LogOutput:  cmd.ErrOrStderr(),
	})
}

// execute runs the root command with args.
func execute(ctx context.Context, args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}
