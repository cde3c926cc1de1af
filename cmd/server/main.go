package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"todo-app/internal/bootstrap"
)

// 构建时通过 -ldflags "-X main.version=..." 注入
var (
	version = "dev"
	commit  = "none"
)

var (
	envFile string
	port    string
)

var rootCmd = &cobra.Command{
	Use:   "todo-server",
	Short: "Multi-account to-do list web server",
	Long: `todo-server serves the to-do list web application: account registration,
login sessions and per-user task lists backed by SQL storage and Redis sessions.`,
	SilenceUsage: true,
	RunE:         runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "todo-server %s (commit %s)\n", version, commit)
	},
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", "", "path to a .env file to load before reading the environment")
	rootCmd.Flags().StringVarP(&port, "port", "p", "", "HTTP port (overrides SERVER_PORT)")
	rootCmd.AddCommand(versionCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap.LoadConfig(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port != "" {
		cfg.ServerPort = port
	}

	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// 启动应用组件
	serverErr := app.Start()

	// 设置优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logrus.Info("Shutdown signal received...")
	case err := <-serverErr:
		if err != nil {
			app.Shutdown()
			return err
		}
	}

	app.Shutdown()
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
