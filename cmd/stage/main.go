// Command stage lists and runs the demo scenes.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"GopherStage/internal/config"
	"GopherStage/internal/logger"

	"github.com/spf13/cobra"
)

func init() {
	// GLFW and GL calls must stay on the main thread.
	runtime.LockOSThread()
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func (o *rootOptions) load() (config.Config, error) {
	logger.InitWithLevel(o.logLevel)
	return config.Load(o.configPath)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "stage",
		Short:         "Run the GopherStage demo scenes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "stage.toml", "TOML config file; missing files use the defaults")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")

	cmd.AddCommand(newListCommand(), newRunCommand(opts), newConfigCommand(opts))
	return cmd
}

func main() {
	err := newRootCommand().ExecuteContext(context.Background())
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "stage:", err)
		os.Exit(1)
	}
}
