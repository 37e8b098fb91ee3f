// Command sv inspects and maintains the sentiview post database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ibeckermayer/sentiview/internal/app"
)

var (
	// configPath overrides the default config location
	configPath string
	// jsonOutput switches listing commands to JSON
	jsonOutput bool
	// version information
	version = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sv",
	Short: "Sentiment dashboard for labelled posts",
	Long: `sv reads sentiment-labelled posts from the configured source, keeps them
in a local database and reports on them.

Examples:
  # Pull new posts and label anything still unlabelled
  sv refresh && sv label

  # This week's breakdown across everyone
  sv stats --window week

  # One author's negative posts from today
  sv posts alice --sentiment negative --range today`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is the user config dir)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")

	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(labelCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(hideCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(postsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(openCmd)
}

// withApp runs fn against a freshly bootstrapped App and releases it afterwards.
func withApp(fn func(a *app.App) error) error {
	a, _, closeFn, err := app.Bootstrap(configPath)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
