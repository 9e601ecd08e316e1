package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/katalog-cli/katalog/color"
	"github.com/katalog-cli/katalog/icon"
	"github.com/katalog-cli/katalog/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	sourcesCmd.AddCommand(sourcesHealthCmd)

	sourcesHealthCmd.Flags().BoolP("json", "j", false, "Print the health report as JSON")
	sourcesHealthCmd.SetOut(os.Stdout)
}

var sourcesHealthCmd = &cobra.Command{
	Use:     "health [query...]",
	Short:   "Search the queries and report how each source answered",
	Args:    cobra.MinimumNArgs(1),
	Example: `  katalog sources health dark "the office"`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		catalog := mustPool()
		defer catalog.Registry().Close()

		searchAll(ctx, catalog, args)
		health := catalog.Health()

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(health))
			return
		}

		for _, h := range health {
			mark := lo.Ternary(h.ConsecutiveFailures == 0, icon.Get(icon.Success), icon.Get(icon.Fail))
			line := fmt.Sprintf(
				"%s %s %s",
				mark,
				style.Bold(h.Name),
				style.Faint(fmt.Sprintf("%d/%d failed, %s", h.TotalFailures, h.TotalRequests, time.Duration(h.LastLatencyMS)*time.Millisecond)),
			)
			if h.BlockedUntil != nil {
				line += style.Fg(color.Yellow)(" blocked until " + h.BlockedUntil.Local().Format(time.Kitchen))
			}
			if h.LastError != "" {
				line += "\n  " + style.Fg(color.Red)(h.LastError)
			}
			cmd.Println(line)
		}
	},
}
