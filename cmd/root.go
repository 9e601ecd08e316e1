// Package cmd implements the katalog command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/katalog-cli/katalog/color"
	"github.com/katalog-cli/katalog/constant"
	"github.com/katalog-cli/katalog/icon"
	"github.com/katalog-cli/katalog/key"
	"github.com/katalog-cli/katalog/log"
	"github.com/katalog-cli/katalog/provider"
	"github.com/katalog-cli/katalog/query"
	"github.com/katalog-cli/katalog/style"
	"github.com/katalog-cli/katalog/tui"
	"github.com/katalog-cli/katalog/util"
	"github.com/katalog-cli/katalog/version"
	"github.com/katalog-cli/katalog/where"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Icons variant: "+strings.Join(icon.AvailableVariants(), ", "))
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringSliceP("source", "S", []string{}, "Sources to search. Defaults to every installed source")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("source", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return provider.Names(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.DefaultSources, rootCmd.PersistentFlags().Lookup("source")))

	rootCmd.PersistentFlags().String("strategy", "", "How results are merged: exact or similarity")
	lo.Must0(viper.BindPFlag(key.ResolverStrategy, rootCmd.PersistentFlags().Lookup("strategy")))

	rootCmd.Flags().StringP("query", "q", "", "Search right away")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("query", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	}))
	rootCmd.Flags().BoolP("recent", "r", false, "Start from recent searches")
	rootCmd.MarkFlagsMutuallyExclusive("query", "recent")

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify(cmd.OutOrStdout())
	})

	go func() {
		_ = util.Delete(where.Temp())
	}()
}

var rootCmd = &cobra.Command{
	Use:   constant.Katalog,
	Short: "Search many content sources at once and browse the merged catalog",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiPurple).Render("    - Search many content sources at once and browse the merged catalog"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		catalog := mustPool()
		defer catalog.Registry().Close()

		options := tui.Options{
			Catalog: catalog,
			Query:   lo.Must(cmd.Flags().GetString("query")),
			History: lo.Must(cmd.Flags().GetBool("recent")),
		}
		handleErr(tui.Run(ctx, &options))
	},
}

// Execute runs the root command.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
