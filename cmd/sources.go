package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/AlecAivazis/survey/v2"
	"github.com/katalog-cli/katalog/color"
	"github.com/katalog-cli/katalog/constant"
	"github.com/katalog-cli/katalog/content"
	"github.com/katalog-cli/katalog/filesystem"
	"github.com/katalog-cli/katalog/icon"
	"github.com/katalog-cli/katalog/provider"
	"github.com/katalog-cli/katalog/provider/static"
	"github.com/katalog-cli/katalog/style"
	"github.com/katalog-cli/katalog/util"
	"github.com/katalog-cli/katalog/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage installed sources",
}

func init() {
	sourcesCmd.AddCommand(sourcesListCmd)

	sourcesListCmd.Flags().BoolP("raw", "r", false, "Print names only")
	sourcesListCmd.Flags().BoolP("lua", "l", false, "List only Lua sources")
	sourcesListCmd.Flags().BoolP("static", "s", false, "List only static JSON catalogs")

	sourcesListCmd.MarkFlagsMutuallyExclusive("lua", "static")
	sourcesListCmd.SetOut(os.Stdout)
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed sources",
	Run: func(cmd *cobra.Command, args []string) {
		providers, err := provider.CustomProviders()
		handleErr(err)

		switch {
		case lo.Must(cmd.Flags().GetBool("lua")):
			providers = lo.Filter(providers, func(p *provider.Provider, _ int) bool { return p.Kind == provider.Lua })
		case lo.Must(cmd.Flags().GetBool("static")):
			providers = lo.Filter(providers, func(p *provider.Provider, _ int) bool { return p.Kind == provider.Static })
		}

		if lo.Must(cmd.Flags().GetBool("raw")) {
			for _, p := range providers {
				cmd.Println(p.Name)
			}
			return
		}

		if len(providers) == 0 {
			cmd.Printf("No sources installed in %s\n", style.Fg(color.Yellow)(where.Sources()))
			return
		}

		for _, p := range providers {
			kind := lo.Ternary(p.Kind == provider.Lua, icon.Get(icon.Lua), icon.Get(icon.Static))
			line := fmt.Sprintf("%s %s %s", style.Bold(p.Name), style.Faint(string(p.Kind)), kind)
			if p.UsesHeadless {
				line += style.Fg(color.Yellow)(" (headless)")
			}
			cmd.Println(line)
		}
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesRemoveCmd)

	sourcesRemoveCmd.Flags().StringArrayP("name", "n", []string{}, "Name of the source to remove")
	lo.Must0(sourcesRemoveCmd.RegisterFlagCompletionFunc("name", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return provider.Names(), cobra.ShellCompDirectiveNoFileComp
	}))
}

var sourcesRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove installed sources",
	Long:  "Remove installed sources. Without --name a list of installed sources to pick from is shown.",
	Run: func(cmd *cobra.Command, args []string) {
		names := lo.Must(cmd.Flags().GetStringArray("name"))

		if len(names) == 0 {
			installed := provider.Names()
			if len(installed) == 0 {
				fmt.Println("No sources installed")
				return
			}

			handleErr(survey.AskOne(&survey.MultiSelect{
				Message: "Sources to remove",
				Options: installed,
			}, &names))
		}

		for _, name := range names {
			p, ok := provider.Get(name).Get()
			if !ok {
				handleErr(fmt.Errorf("%w: %s", provider.ErrNotFound, name))
			}

			handleErr(filesystem.API().Remove(p.Path))
			fmt.Printf("%s removed %s\n", icon.Get(icon.Success), style.Fg(color.Yellow)(name))
		}
	},
}

func init() {
	sourcesCmd.AddCommand(sourcesGenCmd)

	sourcesGenCmd.Flags().StringP("name", "n", "", "Name of the new source")
	sourcesGenCmd.Flags().StringP("url", "u", "", "Base URL of the site")
	sourcesGenCmd.Flags().BoolP("static", "s", false, "Create a static JSON catalog instead of a Lua script")
}

var sourcesGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Create a new source from a template",
	Long: `Create a Lua source script, or a static JSON catalog with --static.
Missing name and url are asked for.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.SetOut(os.Stdout)

		name := lo.Must(cmd.Flags().GetString("name"))
		url := lo.Must(cmd.Flags().GetString("url"))

		var questions []*survey.Question
		if name == "" {
			questions = append(questions, &survey.Question{
				Name:     "name",
				Prompt:   &survey.Input{Message: "Source name"},
				Validate: survey.Required,
			})
		}
		if url == "" {
			questions = append(questions, &survey.Question{
				Name:     "url",
				Prompt:   &survey.Input{Message: "Site URL"},
				Validate: survey.Required,
			})
		}
		if len(questions) > 0 {
			answers := struct {
				Name string
				URL  string `survey:"url"`
			}{Name: name, URL: url}
			handleErr(survey.Ask(questions, &answers))
			name, url = answers.Name, answers.URL
		}

		var target string
		if lo.Must(cmd.Flags().GetBool("static")) {
			target = genStatic(name, url)
		} else {
			target = genLua(name, url)
		}

		cmd.Println(target)
	},
}

func genLua(name, url string) string {
	author := "Anonymous"
	if usr, err := user.Current(); err == nil {
		author = usr.Username
	}

	s := struct {
		Name             string
		URL              string
		SearchContentFn  string
		ContentDetailsFn string
		Author           string
	}{
		Name:             name,
		URL:              url,
		SearchContentFn:  constant.SearchContentFn,
		ContentDetailsFn: constant.ContentDetailsFn,
		Author:           author,
	}

	funcMap := template.FuncMap{
		"repeat": strings.Repeat,
		"plus":   func(a, b int) int { return a + b },
		"max":    util.Max[int],
	}

	tmpl, err := template.New("source").Funcs(funcMap).Parse(constant.SourceTemplate)
	handleErr(err)

	target := filepath.Join(where.Sources(), util.SanitizeFilename(name)+provider.LuaExtension)
	f, err := filesystem.API().Create(target)
	handleErr(err)
	defer util.Ignore(f.Close)

	handleErr(tmpl.Execute(f, s))
	return target
}

func genStatic(name, url string) string {
	catalog := static.Catalog{
		Name: name,
		Items: []*static.Entry{{
			Title: "Example Title",
			URL:   strings.TrimSuffix(url, "/") + "/example",
			Type:  string(content.Movie),
		}},
	}

	data, err := json.MarshalIndent(catalog, "", "  ")
	handleErr(err)

	target := filepath.Join(where.Sources(), util.SanitizeFilename(name)+provider.StaticExtension)
	handleErr(filesystem.API().WriteFile(target, data, 0o644))
	return target
}
