package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/editor"
	"github.com/fastask/fastask/internal/cache"
	"github.com/fastask/fastask/internal/screenshot"
	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

const appName = "fastask"

// set by goreleaser
var (
	version = "dev"
	commit  = ""
)

var config Config

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Ask fast. A hotkey away from an answer, right in your terminal.",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		config.Prefix = strings.Join(args, " ")

		switch {
		case config.Settings:
			return openSettings()
		case config.ResetSettings:
			return resetSettings(config)
		}

		db, err := openDB(config.DBPath)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck

		convoCache, err := cache.NewConversations(config.CachePath)
		if err != nil {
			return fastaskError{err, "Could not open the transcript cache."}
		}
		shots, err := screenshot.NewManager(config.ScreenshotsDir)
		if err != nil {
			return fastaskError{err, "Could not open the screenshots directory."}
		}

		switch {
		case config.List:
			return listConversations(cmd.Context(), db, config.Search, config.Limit)
		case config.Delete != "":
			return deleteConversation(cmd.Context(), db, convoCache, config.Delete)
		case config.ClearHistory:
			return clearHistory(cmd.Context(), db, convoCache, shots)
		case config.Show != "" || config.ShowLast:
			return showConversation(cmd.Context(), db, convoCache, &config)
		}

		if (config.Prefix == "" || config.Ask) && isInputTTY() {
			if err := askForm(&config); err != nil {
				return err
			}
		}

		fa := newFastAsk(stderrRenderer(), &config, db, convoCache, shots)
		opts := []tea.ProgramOption{tea.WithOutput(os.Stderr)}
		if !isInputTTY() {
			opts = append(opts, tea.WithInput(nil))
		}
		p := tea.NewProgram(fa, opts...)
		model, err := p.Run()
		if err != nil {
			return fastaskError{err, "Couldn't start the program."}
		}
		fa = model.(*FastAsk)
		if fa.Error != nil {
			return *fa.Error
		}

		if config.Copy {
			if err := clipboard.WriteAll(fa.Output); err != nil {
				return fastaskError{err, "Could not copy to the clipboard."}
			}
		}

		if err := fa.saveConversation(cmd.Context()); err != nil {
			var ferr fastaskError
			if errors.As(err, &ferr) {
				return ferr
			}
			return fastaskError{err, "There was a problem saving the conversation."}
		}

		if !config.NoCache && !config.Quiet && fa.Output != "" && isOutputTTY() {
			fmt.Fprintln(
				os.Stderr,
				"\nConversation saved:",
				stderrStyles().ConvoID.Render(config.cacheWriteToID[:convoIDShort]),
				stderrStyles().Comment.Render(firstLine(config.cacheWriteToTitle, fa.Input)),
			)
		}
		return nil
	},
}

var manCmd = &cobra.Command{
	Use:    "man",
	Args:   cobra.NoArgs,
	Short:  "Generates manpages",
	Hidden: true,
	RunE: func(*cobra.Command, []string) error {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return err //nolint:wrapcheck
		}
		_, err = fmt.Fprint(os.Stdout, manPage.Build(roff.NewDocument()))
		return err //nolint:wrapcheck
	},
}

// askForm is the interactive ask window used when no question was given.
func askForm(cfg *Config) error {
	question := cfg.Prefix
	attach := cfg.Capture
	fields := []huh.Field{
		huh.NewText().
			Title("Ask anything").
			CharLimit(cfg.MaxInputChars).
			Value(&question),
	}
	if cfg.ScreenshotCmd != "" {
		fields = append(fields, huh.NewConfirm().
			Title("Attach a screenshot?").
			Value(&attach))
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fastaskError{err, "Canceled."}
	}
	if strings.TrimSpace(question) == "" {
		return fastaskError{
			err:    errors.New("nothing to ask"),
			reason: "You didn't ask anything.",
		}
	}
	cfg.Prefix = question
	cfg.Capture = attach
	return nil
}

func openSettings() error {
	c, err := editor.Cmd(appName, config.SettingsPath)
	if err != nil {
		return fastaskError{err, "Could not edit your settings file."}
	}
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return fastaskError{err, "Could not edit your settings file."}
	}
	if !config.Quiet {
		fmt.Fprintln(
			os.Stderr,
			"Wrote config file to:",
			stderrStyles().Link.Render(config.SettingsPath),
		)
	}
	return nil
}

func firstLine(s ...string) string {
	for _, v := range s {
		if v == "" {
			continue
		}
		line, _, _ := strings.Cut(v, "\n")
		return line
	}
	return ""
}

func initFlags() {
	flags := rootCmd.Flags()
	flags.StringVarP(&config.Model, "model", "m", config.Model, stdoutStyles().FlagDesc.Render(help["model"]))
	flags.StringVarP(&config.API, "api", "a", config.API, stdoutStyles().FlagDesc.Render(help["api"]))
	flags.BoolVar(&config.Ask, "ask", false, stdoutStyles().FlagDesc.Render(help["ask"]))
	flags.StringVarP(&config.Attach, "attach", "i", "", stdoutStyles().FlagDesc.Render(help["attach"]))
	flags.BoolVarP(&config.Capture, "capture", "s", false, stdoutStyles().FlagDesc.Render(help["capture"]))
	flags.StringVar(&config.ScreenshotCmd, "screenshot-cmd", config.ScreenshotCmd, stdoutStyles().FlagDesc.Render(help["screenshot-cmd"]))
	flags.IntVar(&config.ScreenshotKeep, "screenshot-keep", config.ScreenshotKeep, stdoutStyles().FlagDesc.Render(help["screenshot-keep"]))
	flags.StringVar(&config.SystemPrompt, "system-prompt", config.SystemPrompt, stdoutStyles().FlagDesc.Render(help["system-prompt"]))
	flags.StringVarP(&config.Save, "title", "t", config.Save, stdoutStyles().FlagDesc.Render(help["title"]))
	flags.StringVarP(&config.Continue, "continue", "c", "", stdoutStyles().FlagDesc.Render(help["continue"]))
	flags.BoolVarP(&config.ContinueLast, "continue-last", "C", false, stdoutStyles().FlagDesc.Render(help["continue-last"]))
	flags.BoolVarP(&config.List, "list", "l", false, stdoutStyles().FlagDesc.Render(help["list"]))
	flags.IntVar(&config.Limit, "limit", 0, stdoutStyles().FlagDesc.Render(help["limit"]))
	flags.StringVar(&config.Search, "search", "", stdoutStyles().FlagDesc.Render(help["search"]))
	flags.StringVarP(&config.Show, "show", "S", "", stdoutStyles().FlagDesc.Render(help["show"]))
	flags.BoolVar(&config.ShowLast, "show-last", false, stdoutStyles().FlagDesc.Render(help["show-last"]))
	flags.StringVarP(&config.Delete, "delete", "d", "", stdoutStyles().FlagDesc.Render(help["delete"]))
	flags.BoolVar(&config.ClearHistory, "clear-history", false, stdoutStyles().FlagDesc.Render(help["clear-history"]))
	flags.BoolVar(&config.NoCache, "no-cache", config.NoCache, stdoutStyles().FlagDesc.Render(help["no-cache"]))
	flags.BoolVar(&config.NoStream, "no-stream", false, stdoutStyles().FlagDesc.Render(help["no-stream"]))
	flags.BoolVar(&config.Copy, "copy", false, stdoutStyles().FlagDesc.Render(help["copy"]))
	flags.BoolVarP(&config.Quiet, "quiet", "q", config.Quiet, stdoutStyles().FlagDesc.Render(help["quiet"]))
	flags.BoolVarP(&config.Raw, "raw", "r", config.Raw, stdoutStyles().FlagDesc.Render(help["raw"]))
	flags.Float64Var(&config.Temperature, "temp", config.Temperature, stdoutStyles().FlagDesc.Render(help["temp"]))
	flags.Float64Var(&config.TopP, "topp", config.TopP, stdoutStyles().FlagDesc.Render(help["topp"]))
	flags.Int64Var(&config.MaxTokens, "max-tokens", config.MaxTokens, stdoutStyles().FlagDesc.Render(help["max-tokens"]))
	flags.IntVar(&config.MaxRetries, "max-retries", config.MaxRetries, stdoutStyles().FlagDesc.Render(help["max-retries"]))
	flags.BoolVar(&config.NoLimit, "no-limit", config.NoLimit, stdoutStyles().FlagDesc.Render(help["no-limit"]))
	flags.IntVar(&config.WordWrap, "word-wrap", config.WordWrap, stdoutStyles().FlagDesc.Render(help["word-wrap"]))
	flags.StringArrayVar(&config.Stop, "stop", config.Stop, stdoutStyles().FlagDesc.Render(help["stop"]))
	flags.StringVar(&config.Theme, "theme", config.Theme, stdoutStyles().FlagDesc.Render(help["theme"]))
	flags.StringVar(&config.StatusText, "status-text", config.StatusText, stdoutStyles().FlagDesc.Render(help["status-text"]))
	flags.StringVar(&config.AppHotkey, "app-hotkey", config.AppHotkey, stdoutStyles().FlagDesc.Render(help["app-hotkey"]))
	flags.StringVar(&config.ScreenshotHotkey, "screenshot-hotkey", config.ScreenshotHotkey, stdoutStyles().FlagDesc.Render(help["screenshot-hotkey"]))
	flags.BoolVar(&config.DebugHotkeys, "debug-hotkeys", config.DebugHotkeys, stdoutStyles().FlagDesc.Render(help["debug-hotkeys"]))
	flags.BoolVar(&config.Settings, "settings", false, stdoutStyles().FlagDesc.Render(help["settings"]))
	flags.BoolVar(&config.ResetSettings, "reset-settings", false, stdoutStyles().FlagDesc.Render(help["reset-settings"]))
	flags.Var(newTimeoutFlag(&config.RequestTimeout, config.RequestTimeout), "timeout", stdoutStyles().FlagDesc.Render(help["timeout"]))
	flags.Lookup("timeout").DefValue = config.RequestTimeout.String()
	flags.SortFlags = false

	_ = rootCmd.RegisterFlagCompletionFunc("model", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		models := make([]string, 0, len(config.Models))
		for name := range config.Models {
			models = append(models, name)
		}
		sort.Strings(models)
		return models, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("api", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		apis := make([]string, 0, len(config.APIs))
		for _, api := range config.APIs {
			apis = append(apis, api.Name)
		}
		return apis, cobra.ShellCompDirectiveNoFileComp
	})
	for _, f := range []string{"continue", "show", "delete"} {
		_ = rootCmd.RegisterFlagCompletionFunc(f, completeConversations)
	}
}

func completeConversations(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	db, err := openDB(config.DBPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer db.Close() //nolint:errcheck
	completions, err := db.Completions(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

func isCompletionCmd(args []string) bool {
	if len(args) < 2 { //nolint:mnd
		return false
	}
	if args[1] == "__complete" {
		return true
	}
	if args[1] != "completion" || len(args) < 3 { //nolint:mnd
		return false
	}
	switch args[2] {
	case "bash", "fish", "zsh", "powershell", "help", "-h", "--help":
	default:
		return false
	}
	if len(args) == 3 { //nolint:mnd
		return true
	}
	return len(args) == 4 && (args[3] == "-h" || args[3] == "--help") //nolint:mnd
}

func isManCmd(args []string) bool {
	if len(args) < 2 || args[1] != "man" { //nolint:mnd
		return false
	}
	if len(args) == 2 { //nolint:mnd
		return true
	}
	return len(args) == 3 && (args[2] == "-h" || args[2] == "--help") //nolint:mnd
}

func buildVersion() string {
	result := version
	if commit != "" {
		result += " (" + commit + ")"
	}
	return result
}

func handleError(err error) {
	// exhaust stdin so the next command in a pipe doesn't choke
	if !isInputTTY() {
		_, _ = io.Copy(io.Discard, os.Stdin)
	}

	format := "\n%s\n\n"

	var fperr flagParseError
	var ferr fastaskError
	switch {
	case errors.As(err, &fperr):
		fmt.Fprintf(
			os.Stderr,
			format,
			fmt.Sprintf(fperr.ReasonFormat(), stderrStyles().InlineCode.Render(fperr.Flag())),
		)
	case errors.As(err, &ferr):
		fmt.Fprintf(
			os.Stderr,
			format,
			fmt.Sprintf("%s %s", stderrStyles().ErrorHeader.String(), ferr.reason),
		)
		fmt.Fprintf(os.Stderr, "%s\n\n", stderrStyles().ErrorDetails.Render(err.Error()))
	default:
		fmt.Fprintf(os.Stderr, format, stderrStyles().ErrorDetails.Render(err.Error()))
	}
}

func main() {
	var err error
	config, err = ensureConfig()
	if err != nil {
		handleError(fastaskError{err, "Could not load your settings file."})
		os.Exit(1)
	}

	if !isCompletionCmd(os.Args) && !isManCmd(os.Args) {
		log.SetOutput(os.Stderr)
		log.SetPrefix(appName)
		if lvl, err := log.ParseLevel(config.LogLevel); err == nil {
			log.SetLevel(lvl)
		}
	}

	initFlags()
	rootCmd.AddCommand(manCmd)
	rootCmd.Version = buildVersion()
	rootCmd.SetUsageFunc(usageFunc)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return newFlagParseError(err)
	})
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		_ = usageFunc(cmd)
	})

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		handleError(err)
		os.Exit(1)
	}
}
