package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v9"
	"github.com/charmbracelet/x/exp/ordered"
	"github.com/fastask/fastask/internal/hotkey"
	"github.com/joho/godotenv"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var help = map[string]string{
	"api":               "OpenAI compatible REST API (openai, openrouter, localai, ollama, anthropic).",
	"apis":              "Aliases and endpoints for OpenAI compatible REST API.",
	"model":             "Default model (gpt-4o, claude-sonnet-4-5, llama3.3...).",
	"ask":               "Open the interactive ask window even when a prompt is given.",
	"attach":            "Attach an image to the question (a path, or 'latest' for the newest screenshot).",
	"capture":           "Capture a screenshot with the configured grabber command and attach it.",
	"screenshot-cmd":    "External command that writes a screenshot to the path given as its last argument.",
	"screenshots-dir":   "Directory to store captured screenshots in.",
	"screenshot-keep":   "How many captured screenshots to keep around; older ones get pruned.",
	"system-prompt":     "Instruction prepended to every question.",
	"max-input-chars":   "Default character limit on input to model.",
	"raw":               "Render output as raw text instead of markdown.",
	"quiet":             "Quiet mode (hide the spinner while loading and stderr messages for success).",
	"help":              "Show help and exit.",
	"version":           "Show version and exit.",
	"max-retries":       "Maximum number of times to retry API calls.",
	"no-limit":          "Turn off the client-side limit on the size of the input into the model.",
	"max-tokens":        "Maximum number of tokens in answer.",
	"word-wrap":         "Wrap formatted output at specific width (default is 80).",
	"temp":              "Temperature (randomness) of results, from 0.0 to 2.0.",
	"topp":              "TopP, an alternative to temperature that narrows answer, from 0.0 to 1.0.",
	"stop":              "Up to 4 sequences where the API will stop generating further tokens.",
	"status-text":       "Text to show while generating.",
	"theme":             "Color theme for rendered answers (dark, light, auto).",
	"settings":          "Open settings in your $EDITOR.",
	"reset-settings":    "Backup your old settings file and reset everything to the defaults.",
	"continue":          "Continue from the last answer or a given conversation id or title.",
	"continue-last":     "Continue from the last answer.",
	"no-cache":          "Disables storing of the question/answer in the history.",
	"no-stream":         "Wait for the full answer instead of streaming it.",
	"copy":              "Copy the answer to the clipboard when done.",
	"title":             "Saves the current conversation with the given title.",
	"list":              "Lists saved conversations.",
	"limit":             "Limit --list to the given number of conversations (0 lists all).",
	"search":            "Filter --list by a substring of the question or answer.",
	"delete":            "Deletes a saved conversation with the given id or title.",
	"clear-history":     "Deletes all saved conversations and screenshots.",
	"show":              "Show a saved conversation with the given id or title.",
	"show-last":         "Show the last saved conversation.",
	"app-hotkey":        "Key combination bound to stopping the answer mid-generation inside the ask window.",
	"screenshot-hotkey": "Key combination bound to capturing a screenshot inside the ask window.",
	"debug-hotkeys":     "Record hotkey bindings without arming them.",
	"db-path":           "Path of the history database.",
	"log-level":         "Log verbosity (debug, info, warn, error).",
	"timeout":           "Give up on the API request after this long.",
}

// Model represents the LLM model used in the API call.
type Model struct {
	Name     string
	API      string
	MaxChars int      `yaml:"max-input-chars"`
	Aliases  []string `yaml:"aliases"`
	Fallback string   `yaml:"fallback"`
}

// API represents an API endpoint and its models.
type API struct {
	Name      string
	APIKeyEnv string           `yaml:"api-key-env"`
	BaseURL   string           `yaml:"base-url"`
	Models    map[string]Model `yaml:"models"`
}

// APIs is a type alias to allow custom YAML decoding.
type APIs []API

// UnmarshalYAML implements sorted API YAML decoding.
func (apis *APIs) UnmarshalYAML(node *yaml.Node) error {
	for i := 0; i < len(node.Content); i += 2 {
		var api API
		if err := node.Content[i+1].Decode(&api); err != nil {
			return fmt.Errorf("error decoding YAML file: %s", err)
		}
		api.Name = node.Content[i].Value
		*apis = append(*apis, api)
	}
	return nil
}

// Config holds the main configuration and is mapped to the YAML settings
// file. Environment variables override the file; flags override both.
type Config struct {
	Model            string        `yaml:"default-model" env:"OPENAI_MODEL"`
	API              string        `yaml:"default-api" env:"API"`
	BaseURL          string        `yaml:"-" env:"OPENAI_API_URL"`
	SystemPrompt     string        `yaml:"system-prompt" env:"SYSTEM_PROMPT"`
	Temperature      float64       `yaml:"temp" env:"TEMPERATURE"`
	TopP             float64       `yaml:"topp" env:"TOPP"`
	MaxTokens        int64         `yaml:"max-tokens" env:"MAX_TOKENS"`
	Stop             []string      `yaml:"stop" env:"STOP"`
	MaxInputChars    int           `yaml:"max-input-chars" env:"MAX_INPUT_CHARS"`
	NoLimit          bool          `yaml:"no-limit" env:"NO_LIMIT"`
	Theme            string        `yaml:"theme" env:"THEME"`
	LogLevel         string        `yaml:"log-level" env:"LOG_LEVEL"`
	Quiet            bool          `yaml:"quiet" env:"QUIET"`
	Raw              bool          `yaml:"raw" env:"RAW"`
	NoCache          bool          `yaml:"no-cache" env:"NO_CACHE"`
	MaxRetries       int           `yaml:"max-retries" env:"MAX_RETRIES"`
	WordWrap         int           `yaml:"word-wrap" env:"WORD_WRAP"`
	StatusText       string        `yaml:"status-text" env:"STATUS_TEXT"`
	RequestTimeout   time.Duration `yaml:"request-timeout" env:"REQUEST_TIMEOUT"`
	DBPath           string        `yaml:"db-path" env:"DB_PATH"`
	CachePath        string        `yaml:"cache-path" env:"CACHE_PATH"`
	ScreenshotsDir   string        `yaml:"screenshots-dir" env:"SCREENSHOTS_DIR"`
	ScreenshotCmd    string        `yaml:"screenshot-command" env:"SCREENSHOT_COMMAND"`
	ScreenshotKeep   int           `yaml:"screenshot-keep" env:"SCREENSHOT_KEEP"`
	AppHotkey        string        `yaml:"app-hotkey" env:"APP_HOTKEY"`
	ScreenshotHotkey string        `yaml:"screenshot-hotkey" env:"SCREENSHOT_HOTKEY"`
	DebugHotkeys     bool          `yaml:"debug-hotkeys" env:"DEBUG_HOTKEYS"`
	APIs             APIs          `yaml:"apis"`

	Models       map[string]Model `yaml:"-"`
	SettingsPath string           `yaml:"-"`

	// flag-only
	Prefix        string `yaml:"-"`
	Ask           bool   `yaml:"-"`
	Attach        string `yaml:"-"`
	Capture       bool   `yaml:"-"`
	NoStream      bool   `yaml:"-"`
	Copy          bool   `yaml:"-"`
	Settings      bool   `yaml:"-"`
	ResetSettings bool   `yaml:"-"`
	ContinueLast  bool   `yaml:"-"`
	Continue      string `yaml:"-"`
	Save          string `yaml:"-"`
	Show          string `yaml:"-"`
	ShowLast      bool   `yaml:"-"`
	List          bool   `yaml:"-"`
	Limit         int    `yaml:"-"`
	Search        string `yaml:"-"`
	Delete        string `yaml:"-"`
	ClearHistory  bool   `yaml:"-"`

	cacheReadFromID, cacheWriteToID, cacheWriteToTitle string
}

func ensureConfig() (Config, error) {
	var c Config
	sp, err := xdg.ConfigFile(filepath.Join(appName, appName+".yml"))
	if err != nil {
		return c, fastaskError{err, "Could not find settings path."}
	}
	c.SettingsPath = sp

	dir := filepath.Dir(sp)
	if dirErr := os.MkdirAll(dir, 0o700); dirErr != nil { //nolint:mnd
		return c, fastaskError{dirErr, "Could not create settings directory."}
	}

	if dirErr := writeConfigFile(sp); dirErr != nil {
		return c, dirErr
	}
	content, err := os.ReadFile(sp)
	if err != nil {
		return c, fastaskError{err, "Could not read settings file."}
	}
	if err := yaml.Unmarshal(content, &c); err != nil {
		return c, fastaskError{err, "Could not parse settings file."}
	}
	ms := make(map[string]Model)
	for _, api := range c.APIs {
		for mk, mv := range api.Models {
			mv.Name = mk
			mv.API = api.Name
			// only set the model key and aliases if they haven't
			// already been used
			if _, ok := ms[mk]; !ok {
				ms[mk] = mv
			}
			for _, a := range mv.Aliases {
				if _, ok := ms[a]; !ok {
					ms[a] = mv
				}
			}
		}
	}
	c.Models = ms

	// A .env next to the invocation wins over the settings file but not
	// over the real environment.
	_ = godotenv.Load()

	if err := env.ParseWithOptions(&c, env.Options{}); err != nil {
		return c, fastaskError{err, "Could not parse environment into settings."}
	}

	c.DBPath = ordered.First(c.DBPath, filepath.Join(xdg.DataHome, appName, "history.db"))
	c.CachePath = ordered.First(c.CachePath, filepath.Join(xdg.DataHome, appName, "conversations"))
	c.ScreenshotsDir = ordered.First(c.ScreenshotsDir, filepath.Join(xdg.DataHome, appName, "screenshots"))

	if err := c.validate(); err != nil {
		return c, err
	}

	return c, nil
}

func (c Config) validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fastaskError{
			err:    newUserErrorf("temperature must be between 0.0 and 2.0, got %v", c.Temperature),
			reason: "Invalid temperature.",
		}
	}
	if c.TopP < 0 || c.TopP > 1 {
		return fastaskError{
			err:    newUserErrorf("top-p must be between 0.0 and 1.0, got %v", c.TopP),
			reason: "Invalid top-p.",
		}
	}
	switch c.Theme {
	case "dark", "light", "auto", "":
	default:
		return fastaskError{
			err:    newUserErrorf("theme must be one of dark, light, or auto, got %q", c.Theme),
			reason: "Invalid theme.",
		}
	}
	for _, combo := range []string{c.AppHotkey, c.ScreenshotHotkey} {
		if combo == "" {
			continue
		}
		if _, err := hotkey.Parse(combo); err != nil {
			return fastaskError{err, "Invalid hotkey."}
		}
	}
	return nil
}

func writeConfigFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return createConfigFile(path)
	} else if err != nil {
		return fastaskError{err, "Could not stat path."}
	}
	return nil
}

func createConfigFile(path string) error {
	tmpl := template.Must(template.New("config").Parse(configTemplate))

	f, err := os.Create(path)
	if err != nil {
		return fastaskError{err, "Could not create configuration file."}
	}
	defer func() { _ = f.Close() }()

	m := struct {
		Help map[string]string
	}{
		Help: help,
	}
	if err := tmpl.Execute(f, m); err != nil {
		return fastaskError{err, "Could not render template."}
	}
	return nil
}

func resetSettings(cfg Config) error {
	_, err := os.Stat(cfg.SettingsPath)
	if err != nil {
		return fastaskError{err, "Could not read settings file."}
	}
	inputFile, err := os.Open(cfg.SettingsPath)
	if err != nil {
		return fastaskError{err, "Could not open settings file."}
	}
	defer inputFile.Close() //nolint:errcheck
	backup := cfg.SettingsPath + ".bak"
	outputFile, err := os.Create(backup)
	if err != nil {
		return fastaskError{err, "Could not backup settings file."}
	}
	defer outputFile.Close() //nolint:errcheck
	if _, err := outputFile.ReadFrom(inputFile); err != nil {
		return fastaskError{err, "Could not write backup settings file."}
	}
	if err := os.Remove(cfg.SettingsPath); err != nil {
		return fastaskError{err, "Could not remove settings file."}
	}
	if err := createConfigFile(cfg.SettingsPath); err != nil {
		return err
	}
	if !cfg.Quiet {
		fmt.Fprintln(os.Stderr, "Settings restored to defaults!")
		fmt.Fprintf(os.Stderr,
			"%s %s\n",
			stderrStyles().Comment.Render("Your old settings have been saved to:"),
			stderrStyles().Link.Render(backup),
		)
	}
	return nil
}

func useLine() string {
	appNameStyled := filepath.Base(os.Args[0])

	if stdoutRenderer().ColorProfile() == termenv.TrueColor {
		appNameStyled = makeGradientText(stdoutStyles().AppName, appNameStyled)
	}

	return fmt.Sprintf(
		"%s %s",
		appNameStyled,
		stdoutStyles().CliArgs.Render("[OPTIONS] [QUESTION]"),
	)
}

func usageFunc(cmd *cobra.Command) error {
	fmt.Printf("Ask fast, get a streamed answer. Quick questions for your terminal.\n\n")
	fmt.Printf(
		"Usage:\n  %s\n\n",
		useLine(),
	)
	fmt.Println("Options:")
	cmd.Flags().VisitAll(func(f *flag.Flag) {
		if f.Hidden {
			return
		}
		if f.Shorthand == "" {
			fmt.Printf(
				"  %-44s %s\n",
				stdoutStyles().Flag.Render("--"+f.Name),
				stdoutStyles().FlagDesc.Render(f.Usage),
			)
		} else {
			fmt.Printf(
				"  %s%s %-40s %s\n",
				stdoutStyles().Flag.Render("-"+f.Shorthand),
				stdoutStyles().FlagComma,
				stdoutStyles().Flag.Render("--"+f.Name),
				stdoutStyles().FlagDesc.Render(f.Usage),
			)
		}
	})
	desc, example := randomExample()
	fmt.Printf(
		"\nExample:\n  %s\n  %s\n",
		stdoutStyles().Comment.Render("# "+desc),
		example,
	)

	return nil
}
