package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/exp/ordered"
	"github.com/fastask/fastask/internal/anthropic"
	"github.com/fastask/fastask/internal/cache"
	"github.com/fastask/fastask/internal/hotkey"
	"github.com/fastask/fastask/internal/ollama"
	"github.com/fastask/fastask/internal/openai"
	"github.com/fastask/fastask/internal/proto"
	"github.com/fastask/fastask/internal/screenshot"
	"github.com/fastask/fastask/internal/stream"
	openaiapi "github.com/openai/openai-go"
	"golang.org/x/sync/errgroup"
)

const interruptedMarker = "*[interrupted]*"

type state int

const (
	startState state = iota
	configLoadedState
	requestState
	responseState
	doneState
	errorState
)

// FastAsk is the Bubble Tea model that drives a single question through the
// configured API and streams the answer back.
type FastAsk struct {
	Config *Config
	Output string
	Input  string
	Styles styles
	Error  *fastaskError

	state       state
	retries     int
	renderer    *lipgloss.Renderer
	glam        *glamour.TermRenderer
	glamOutput  string
	anim        tea.Model
	width       int
	interrupted bool
	rowSaved    bool

	db      *historyDB
	cache   *cache.Conversations
	shots   *screenshot.Manager
	hotkeys *hotkey.Registry

	prompt        string
	baseMessages  []proto.Message
	messages      []proto.Message
	captured      []string
	cancelRequest context.CancelFunc
}

func newFastAsk(
	r *lipgloss.Renderer,
	cfg *Config,
	db *historyDB,
	convoCache *cache.Conversations,
	shots *screenshot.Manager,
) *FastAsk {
	m := &FastAsk{
		Config:   cfg,
		Styles:   makeStyles(r),
		state:    startState,
		renderer: r,
		anim:     newCyclingChars(cfg.StatusText),
		db:       db,
		cache:    convoCache,
		shots:    shots,
		hotkeys:  hotkey.NewRegistry(cfg.DebugHotkeys),
	}
	if cfg.AppHotkey != "" {
		if _, err := m.hotkeys.Register(cfg.AppHotkey, m.interrupt); err != nil {
			log.Error("could not bind hotkey", "combo", cfg.AppHotkey, "err", err)
		}
	}
	if cfg.ScreenshotHotkey != "" {
		if _, err := m.hotkeys.Register(cfg.ScreenshotHotkey, m.snapshot); err != nil {
			log.Error("could not bind hotkey", "combo", cfg.ScreenshotHotkey, "err", err)
		}
	}
	return m
}

// cacheDetailsMsg carries the resolved history read/write targets.
type cacheDetailsMsg struct {
	WriteID, Title, ReadID string
}

// stdinContentMsg wraps whatever was piped in.
type stdinContentMsg struct{ content string }

// completionInput asks for a (re)start of the request with the given prompt.
type completionInput struct{ content string }

// completionOutput carries the stream and the chunk most recently read off
// it. A nil stream means the answer is complete.
type completionOutput struct {
	content string
	stream  stream.Stream
}

// Init implements tea.Model.
func (m *FastAsk) Init() tea.Cmd {
	return m.findCacheOpsDetails()
}

// Update implements tea.Model.
func (m *FastAsk) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case cacheDetailsMsg:
		m.Config.cacheWriteToID = msg.WriteID
		m.Config.cacheWriteToTitle = msg.Title
		m.Config.cacheReadFromID = msg.ReadID

		if !m.Config.NoCache && msg.ReadID != "" {
			if err := m.cache.Read(msg.ReadID, &m.baseMessages); err != nil {
				// a conversation in the history db without a transcript on
				// disk starts over from scratch
				log.Debug("no transcript for conversation", "id", msg.ReadID, "err", err)
			}
		}

		m.state = configLoadedState
		return m, readStdinCmd

	case stdinContentMsg:
		content := msg.content
		if prefix := m.Config.Prefix; prefix != "" {
			content = strings.TrimSpace(prefix + "\n\n" + content)
		}
		if content == "" {
			return m.quitWithError(fastaskError{
				err:    errors.New("try again with a question as the argument, or pipe one in"),
				reason: "You didn't ask anything.",
			})
		}
		m.Input = content
		m.state = requestState
		return m, tea.Batch(m.anim.Init(), m.startMessagesCmd(content))

	case completionInput:
		m.state = requestState
		return m, m.startMessagesCmd(msg.content)

	case completionOutput:
		if msg.stream == nil {
			m.state = doneState
			return m, tea.Quit
		}
		if msg.content != "" {
			m.appendToOutput(msg.content)
			m.state = responseState
		}
		return m, m.receiveCompletionStreamCmd(msg)

	case fastaskError:
		return m.quitWithError(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.interrupt()
			if m.state == responseState {
				m.state = doneState
			} else {
				m.state = errorState
				m.Error = &fastaskError{err: errors.New("canceled"), reason: "Canceled."}
			}
			return m, tea.Quit
		default:
			if m.hotkeys.Trigger(msg.String()) {
				return m, nil
			}
		}
	}

	if m.state == requestState {
		var cmd tea.Cmd
		m.anim, cmd = m.anim.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *FastAsk) View() string {
	switch m.state {
	case errorState:
		return m.errorView()
	case requestState:
		if !m.Config.Quiet {
			return m.anim.View()
		}
	case responseState, doneState:
		if m.markdownMode() {
			return m.glamOutput
		}
	}
	return ""
}

func (m *FastAsk) errorView() string {
	if m.Error == nil {
		return ""
	}
	const horizontalEdgePadding = 2
	w := m.width - horizontalEdgePadding*2
	s := m.renderer.NewStyle().Width(w).Padding(0, horizontalEdgePadding)
	return fmt.Sprintf(
		"\n%s\n\n%s\n\n",
		s.Render(m.Styles.ErrorHeader.String(), m.Error.reason),
		s.Render(m.Styles.ErrorDetails.Render(m.Error.Error())),
	)
}

func (m *FastAsk) quitWithError(err fastaskError) (tea.Model, tea.Cmd) {
	m.Error = &err
	m.state = errorState
	return m, tea.Quit
}

// interrupt stops the in-flight request. The partial answer sticks around
// with a marker so it still gets saved.
func (m *FastAsk) interrupt() {
	m.interrupted = true
	if m.cancelRequest != nil {
		m.cancelRequest()
	}
	if m.Output != "" {
		m.appendToOutput("\n\n" + interruptedMarker + "\n")
	}
}

// snapshot fires the configured grabber and stages the screenshot as an
// attachment for the next question.
func (m *FastAsk) snapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second) //nolint:mnd
	defer cancel()
	path, err := m.shots.Capture(ctx, m.Config.ScreenshotCmd)
	if err != nil {
		log.Error("screenshot failed", "err", err)
		return
	}
	m.captured = append(m.captured, path)
	log.Info("screenshot captured", "path", path)
}

func (m *FastAsk) markdownMode() bool {
	return !m.Config.Raw && isOutputTTY()
}

func (m *FastAsk) appendToOutput(s string) {
	m.Output += s
	if !m.markdownMode() {
		fmt.Fprint(os.Stdout, s)
		return
	}
	if m.glam == nil {
		var err error
		m.glam, err = m.glamourRenderer()
		if err != nil {
			log.Debug("could not create markdown renderer", "err", err)
			m.Config.Raw = true
			fmt.Fprint(os.Stdout, m.Output)
			return
		}
	}
	out, err := m.glam.Render(m.Output)
	if err != nil {
		log.Debug("could not render markdown", "err", err)
		return
	}
	m.glamOutput = out
}

func (m *FastAsk) glamourRenderer() (*glamour.TermRenderer, error) {
	wrap := m.Config.WordWrap
	if m.width > 0 && (wrap == 0 || wrap > m.width) {
		wrap = m.width
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wrap)}
	switch m.Config.Theme {
	case "dark", "light":
		opts = append(opts, glamour.WithStandardStyle(m.Config.Theme))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}
	return glamour.NewTermRenderer(opts...) //nolint:wrapcheck
}

// findCacheOpsDetails resolves --continue/--show/--title arguments into
// concrete conversation ids.
func (m *FastAsk) findCacheOpsDetails() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		writeID := ordered.First(m.Config.Save, m.Config.Continue)
		title := writeID
		readID := ordered.First(m.Config.Continue, m.Config.Show)

		if m.Config.ContinueLast || m.Config.ShowLast {
			convo, err := m.db.FindHEAD(ctx)
			if err != nil && m.Config.ShowLast {
				return fastaskError{err, "Could not find the conversation"}
			}
			if convo != nil {
				readID = convo.ID
			}
		}

		if readID != "" {
			convo, err := m.db.Find(ctx, readID)
			switch {
			case err == nil:
				readID = convo.ID
			case m.Config.Show != "":
				return fastaskError{err, "Could not find the conversation"}
			case m.Config.Continue != "":
				// continuing a conversation that doesn't exist picks up from
				// the latest one, keeping the given argument as the new title
				head, err := m.db.FindHEAD(ctx)
				if err != nil {
					readID = ""
				} else {
					readID = head.ID
				}
			}
		}

		if writeID == "" {
			writeID = newConversationID()
			title = ""
		} else if !convoIDReg.MatchString(writeID) {
			convo, err := m.db.Find(ctx, writeID)
			if err == nil {
				writeID = convo.ID
				title = ""
			} else {
				writeID = newConversationID()
			}
		}

		return cacheDetailsMsg{
			WriteID: writeID,
			Title:   title,
			ReadID:  readID,
		}
	}
}

func readStdinCmd() tea.Msg {
	if !isInputTTY() {
		reader := bufio.NewReader(os.Stdin)
		stdinBytes, err := io.ReadAll(reader)
		if err != nil {
			return fastaskError{err, "Unable to read stdin."}
		}
		return stdinContentMsg{string(stdinBytes)}
	}
	return stdinContentMsg{""}
}

func (m *FastAsk) startMessagesCmd(content string) tea.Cmd {
	return func() tea.Msg {
		mod, api, err := m.resolveModel()
		if err != nil {
			var ferr fastaskError
			if errors.As(err, &ferr) {
				return ferr
			}
			return fastaskError{err, "Could not resolve model."}
		}

		client, err := m.newClient(mod, api)
		if err != nil {
			var ferr fastaskError
			if errors.As(err, &ferr) {
				return ferr
			}
			return fastaskError{err, fmt.Sprintf("Could not create %s client.", api.Name)}
		}

		images, err := m.collectImages()
		if err != nil {
			return fastaskError{err, "Could not attach image."}
		}

		if !m.Config.NoLimit && mod.MaxChars > 0 && len(content) > mod.MaxChars {
			content = content[:mod.MaxChars]
		}
		m.prompt = content
		m.setupMessages(content, images)

		ctx, cancel := context.WithCancel(context.Background())
		m.cancelRequest = cancel

		// record the question up front so an interrupted or crashed run
		// still leaves a trace in the history
		if !m.Config.NoCache && !m.rowSaved {
			if err := m.db.Save(ctx, m.historyRow()); err != nil {
				log.Debug("could not save the history row", "err", err)
			} else {
				m.rowSaved = true
			}
		}

		req := proto.Request{
			Messages:    m.messages,
			API:         api.Name,
			Model:       mod.Name,
			Temperature: &m.Config.Temperature,
			TopP:        &m.Config.TopP,
			Stop:        m.Config.Stop,
		}
		if m.Config.MaxTokens > 0 {
			req.MaxTokens = &m.Config.MaxTokens
		}
		if m.Config.NoStream {
			s := false
			req.Stream = &s
		}

		return m.receiveCompletionStreamCmd(completionOutput{
			stream: client.Request(ctx, req),
		})()
	}
}

// resolveModel maps the configured model name through the API catalog. An
// unknown name is passed through as-is when an API was set explicitly.
func (m *FastAsk) resolveModel() (Model, API, error) {
	cfg := m.Config
	mod, ok := cfg.Models[cfg.Model]
	if !ok {
		if cfg.API == "" {
			return Model{}, API{}, fastaskError{
				err: newUserErrorf(
					"model %s is not in the settings file, set %s to use it anyway",
					m.Styles.InlineCode.Render(cfg.Model),
					m.Styles.InlineCode.Render("--api"),
				),
				reason: "Unknown model.",
			}
		}
		mod = Model{
			Name:     cfg.Model,
			API:      cfg.API,
			MaxChars: cfg.MaxInputChars,
		}
	}
	if cfg.API != "" {
		mod.API = cfg.API
	}
	for _, api := range cfg.APIs {
		if api.Name == mod.API {
			return mod, api, nil
		}
	}
	eps := make([]string, 0, len(cfg.APIs))
	for _, api := range cfg.APIs {
		eps = append(eps, m.Styles.InlineCode.Render(api.Name))
	}
	return Model{}, API{}, fastaskError{
		err: newUserErrorf(
			"your configured API endpoints are: %s",
			strings.Join(eps, ", "),
		),
		reason: fmt.Sprintf(
			"The API endpoint %s is not configured.",
			m.Styles.InlineCode.Render(mod.API),
		),
	}
}

func (m *FastAsk) newClient(mod Model, api API) (stream.Client, error) {
	cfg := m.Config
	key := ""
	if api.APIKeyEnv != "" {
		key = os.Getenv(api.APIKeyEnv)
	}

	var httpClient *http.Client
	if cfg.RequestTimeout > 0 {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	switch api.Name {
	case "anthropic":
		if key == "" {
			return nil, m.missingKeyError(api, "https://console.anthropic.com/settings/keys")
		}
		ccfg := anthropic.DefaultConfig(key)
		if api.BaseURL != "" {
			ccfg.BaseURL = api.BaseURL
		}
		if httpClient != nil {
			ccfg.HTTPClient = httpClient
		}
		return anthropic.New(ccfg), nil
	case "ollama":
		occfg := ollama.DefaultConfig()
		if api.BaseURL != "" {
			occfg.BaseURL = api.BaseURL
		}
		if httpClient != nil {
			occfg.HTTPClient = httpClient
		}
		return ollama.New(occfg) //nolint:wrapcheck
	default:
		if key == "" && api.APIKeyEnv != "" {
			return nil, m.missingKeyError(api, "https://platform.openai.com/account/api-keys")
		}
		ccfg := openai.DefaultConfig(key)
		base := api.BaseURL
		if api.Name == "openai" {
			base = ordered.First(cfg.BaseURL, base)
		}
		if base != "" {
			ccfg.BaseURL = base
		}
		if strings.Contains(ccfg.BaseURL, "openrouter.ai") {
			ccfg.ExtraHeaders = map[string]string{
				"HTTP-Referer": "https://github.com/fastask/fastask",
				"X-Title":      "FastAsk",
			}
		}
		if httpClient != nil {
			ccfg.HTTPClient = httpClient
		}
		return openai.New(ccfg), nil
	}
}

func (m *FastAsk) missingKeyError(api API, link string) error {
	return fastaskError{
		err: newUserErrorf(
			"you can grab one at %s",
			m.Styles.Link.Render(link),
		),
		reason: fmt.Sprintf(
			"%s required; set the environment variable %s or update %s through %s.",
			m.Styles.InlineCode.Render(api.APIKeyEnv),
			m.Styles.InlineCode.Render(api.APIKeyEnv),
			m.Styles.InlineCode.Render("fastask.yml"),
			m.Styles.InlineCode.Render("fastask --settings"),
		),
	}
}

// collectImages gathers the --attach argument, the --capture screenshot, and
// anything grabbed with the screenshot hotkey.
func (m *FastAsk) collectImages() ([]proto.ImageContent, error) {
	var paths []string

	if m.Config.Capture {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second) //nolint:mnd
		defer cancel()
		path, err := m.shots.Capture(ctx, m.Config.ScreenshotCmd)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}
		paths = append(paths, path)
	}

	switch m.Config.Attach {
	case "":
	case "latest":
		path, err := m.shots.Latest()
		if err != nil {
			return nil, err //nolint:wrapcheck
		}
		paths = append(paths, path)
	default:
		paths = append(paths, m.Config.Attach)
	}

	paths = append(paths, m.captured...)
	m.captured = nil

	images := make([]proto.ImageContent, 0, len(paths))
	for _, path := range paths {
		img, err := readImage(path)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

// setupMessages assembles the transcript for the request: the system prompt
// first, then any continued conversation, then the question itself. It is
// rebuilt from scratch on every attempt so a retry never carries the question
// from the previous one.
func (m *FastAsk) setupMessages(content string, images []proto.ImageContent) {
	messages := make([]proto.Message, 0, len(m.baseMessages)+2)
	if sp := m.Config.SystemPrompt; sp != "" {
		hasSystem := len(m.baseMessages) > 0 && m.baseMessages[0].Role == proto.RoleSystem
		if !hasSystem {
			messages = append(messages, proto.Message{
				Role:    proto.RoleSystem,
				Content: sp,
			})
		}
	}
	messages = append(messages, m.baseMessages...)
	m.messages = append(messages, proto.Message{
		Role:    proto.RoleUser,
		Content: content,
		Images:  images,
	})
}

func (m *FastAsk) receiveCompletionStreamCmd(msg completionOutput) tea.Cmd {
	return func() tea.Msg {
		if msg.stream.Next() {
			chunk, err := msg.stream.Current()
			if err != nil {
				if errors.Is(err, stream.ErrNoContent) {
					return m.receiveCompletionStreamCmd(msg)()
				}
				return m.handleRequestError(err)
			}
			msg.content = chunk.Content
			return msg
		}

		if err := msg.stream.Err(); err != nil {
			if m.interrupted || errors.Is(err, context.Canceled) {
				_ = msg.stream.Close()
				return completionOutput{}
			}
			return m.handleRequestError(err)
		}

		m.messages = msg.stream.Messages()
		_ = msg.stream.Close()
		return completionOutput{}
	}
}

func (m *FastAsk) handleRequestError(err error) tea.Msg {
	ae := &openaiapi.Error{}
	if errors.As(err, &ae) {
		return m.handleAPIError(ae)
	}
	if m.interrupted || errors.Is(err, context.Canceled) {
		return completionOutput{}
	}
	format := "There was a problem with the %s API request."
	return fastaskError{err, fmt.Sprintf(format, m.Config.API)}
}

func (m *FastAsk) handleAPIError(err *openaiapi.Error) tea.Msg {
	cfg := m.Config
	mod := cfg.Models[cfg.Model]
	switch err.StatusCode {
	case http.StatusNotFound:
		if mod.Fallback != "" {
			m.Config.Model = mod.Fallback
			return m.retry(m.prompt, fastaskError{
				err:    err,
				reason: fmt.Sprintf("%s API server error.", mod.API),
			})
		}
		return fastaskError{err: err, reason: fmt.Sprintf(
			"Missing model '%s' for API '%s'.",
			cfg.Model,
			cfg.API,
		)}
	case http.StatusBadRequest:
		if err.Code == "context_length_exceeded" {
			pe := fastaskError{err: err, reason: "Maximum prompt size exceeded."}
			if cfg.NoLimit {
				return pe
			}
			return m.retry(cutPrompt(err.Message, m.prompt), pe)
		}
		// bad request (do not retry)
		return fastaskError{err: err, reason: fmt.Sprintf("%s API request error.", mod.API)}
	case http.StatusUnauthorized:
		// invalid auth or key (do not retry)
		return fastaskError{err: err, reason: fmt.Sprintf("Invalid %s API key.", mod.API)}
	case http.StatusTooManyRequests:
		// rate limiting or engine overload (wait and retry)
		return m.retry(m.prompt, fastaskError{
			err: err, reason: fmt.Sprintf("You’ve hit your %s API rate limit.", mod.API),
		})
	case http.StatusInternalServerError:
		if mod.API == "openai" {
			return m.retry(m.prompt, fastaskError{err: err, reason: "OpenAI API server error."})
		}
		return fastaskError{err: err, reason: fmt.Sprintf(
			"Error loading model '%s' for API '%s'.",
			mod.Name,
			mod.API,
		)}
	default:
		return m.retry(m.prompt, fastaskError{err: err, reason: "Unknown API error."})
	}
}

func (m *FastAsk) retry(content string, err fastaskError) tea.Msg {
	m.retries++
	if m.retries >= m.Config.MaxRetries {
		return err
	}
	wait := time.Millisecond * 100 * time.Duration(math.Pow(2, float64(m.retries))) //nolint:mnd
	time.Sleep(wait)
	return completionInput{content}
}

var tokenCountRegexp = regexp.MustCompile(`(\d+) tokens`)

// cutPrompt shrinks the prompt proportionally to the token counts the API
// reported, so the retry fits in the model's context window.
func cutPrompt(msg, prompt string) string {
	found := tokenCountRegexp.FindAllStringSubmatch(msg, 2) //nolint:mnd
	if len(found) != 2 || len(found[0]) != 2 || len(found[1]) != 2 {
		return prompt[:len(prompt)/2]
	}

	maxt, _ := strconv.Atoi(found[0][1])
	current, _ := strconv.Atoi(found[1][1])

	if maxt == 0 || current == 0 || current <= maxt {
		return prompt[:len(prompt)/2]
	}

	// 1 token =~ 4 chars. Removes 10% more than necessary for safety.
	reduce := float64(current-maxt) * 1.1 //nolint:mnd
	reduceChars := int(reduce * 4)        //nolint:mnd
	if reduceChars >= len(prompt) {
		return prompt[:len(prompt)/2]
	}
	return prompt[:len(prompt)-reduceChars]
}

// historyRow builds the database row for the current exchange.
func (m *FastAsk) historyRow() Conversation {
	convo := Conversation{
		ID:       m.Config.cacheWriteToID,
		Question: m.Input,
		Answer:   m.Output,
		API:      m.Config.API,
	}
	if t := m.Config.cacheWriteToTitle; t != "" {
		convo.Title = &t
	}
	if mod := m.Config.Model; mod != "" {
		convo.Model = &mod
	}
	convo.Metadata.Temperature = &m.Config.Temperature
	if m.Config.MaxTokens > 0 {
		convo.Metadata.MaxTokens = &m.Config.MaxTokens
	}
	if path := lastAttachment(m.messages); path != "" {
		convo.HasScreenshot = true
		convo.ScreenshotPath = &path
	}
	return convo
}

// saveConversation persists the finished exchange: the history row, the gob
// transcript for --continue, and a screenshot prune, all in parallel.
func (m *FastAsk) saveConversation(ctx context.Context) error {
	if m.Config.NoCache || m.Error != nil || m.Output == "" {
		return nil
	}

	writeID := m.Config.cacheWriteToID

	// an interrupted stream never reported the assistant message, keep the
	// partial answer in the transcript anyway
	if len(m.messages) == 0 || m.messages[len(m.messages)-1].Role != proto.RoleAssistant {
		m.messages = append(m.messages, proto.Message{
			Role:    proto.RoleAssistant,
			Content: m.Output,
		})
	}

	var g errgroup.Group
	g.Go(func() error {
		// the question row was written when the request started, only the
		// final (or interrupted) answer is missing
		if m.rowSaved {
			return m.db.UpdateAnswer(ctx, writeID, m.Output)
		}
		return m.db.Save(ctx, m.historyRow())
	})
	g.Go(func() error {
		return m.cache.Write(writeID, &m.messages) //nolint:wrapcheck
	})
	g.Go(func() error {
		if m.Config.ScreenshotKeep <= 0 {
			return nil
		}
		removed, err := m.shots.Prune(m.Config.ScreenshotKeep)
		if removed > 0 {
			log.Debug("pruned screenshots", "removed", removed)
		}
		return err //nolint:wrapcheck
	})
	if err := g.Wait(); err != nil {
		return fastaskError{err, "There was a problem saving the conversation."}
	}
	return nil
}

// lastAttachment returns the filename of the newest image in the transcript.
func lastAttachment(messages []proto.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if n := len(messages[i].Images); n > 0 {
			return messages[i].Images[n-1].Filename
		}
	}
	return ""
}
