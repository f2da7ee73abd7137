package main

const configTemplate = `# {{ index .Help "model" }}
default-model: gpt-4o-mini
# {{ index .Help "api" }}
default-api: openai
# {{ index .Help "system-prompt" }}
system-prompt: "You are a helpful assistant. Be concise."
# {{ index .Help "temp" }}
temp: 0.7
# {{ index .Help "topp" }}
topp: 1.0
# {{ index .Help "max-tokens" }}
max-tokens: 0
# {{ index .Help "max-input-chars" }}
max-input-chars: 12250
# {{ index .Help "theme" }}
theme: auto
# {{ index .Help "word-wrap" }}
word-wrap: 80
# {{ index .Help "raw" }}
raw: false
# {{ index .Help "quiet" }}
quiet: false
# {{ index .Help "no-cache" }}
no-cache: false
# {{ index .Help "max-retries" }}
max-retries: 5
# {{ index .Help "status-text" }}
status-text: Thinking
# {{ index .Help "log-level" }}
log-level: warn
# {{ index .Help "screenshot-cmd" }}
# Examples: "grim", "gnome-screenshot -f", "scrot", "screencapture -x".
screenshot-command: ""
# {{ index .Help "screenshot-keep" }}
screenshot-keep: 20
# {{ index .Help "screenshots-dir" }} Unset means the XDG data directory.
# screenshots-dir: ""
# {{ index .Help "db-path" }} Unset means the XDG data directory.
# db-path: ""
# {{ index .Help "app-hotkey" }}
app-hotkey: ctrl+r
# {{ index .Help "screenshot-hotkey" }}
screenshot-hotkey: ctrl+s
# {{ index .Help "debug-hotkeys" }}
debug-hotkeys: false
# {{ index .Help "apis" }}
apis:
  openai:
    base-url: https://api.openai.com/v1
    api-key-env: OPENAI_API_KEY
    models: # {{ index .Help "model" }}
      gpt-4o-mini:
        aliases: ["4o-mini", "mini"]
        max-input-chars: 392000
        fallback: gpt-4o
      gpt-4o:
        aliases: ["4o"]
        max-input-chars: 392000
        fallback: gpt-4.1
      gpt-4.1:
        aliases: ["41"]
        max-input-chars: 392000
  openrouter:
    base-url: https://openrouter.ai/api/v1
    api-key-env: OPENROUTER_API_KEY
    models:
      openai/gpt-4o-mini:
        aliases: ["or-mini"]
        max-input-chars: 392000
      anthropic/claude-sonnet-4:
        aliases: ["or-sonnet"]
        max-input-chars: 680000
  localai:
    # LocalAI setup instructions: https://github.com/go-skynet/LocalAI#example-use-gpt4all-j-model
    base-url: http://localhost:8080
    models:
      ggml-gpt4all-j:
        aliases: ["local", "4all"]
        max-input-chars: 12250
  ollama:
    base-url: http://localhost:11434 # https://github.com/ollama/ollama#go
    models:
      "llama3.2":
        aliases: ["llama3", "llama"]
        max-input-chars: 650000
  anthropic:
    base-url: https://api.anthropic.com/v1
    api-key-env: ANTHROPIC_API_KEY
    models:
      claude-sonnet-4-5:
        aliases: ["sonnet"]
        max-input-chars: 680000
      claude-haiku-4-5:
        aliases: ["haiku"]
        max-input-chars: 680000
`
