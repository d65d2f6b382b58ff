package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/codechat-dev/codechat/agent"
	"github.com/codechat-dev/codechat/agent/terminal"
	"github.com/codechat-dev/codechat/config"
	"github.com/codechat-dev/codechat/conversation"
	"github.com/codechat-dev/codechat/llm"
)

const defaultSystemPrompt = "You are a coding assistant running in a developer's terminal. " +
	"Answer questions about the provided project context. When you suggest shell commands, " +
	"put each one in a fenced ```bash code block so the user can review and run it."

func main() {
	sessionFlag := flag.String("s", "", "Session name to create or use")
	resumeFlag := flag.String("r", "", "Resume a session by name")
	contextFlag := flag.String("c", "", "Comma-separated files or directories to load as context")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %+v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)

	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}

	var conv *conversation.Conversation
	if *resumeFlag != "" {
		conv, err = conversation.Load(*resumeFlag, cfg.TokenWindow)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resuming session '%s': %+v\n", *resumeFlag, err)
			os.Exit(1)
		}
		fmt.Printf("Resuming session: %s\n", *resumeFlag)
	} else {
		name := *sessionFlag
		if name == "" {
			name = defaultSessionName()
		}
		conv = conversation.New(name, cfg.SystemPrompt, cfg.TokenWindow)
		fmt.Printf("Starting new session: %s\n", name)
	}

	client, err := newClient(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing %s client: %+v\n", cfg.LLMClient, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	term := terminal.NewStdio()
	a := agent.New(cfg, conv, client, term)

	if *contextFlag != "" {
		paths := strings.Split(*contextFlag, ",")
		for i := range paths {
			paths[i] = strings.TrimSpace(paths[i])
		}
		if err := a.LoadContext(paths); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading context: %+v\n", err)
			os.Exit(1)
		}
	}

	initialPrompt := strings.Join(flag.Args(), " ")
	fmt.Println("codechat is ready. Type your prompt, /reset to clear, /quit to leave.")
	if err := a.Run(ctx, initialPrompt); err != nil {
		fmt.Fprintf(os.Stderr, "Agent stopped with an error: %+v\n", err)
		os.Exit(1)
	}
}

// newClient selects the model backend from config. An unknown or empty
// provider falls back to a scripted client, which keeps the loop usable
// for offline testing.
func newClient(cfg *config.Config) (llm.Client, error) {
	ctx := context.Background()
	switch cfg.LLMClient {
	case "anthropic":
		return llm.NewAnthropicClient(ctx, cfg.Model)
	case "openai", "xai":
		return llm.NewOpenAIClient(ctx, cfg.Model)
	case "gemini":
		return llm.NewGeminiClient(ctx, cfg.Model)
	case "bedrock":
		return llm.NewBedrockClient(ctx, cfg.Model)
	default:
		return &llm.ScriptedClient{Responses: []string{
			"No model backend is configured. Set `llm:` in .codechat/config.yaml.",
		}}, nil
	}
}

func setupLogging(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

func defaultSessionName() string {
	wd, err := os.Getwd()
	if err != nil {
		wd = "codechat"
	}
	dirName := filepath.Base(wd)
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return fmt.Sprintf("%s_%s", dirName, timestamp)
}
