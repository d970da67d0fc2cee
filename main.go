package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"drakyn/config"
	"drakyn/server"
	"drakyn/stream"
	"drakyn/ui"

	"github.com/charmbracelet/x/term"
)

const (
	License       = "Apache-2.0"
	clientTimeout = 10 * time.Second
)

func usage() {
	fmt.Fprintf(os.Stderr, `drakyn %s - agent orchestration service

Usage:
  drakyn serve [--config FILE] [--debug] [--host HOST] [--port N]
  drakyn status
  drakyn models
  drakyn tools [QUERY]
  drakyn chat [--no-stream] [--verbose] [MESSAGE]
  drakyn runs [--limit N]
  drakyn version

Client commands accept --config FILE and --url URL (or DRAKYN_URL).
`, config.Version)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, args)
	case "status":
		err = runStatus(ctx, args)
	case "models":
		err = runModels(ctx, args)
	case "tools":
		err = runTools(ctx, args)
	case "chat":
		err = runChat(ctx, args)
	case "runs":
		err = runRuns(ctx, args)
	case "version", "--version", "-v":
		fmt.Printf("drakyn %s (%s)\n", config.Version, License)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		usage()
		os.Exit(2)
	}

	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

// clientFlags registers the flags shared by every client command.
type clientFlags struct {
	configPath string
	url        string
}

func (f *clientFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "config file (default ~/.config/drakyn/config.toml)")
	fs.StringVar(&f.url, "url", os.Getenv("DRAKYN_URL"), "service URL (default from config)")
}

func (f *clientFlags) client() (*server.Client, error) {
	url := f.url
	if url == "" {
		cfg, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		url = cfg.BaseURL()
	}
	return server.NewClient(url, clientTimeout)
}

func terminalWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return ui.DefaultWidth
}

func runStatus(ctx context.Context, args []string) error {
	var cf clientFlags
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	cf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := cf.client()
	if err != nil {
		return err
	}
	health, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("service not running: %w", err)
	}
	fmt.Println(ui.FormatHealth(client.BaseURL(), health))
	return nil
}

func runModels(ctx context.Context, args []string) error {
	var cf clientFlags
	fs := flag.NewFlagSet("models", flag.ContinueOnError)
	cf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := cf.client()
	if err != nil {
		return err
	}
	models, err := client.Models(ctx)
	if err != nil {
		return err
	}
	fmt.Println(ui.FormatModels(models))
	return nil
}

func runTools(ctx context.Context, args []string) error {
	var cf clientFlags
	fs := flag.NewFlagSet("tools", flag.ContinueOnError)
	cf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := cf.client()
	if err != nil {
		return err
	}
	resp, err := client.Tools(ctx)
	if err != nil {
		return err
	}

	tools := ui.FilterTools(resp.Tools, strings.Join(fs.Args(), " "))
	fmt.Println(ui.FormatToolList(tools, terminalWidth()))
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	var cf clientFlags
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	cf.register(fs)
	limit := fs.Int("limit", 20, "number of runs to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := cf.client()
	if err != nil {
		return err
	}
	resp, err := client.Runs(ctx, *limit)
	if err != nil {
		return err
	}
	fmt.Println(ui.FormatRuns(resp.Runs, time.Now()))
	return nil
}

func runChat(ctx context.Context, args []string) error {
	var cf clientFlags
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	cf.register(fs)
	noStream := fs.Bool("no-stream", false, "wait for the final answer instead of streaming steps")
	verbose := fs.Bool("verbose", false, "print tool arguments and results in full")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := cf.client()
	if err != nil {
		return err
	}

	chat := ui.ChatFunc(client.ChatStream)
	if *noStream {
		chat = func(ctx context.Context, message string, history []server.HistoryMessage, onEvent func(stream.Event) error) error {
			resp, err := client.Chat(ctx, message, history)
			if err != nil {
				return err
			}
			if resp.Error != "" {
				return onEvent(stream.Event{Type: "error", Error: resp.Error})
			}
			return onEvent(stream.Event{Type: "answer", Content: resp.Answer})
		}
	}

	width := terminalWidth()

	// One-shot mode
	if message := strings.TrimSpace(strings.Join(fs.Args(), " ")); message != "" {
		printer := ui.NewStepPrinter(os.Stdout, width)
		printer.Verbose = *verbose
		if err := chat(ctx, message, nil, printer.Event); err != nil {
			return err
		}
		if printer.Err() != "" {
			os.Exit(1)
		}
		return nil
	}

	repl := ui.NewREPL(os.Stdin, os.Stdout, width, chat)
	repl.SetVerbose(*verbose)
	return repl.Run(ctx)
}
