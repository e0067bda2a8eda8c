package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/smallnest/langlab/chat"
	"github.com/smallnest/langlab/log"
	"github.com/smallnest/langlab/render"
	"github.com/smallnest/langlab/store"
	"github.com/smallnest/langlab/store/memory"
	"github.com/smallnest/langlab/store/postgres"
	"github.com/smallnest/langlab/store/redis"
	"github.com/smallnest/langlab/store/sqlite"
)

type chatOptions struct {
	store       string
	session     string
	system      string
	window      int
	html        string
	redisAddr   string
	sqlitePath  string
	postgresDSN string
	useCases    bool
}

func (a *app) chatCmd() *cobra.Command {
	var o chatOptions
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the selected model, keeping the conversation history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			model, err := a.model(ctx)
			if err != nil {
				return err
			}
			if o.useCases {
				return a.runUseCases(ctx, model)
			}

			history, closeStore, err := openStore(ctx, o)
			if err != nil {
				return err
			}
			defer closeStore()

			system := o.system
			if system == "" {
				system = chat.MayaSystemPrompt(time.Now())
			}
			conv := chat.New(model,
				chat.WithSystem(system),
				chat.WithStore(history),
				chat.WithSessionID(o.session),
				chat.WithWindow(o.window),
			)
			if o.session != "" {
				err := conv.Resume(ctx)
				switch {
				case errors.Is(err, store.ErrSessionNotFound):
					log.Info("starting new session %s", o.session)
				case err != nil:
					return err
				}
			}
			if err := a.chatLoop(ctx, conv); err != nil {
				return err
			}
			return a.chatSummary(conv, o.html)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.store, "store", "memory", "history store: memory, redis, sqlite or postgres")
	f.StringVar(&o.session, "session", "", "session ID to resume; a new one is generated when empty")
	f.StringVar(&o.system, "system", "", "system prompt (defaults to the Maya assistant)")
	f.IntVar(&o.window, "window", 0, "send only the last N turns to the model (0 sends all)")
	f.StringVar(&o.html, "html", "", "write the transcript to this HTML file on exit")
	f.StringVar(&o.redisAddr, "redis-addr", "localhost:6379", "Redis address for --store redis")
	f.StringVar(&o.sqlitePath, "sqlite-path", "langlab.db", "database file for --store sqlite")
	f.StringVar(&o.postgresDSN, "postgres-dsn", os.Getenv("DATABASE_URL"), "connection string for --store postgres")
	f.BoolVar(&o.useCases, "use-cases", false, "run the scripted message use cases instead of chatting")
	return cmd
}

func openStore(ctx context.Context, o chatOptions) (store.HistoryStore, func(), error) {
	switch o.store {
	case "", "memory":
		return memory.New(), func() {}, nil
	case "redis":
		s := redis.New(redis.Options{Addr: o.redisAddr})
		if err := s.Ping(ctx); err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "sqlite":
		s, err := sqlite.New(sqlite.Options{Path: o.sqlitePath})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "postgres":
		s, err := postgres.New(ctx, postgres.Options{ConnString: o.postgresDSN})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", o.store)
	}
}

func (a *app) chatLoop(ctx context.Context, conv *chat.Conversation) error {
	a.printf("Chat with AI Assistant Maya (type 'exit' or 'quit' to end)\n%s\n", dashes(50))
	scanner := bufio.NewScanner(a.in)
	for {
		a.printf("User: ")
		if !scanner.Scan() {
			a.printf("\n")
			return scanner.Err()
		}
		text := scanner.Text()
		if chat.IsExit(text) {
			a.printf("Exiting chat...\n")
			return nil
		}
		answer, err := conv.Send(ctx, text)
		switch {
		case errors.Is(err, chat.ErrEmptyInput):
			a.printf("No input provided. Please type your message or 'exit' to quit.\n")
			continue
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			a.printf("Error: %v\n", err)
			continue
		}
		a.printf("AI: ")
		if err := a.print(answer); err != nil {
			return err
		}
	}
}

func (a *app) chatSummary(conv *chat.Conversation, htmlPath string) error {
	history := conv.History()
	a.printf("\nConversation History:\n%s\n", equals(50))
	for i, t := range history {
		role := "User"
		if t.Role == store.RoleAI {
			role = "AI"
		}
		a.printf("%d. %s: %s\n", i+1, role, t.Text)
	}
	stats := conv.Stats()
	a.printf("\nTotal messages: %d\nConversation turns: %d\n", stats.Messages, stats.Turns)

	if htmlPath == "" {
		return nil
	}
	if err := os.WriteFile(htmlPath, []byte(render.TranscriptHTML(history)), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	a.printf("Transcript written to %s\n", htmlPath)
	return nil
}
