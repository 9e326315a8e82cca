package main

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	chat "mentorchat/internal/pkg/chat/application/domain"
	"mentorchat/internal/pkg/chat/client"
)

// chatctl is a terminal client for poking at a running chat service: list
// the directory, browse the roster, open a conversation and talk.
func main() {
	cmd := &cli.Command{
		Name:  "chatctl",
		Usage: "terminal client for the mentorship chat service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Value: "http://localhost:8080/api/v1", Usage: "REST base URL"},
			&cli.StringFlag{Name: "user", Required: true, Usage: "user id to act as"},
			&cli.StringFlag{Name: "name", Value: "", Usage: "display name (typing indicator)"},
			&cli.StringFlag{Name: "role", Value: "mentee", Usage: "mentee, mentor or admin"},
			&cli.BoolFlag{Name: "verbose", Usage: "debug logging"},
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "print the conversation directory, newest activity first",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					c := buildClient(cmd)
					if err := c.Directory.Load(ctx); err != nil {
						return err
					}
					self := cmd.String("user")
					for _, conv := range c.Directory.Snapshot() {
						other, _ := conv.CounterpartOf(self)
						last := "(no messages)"
						if conv.LastMessage != nil {
							last = conv.LastMessage.Content
						}
						fmt.Printf("%s  %-20s  %s\n", conv.ID, other.DisplayName, last)
					}
					return nil
				},
			},
			{
				Name:      "roster",
				Usage:     "list counterparts you can start a conversation with",
				ArgsUsage: "[filter]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					c := buildClient(cmd)
					if err := c.Roster.Refresh(ctx); err != nil {
						return err
					}
					for _, u := range c.Roster.Filter(cmd.Args().First()) {
						fmt.Printf("%s  %s (%s)\n", u.ID, u.DisplayName, u.Role)
					}
					return nil
				},
			},
			{
				Name:      "open",
				Usage:     "open a conversation and chat interactively",
				ArgsUsage: "<conversation-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id := cmd.Args().First()
					if id == "" {
						return fmt.Errorf("conversation id is required")
					}
					return interactive(ctx, cmd, func(ctx context.Context, c *client.Client) error {
						return c.OpenConversation(ctx, id)
					})
				},
			},
			{
				Name:      "start",
				Usage:     "start (or resume) a conversation with a counterpart and chat",
				ArgsUsage: "<user-id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					id := cmd.Args().First()
					if id == "" {
						return fmt.Errorf("counterpart user id is required")
					}
					return interactive(ctx, cmd, func(ctx context.Context, c *client.Client) error {
						_, err := c.StartConversation(ctx, id)
						return err
					})
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildClient(cmd *cli.Command) *client.Client {
	level := zerolog.WarnLevel
	if cmd.Bool("verbose") {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	self := chat.User{
		ID:          cmd.String("user"),
		DisplayName: cmd.String("name"),
		Role:        chat.Role(cmd.String("role")),
	}

	base := cmd.String("server")
	return client.New(client.Config{
		Self:      self,
		Backend:   client.NewRESTBackend(base, self.ID),
		SocketURL: socketURL(base, self.ID),
		Logger:    log,
	})
}

// socketURL derives the websocket endpoint from the REST base URL.
func socketURL(base string, userID string) string {
	ws := strings.Replace(base, "http://", "ws://", 1)
	ws = strings.Replace(ws, "https://", "wss://", 1)
	return strings.TrimRight(ws, "/") + "/chats/ws?user_id=" + url.QueryEscape(userID)
}

// interactive runs the realtime channel, opens a conversation via open, and
// relays stdin lines as messages until EOF.
func interactive(ctx context.Context, cmd *cli.Command, open func(context.Context, *client.Client) error) error {
	c := buildClient(cmd)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = c.Start(ctx) }()

	if err := c.Directory.Load(ctx); err != nil {
		return err
	}
	if err := open(ctx, c); err != nil {
		return err
	}

	seen := make(map[string]bool)
	for _, m := range c.Session.Messages() {
		seen[m.ID] = true
		printMessage(m)
	}

	// Echo inbound traffic and typing state while the user types.
	go watch(ctx, c, seen)

	fmt.Println("-- type a message and press enter; ctrl-d to quit --")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		c.Composer.SetText(scanner.Text())
		if _, err := c.Composer.Submit(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "send failed:", err)
		}
	}
	return scanner.Err()
}

// watch polls the session and presence tracker and prints what changed.
func watch(ctx context.Context, c *client.Client, seen map[string]bool) {
	var lastTyping string

	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for _, m := range c.Session.Messages() {
			if !seen[m.ID] {
				seen[m.ID] = true
				printMessage(m)
			}
		}

		typing := strings.Join(c.Presence.Typing(), ", ")
		if typing != lastTyping {
			lastTyping = typing
			if typing != "" {
				fmt.Printf("  (%s is typing...)\n", typing)
			}
		}
	}
}

func printMessage(m client.Message) {
	marker := ""
	if m.State == client.StatePending {
		marker = " [pending]"
	}
	fmt.Printf("[%s] %s: %s%s\n", m.CreatedAt.Local().Format("15:04"), m.Sender.DisplayName, m.Content, marker)
}
