package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/sahilchouksey/mentor-hub-api/console"
	"github.com/sahilchouksey/mentor-hub-api/utils"
	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "mentor-hub-console",
		Usage: "Terminal admin console for the mentor hub API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Usage: "Base URL of the API",
				Value: "http://localhost:5000",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "File the console logs to while the UI owns the terminal",
				Value: "console.log",
			},
		},
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logFile, err := os.OpenFile(cmd.String("log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	log.SetDefault(utils.NewLogger(logFile, "info", false))

	client := console.NewClient(cmd.String("url"), &http.Client{Timeout: 15 * time.Second})
	reused := os.Getenv("MENTOR_HUB_TOKEN")
	if reused != "" {
		client.SetToken(reused)
	}

	p := tea.NewProgram(console.NewModel(ctx, client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running console: %w", err)
	}

	// a token passed in from outside stays valid
	if reused == "" && client.Token() != "" {
		logoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Logout(logoutCtx); err != nil {
			log.Warn("logout failed", "err", err)
		}
	}
	return nil
}
