package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chatroomgo/internal/client"
	"chatroomgo/internal/domain"
)

var (
	Log, _ = zap.NewDevelopment()

	clientID  string
	serverURL string
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	rootCmd := &cobra.Command{
		Use:           "client",
		Short:         "Terminal chat client: reads lines from stdin and relays room traffic",
		RunE:          runClient,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Flags().StringVarP(&clientID, "client-id", "c", "", "unique handle for this participant (required)")
	rootCmd.Flags().StringVarP(&serverURL, "url", "u", "ws://127.0.0.1:8085/ws", "websocket server URL")
	_ = rootCmd.MarkFlagRequired("client-id")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runClient(cmd *cobra.Command, args []string) error {
	id, err := domain.NewClientID(clientID)
	if err != nil {
		Log.Error("Invalid client id", zap.Error(err))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	c := client.New(serverURL, id, os.Stdin, os.Stdout)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		Log.Error("Client error", zap.Error(err))
		return err
	}
	return nil
}
