package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kayz/osprey/internal/webui"
)

var webPort int

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Run the osprey Web UI server",
	RunE:  runWeb,
}

func init() {
	rootCmd.AddCommand(webCmd)
	webCmd.Flags().IntVar(&webPort, "port", 0, "Web UI listen port (default from config)")
}

func runWeb(cmd *cobra.Command, args []string) error {
	dispatcher, cfg, err := buildDispatcher()
	if err != nil {
		return err
	}

	port := webPort
	if port == 0 {
		port = cfg.Web.Port
	}

	server := webui.NewServer(dispatcher)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("Web UI listening on http://127.0.0.1:%d", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Web UI server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}
