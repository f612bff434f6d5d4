package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bcfcore/promion/internal/api"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the project registry API server",
	Long: `Start the HTTP API server exposing the project registry.

The server provides:
- RESTful endpoints for listing and querying registered projects
- Flow cell lookup across projects
- A scan endpoint for registering projects on the server's filesystem
- CORS support for web applications`,
	Example: `  promion server
  promion server --port 3000
  promion server --host 0.0.0.0 --enable-cors`,
	RunE: runServer,
}

var (
	serverPort       int
	serverHost       string
	serverDBPath     string
	serverEnableCORS bool
)

func init() {
	serverCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Port to listen on (default: from config)")
	serverCmd.Flags().StringVar(&serverHost, "host", "", "Host to bind to (default: from config)")
	serverCmd.Flags().StringVar(&serverDBPath, "db", "", "Registry database path (default: from config)")
	serverCmd.Flags().BoolVar(&serverEnableCORS, "enable-cors", true, "Enable CORS for web access")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	host := serverHost
	if host == "" {
		host = cfg.Server.Host
	}
	port := serverPort
	if port == 0 {
		port = cfg.Server.Port
	}
	registryPath := serverDBPath
	if registryPath == "" {
		registryPath = cfg.Registry.Path
	}

	server, err := api.NewServer(&api.Config{
		Host:         host,
		Port:         port,
		RegistryPath: registryPath,
		EnableCORS:   serverEnableCORS,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		printInfo("Registry: %s", registryPath)
		printSuccess("Server ready at http://%s:%d", host, port)
		if err := server.Start(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case <-sigChan:
		printInfo("\nShutting down server...")
	case err := <-serverErr:
		log.Printf("Server error: %v", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	printSuccess("Server stopped gracefully")
	return nil
}
