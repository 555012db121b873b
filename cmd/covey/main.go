package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/covey-ai/covey/agent"
	"github.com/covey-ai/covey/internal/profile"
	"github.com/covey-ai/covey/internal/version"
	"github.com/covey-ai/covey/metrics"
	"github.com/covey-ai/covey/oracle"
	"github.com/covey-ai/covey/orchestrator"
	"github.com/covey-ai/covey/server"
)

var (
	rootCmd = &cobra.Command{
		Use:   "covey",
		Short: `An LLM-backed agent pool. Create specialist agents, give them tasks, and let them learn from what they complete.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Only load .env for direct binary execution (not when running as systemd service)
			// Systemd service uses /etc/covey/config for environment variables
			if !isRunningAsSystemdService() {
				// Try to load .env file from current directory (ignore error if file doesn't exist)
				_ = godotenv.Load()
			}
			return nil
		},
		Run: func(_ *cobra.Command, _ []string) {
			instanceProfile := &profile.Profile{
				Mode:    viper.GetString("mode"),
				Addr:    viper.GetString("addr"),
				Port:    viper.GetInt("port"),
				Version: version.String(),
			}
			instanceProfile.FromEnv()
			if err := instanceProfile.Validate(); err != nil {
				panic(err)
			}

			ctx, cancel := context.WithCancel(context.Background())

			exporter := metrics.NewExporter(metrics.DefaultConfig())
			oracleService, err := oracle.NewService(&oracle.Config{
				Provider: instanceProfile.OracleProvider,
				Model:    instanceProfile.OracleModel,
				APIKey:   instanceProfile.OracleAPIKey,
				BaseURL:  instanceProfile.OracleBaseURL,
				Timeout:  instanceProfile.OracleTimeout,
			}, oracle.WithRecorder(exporter))
			if err != nil {
				cancel()
				slog.Error("failed to create oracle client", "error", err)
				return
			}

			registry := agent.NewRegistry(oracleService, agent.WithRecorder(exporter))
			orchestration := orchestrator.New(oracleService, registry,
				orchestrator.WithMemoryWindow(instanceProfile.MemoryWindow),
				orchestrator.WithMetrics(exporter),
			)

			s, err := server.NewServer(ctx, instanceProfile, registry, orchestration, exporter)
			if err != nil {
				cancel()
				slog.Error("failed to create server", "error", err)
				return
			}

			c := make(chan os.Signal, 1)
			// Trigger graceful shutdown on SIGINT or SIGTERM.
			// The default signal sent by the `kill` command is SIGTERM,
			// which is taken as the graceful shutdown signal for many systems, eg., Kubernetes, Gunicorn.
			signal.Notify(c, terminationSignals...)

			if err := s.Start(ctx); err != nil {
				if !errors.Is(err, http.ErrServerClosed) {
					slog.Error("failed to start server", "error", err)
					cancel()
				}
			}

			printGreetings(instanceProfile)

			go func() {
				<-c
				s.Shutdown(ctx)
				cancel()
			}()

			// Wait for CTRL-C.
			<-ctx.Done()
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("port", 28090)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 28090, "port of server")

	if err := viper.BindPFlag("mode", rootCmd.PersistentFlags().Lookup("mode")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("addr", rootCmd.PersistentFlags().Lookup("addr")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag("port", rootCmd.PersistentFlags().Lookup("port")); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("covey")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(instanceProfile *profile.Profile) {
	fmt.Printf("Covey %s started successfully!\n", instanceProfile.Version)

	if instanceProfile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
	}

	fmt.Printf("Oracle provider: %s\n", instanceProfile.OracleProvider)
	fmt.Printf("Oracle model: %s\n", instanceProfile.OracleModel)
	fmt.Printf("Mode: %s\n", instanceProfile.Mode)

	if len(instanceProfile.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", instanceProfile.Port)
		fmt.Printf("Access the API at: http://localhost:%d/api/v1\n", instanceProfile.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", instanceProfile.Addr, instanceProfile.Port)
		fmt.Printf("Access the API at: http://%s:%d/api/v1\n", instanceProfile.Addr, instanceProfile.Port)
	}

	fmt.Println()
	fmt.Printf("Source code: %s\n", "https://github.com/covey-ai/covey")
	fmt.Println("\nHappy orchestrating!")
}

// isRunningAsSystemdService detects if the process is running under systemd
func isRunningAsSystemdService() bool {
	// Check if invoked by systemd (environment variables set by systemd)
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
