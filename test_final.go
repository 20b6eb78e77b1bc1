//go:build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/neuroai/neurochat/internal/api"
	"github.com/neuroai/neurochat/internal/logging"
	"github.com/neuroai/neurochat/internal/models"
)

// Live check against a running backend: go run test_final.go [base-url]
func main() {
	baseURL := models.DefaultBaseURL
	if len(os.Args) > 1 {
		baseURL = os.Args[1]
	}
	fmt.Printf("=== Backend smoke test: %s ===\n\n", baseURL)

	logger := logging.NewConsole(os.Stderr, logging.Options{Verbose: true})
	client, err := api.NewClient(
		api.WithBaseURL(baseURL),
		api.WithTimeout(30*time.Second),
		api.WithLogger(logger),
	)
	if err != nil {
		fmt.Printf("Client failed: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	step := func(name string) func(error) {
		start := time.Now()
		fmt.Printf("[%s] %s...\n", start.Format("15:04:05"), name)
		return func(err error) {
			if err != nil {
				fmt.Printf("    FAILED after %v: %v\n", time.Since(start).Round(time.Millisecond), err)
				return
			}
			fmt.Printf("    ok in %v\n", time.Since(start).Round(time.Millisecond))
		}
	}

	done := step("ping")
	ping, err := client.Ping(ctx)
	done(err)
	if err != nil {
		os.Exit(1)
	}
	fmt.Printf("    mode: %s\n", ping.ModelMode)

	done = step("config")
	cfg, err := client.GetConfig(ctx)
	done(err)
	if err == nil {
		fmt.Printf("    use_gemini=%v has_api_key=%v model_available=%v\n", cfg.UseAlternateModel, cfg.HasAPIKey, cfg.ModelAvailable)
	}

	done = step("chat")
	reply, err := client.SendChat(ctx, "Reply with just: OK")
	done(err)
	if err == nil {
		fmt.Printf("    reply: %q\n", reply)
	}

	done = step("memory")
	msgs, err := client.FetchHistory(ctx)
	done(err)
	if err == nil {
		fmt.Printf("    %d messages\n", len(msgs))
	}
}
