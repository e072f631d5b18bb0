package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/nomination-intake/cmd/mainconfig"
	"github.com/wolfman30/nomination-intake/internal/app/bootstrap"
	appconfig "github.com/wolfman30/nomination-intake/internal/config"
	"github.com/wolfman30/nomination-intake/internal/nomination"
	"github.com/wolfman30/nomination-intake/internal/notify"
	"github.com/wolfman30/nomination-intake/pkg/logging"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	business := flag.String("business", "Rosa's Tortilleria", "business name")
	reason := flag.String("reason", "Rosa has hand-pressed tortillas at 4am every day for thirty years and knows every regular by name.", "why it was nominated")
	showBlocks := flag.Bool("blocks", false, "print the formatted notification payload")
	flag.Parse()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}
	generator, closeGenerator, err := bootstrap.BuildGenerator(ctx, cfg, awsCfg, logger)
	if err != nil {
		log.Fatalf("build generator: %v", err)
	}
	defer closeGenerator()

	if !generator.Enabled() {
		fmt.Printf("Insights provider %q has no credentials; set GEMINI_API_KEY or BEDROCK_MODEL_ID\n", cfg.InsightsProvider)
		os.Exit(1)
	}

	sub, err := nomination.Parse(map[string]any{
		"nominatorName":  "Test Nominator",
		"nominatorEmail": "test@example.com",
		"businessName":   *business,
		"reason":         *reason,
	})
	if err != nil {
		log.Fatalf("invalid submission: %v", err)
	}

	fmt.Printf("Generating insights with %s...\n", cfg.InsightsProvider)
	start := time.Now()
	in, status := generator.GenerateWithStatus(ctx, sub)
	fmt.Printf("Status: %s (%v)\n", status, time.Since(start).Round(time.Millisecond))
	if in == nil {
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(in, "", "  ")
	fmt.Println(string(out))

	if *showBlocks {
		payload, _ := json.MarshalIndent(notify.FormatNomination(sub, in), "", "  ")
		fmt.Println(string(payload))
	}
}
