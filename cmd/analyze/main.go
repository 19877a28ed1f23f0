package main

// Run the analysis pipeline once against a folder of release readiness PDFs
// and print the markdown report:
//   go run ./cmd/analyze /path/to/reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"rrr-backend/internal/analysis"
	"rrr-backend/internal/extract"
	"rrr-backend/internal/llm/azure"
	"rrr-backend/internal/shared/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: analyze <folder>")
		os.Exit(2)
	}
	folder := extract.NormalizeFolderPath(os.Args[1])

	cfg := config.Load()
	client, err := azure.NewClient(cfg.AzureEndpoint, cfg.LLMModel, cfg.AzureAPIVersion, cfg.AzureAPIKey)
	if err != nil {
		log.Fatalf("configure llm client: %v", err)
	}

	if err := os.MkdirAll(cfg.VizDir, 0o755); err != nil {
		log.Fatalf("create visualization dir: %v", err)
	}

	svc := analysis.NewService(client, cfg.VizDir)
	result, err := svc.Run(context.Background(), folder)
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	fmt.Println(result.Report)
	fmt.Fprintf(os.Stderr, "score: %d\ncharts: %d\nhyperlinks: %d\n",
		result.Evaluation.Score, len(result.Visualizations), len(result.Hyperlinks))

	if path := os.Getenv("ANALYZE_JSON_OUT"); path != "" {
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("encode result: %v", err)
		}
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
	}
}
