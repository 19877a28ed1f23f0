// Package analysis runs the release-readiness pipeline: PDF extraction, LLM
// structuring, trend annotation, report authoring and repair, chart rendering,
// and the final judge evaluation.
package analysis

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"rrr-backend/internal/extract"
	"rrr-backend/internal/llm"
	"rrr-backend/internal/metrics"
	"rrr-backend/internal/report"
	obsmetrics "rrr-backend/internal/shared/metrics"
	"rrr-backend/internal/shared/telemetry"
	"rrr-backend/internal/viz"
)

const (
	extractParallelism = 4
	minVersions        = 2
	minCharts          = 5
)

// Result is the full analysis payload returned to API clients and stored in
// the cache.
type Result struct {
	Metrics        metrics.Document    `json:"metrics"`
	Visualizations []string            `json:"visualizations"`
	Report         string              `json:"report"`
	Evaluation     Evaluation          `json:"evaluation"`
	Hyperlinks     []extract.Hyperlink `json:"hyperlinks"`
}

// Service orchestrates one analysis run end to end.
type Service struct {
	llm    llm.Client
	vizDir string
}

// NewService wires the pipeline against an LLM client and a chart output dir.
func NewService(client llm.Client, vizDir string) *Service {
	return &Service{llm: client, vizDir: vizDir}
}

// Run analyzes every PDF in folder and produces the complete result. The
// folder path must already be normalized.
func (s *Service) Run(ctx context.Context, folder string) (result *Result, err error) {
	runID := uuid.NewString()
	started := time.Now()
	obsmetrics.IncAnalysisStarted()
	defer func() {
		if err != nil {
			obsmetrics.IncAnalysisFailed()
			return
		}
		obsmetrics.IncAnalysisCompleted()
		obsmetrics.ObserveAnalysisDurationMs(float64(time.Since(started).Milliseconds()))
	}()

	paths, err := extract.ListPDFs(folder)
	if err != nil {
		return nil, err
	}

	versions := extract.VersionsFromFilenames(paths)
	for len(versions) < minVersions {
		versions = append(versions, fmt.Sprintf("File_%d", len(versions)+1))
	}

	telemetry.Info("analysis.run.start", map[string]any{
		"run_id":   runID,
		"folder":   folder,
		"pdfs":     len(paths),
		"versions": versions,
	})

	tableText, sourceText, hyperlinks, err := s.extractAll(ctx, paths)
	if err != nil {
		return nil, err
	}

	client := newRetryingLLM(s.llm, runID)

	raw, err := client.Complete(ctx, llm.BuildStructurePrompt(tableText, versions))
	if err != nil {
		return nil, fmt.Errorf("%w: structuring call failed: %v", ErrLLMUnavailable, err)
	}
	doc := metrics.Annotate(metrics.Recover(raw, versions))
	if doc.Synthesized {
		telemetry.Warn("analysis.metrics.synthesized", map[string]any{
			"run_id":   runID,
			"versions": versions,
		})
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal metrics document: %w", err)
	}

	// Report authoring and chart rendering are independent of each other.
	var (
		reportMD   string
		chartPaths []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		md, err := s.composeReport(gctx, client, string(docJSON), versions)
		if err != nil {
			return err
		}
		reportMD = md
		return nil
	})
	g.Go(func() error {
		rendered, err := viz.Render(doc, s.vizDir)
		if err != nil {
			return fmt.Errorf("render charts: %w", err)
		}
		chartPaths = rendered
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(chartPaths) < minCharts {
		return nil, fmt.Errorf("%w: rendered %d of %d required", ErrTooFewCharts, len(chartPaths), minCharts)
	}

	evaluation := s.judgeReport(ctx, client, sourceText, reportMD, runID)

	encoded, err := encodeCharts(chartPaths)
	if err != nil {
		return nil, err
	}

	telemetry.Info("analysis.run.done", map[string]any{
		"run_id":      runID,
		"duration_ms": time.Since(started).Milliseconds(),
		"charts":      len(chartPaths),
		"hyperlinks":  len(hyperlinks),
		"score":       evaluation.Score,
	})

	return &Result{
		Metrics:        doc,
		Visualizations: encoded,
		Report:         reportMD,
		Evaluation:     evaluation,
		Hyperlinks:     hyperlinks,
	}, nil
}

// extractAll pulls text, metrics tables, and hyperlinks out of each PDF
// concurrently. Per-file failures are logged and skipped; only a folder with
// no usable tables at all is fatal.
func (s *Service) extractAll(ctx context.Context, paths []string) (string, string, []extract.Hyperlink, error) {
	tables := make([]string, len(paths))
	texts := make([]string, len(paths))
	links := make([][]extract.Hyperlink, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(extractParallelism)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := extract.Text(path)
			if err != nil {
				log.Printf("analysis: skipping %s: %v", filepath.Base(path), err)
				return nil
			}
			texts[i] = text
			table, err := extract.LocateTable(text, extract.StartHeader, extract.EndHeader)
			if err != nil {
				log.Printf("analysis: no metrics table in %s: %v", filepath.Base(path), err)
			} else {
				tables[i] = table
			}
			found, err := extract.Hyperlinks(path)
			if err != nil {
				log.Printf("analysis: hyperlinks unavailable for %s: %v", filepath.Base(path), err)
			} else {
				links[i] = found
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", "", nil, err
	}

	var tableParts, sourceParts []string
	var hyperlinks []extract.Hyperlink
	for i, path := range paths {
		if tables[i] != "" {
			tableParts = append(tableParts, fmt.Sprintf("File: %s\n%s", filepath.Base(path), tables[i]))
		}
		if texts[i] != "" {
			sourceParts = append(sourceParts, fmt.Sprintf("File: %s\n%s", filepath.Base(path), texts[i]))
		}
		hyperlinks = append(hyperlinks, links[i]...)
	}
	if len(tableParts) == 0 {
		return "", "", nil, ErrNoTables
	}
	return strings.Join(tableParts, "\n\n"), strings.Join(sourceParts, "\n\n"), hyperlinks, nil
}

var sectionHeadings = map[string]string{
	llm.SectionOverview:        "## Overview",
	llm.SectionMetricsSummary:  "## Metrics Summary",
	llm.SectionKeyFindings:     "## Key Findings",
	llm.SectionRecommendations: "## Recommendations",
}

// composeReport generates the four report sections sequentially, assembles
// them under the fixed title, repairs the markdown, and verifies every
// required section survived.
func (s *Service) composeReport(ctx context.Context, client llm.Client, metricsJSON string, versions []string) (string, error) {
	var b strings.Builder
	b.WriteString("# Software Metrics Report\n")

	for _, section := range llm.SectionOrder {
		content, err := client.Complete(ctx, llm.BuildSectionPrompt(section, metricsJSON, versions))
		if err != nil {
			return "", fmt.Errorf("%w: %s section failed: %v", ErrLLMUnavailable, section, err)
		}
		content = strings.TrimSpace(content)
		heading := sectionHeadings[section]
		if !strings.HasPrefix(content, heading) {
			content = heading + "\n\n" + content
		}
		b.WriteString("\n" + content + "\n\n---\n")
	}

	repaired := report.Repair(b.String())
	if err := report.CheckSections(repaired); err != nil {
		return "", err
	}
	return repaired, nil
}

// judgeReport asks the model to score the finished report against the source
// text. Judge failures degrade to the default evaluation rather than failing
// a run that already produced a report.
func (s *Service) judgeReport(ctx context.Context, client llm.Client, sourceText, reportMD, runID string) Evaluation {
	raw, err := client.Complete(ctx, llm.BuildJudgePrompt(sourceText, reportMD))
	if err != nil {
		telemetry.Warn("analysis.judge.failed", map[string]any{
			"run_id": runID,
			"error":  err.Error(),
		})
		return Evaluation{Score: defaultScore, Text: defaultVerdict}
	}
	return parseEvaluation(raw)
}

func encodeCharts(paths []string) ([]string, error) {
	encoded := make([]string, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read chart %s: %w", path, err)
		}
		encoded = append(encoded, base64.StdEncoding.EncodeToString(data))
	}
	return encoded, nil
}
