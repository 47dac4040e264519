// Command benchmark scores the engine against a file of labelled questions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"chatsearch/config"
	"chatsearch/internal/adapter/store"
	"chatsearch/internal/observability"
	"chatsearch/internal/usecase"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding .chatsearch/catalog.db")
	casesPath := flag.String("cases", "", "YAML file of labelled questions")
	topK := flag.Int("k", 5, "Number of results scored per question")
	flag.Parse()

	if *casesPath == "" {
		fmt.Println("Usage: go run ./cmd/benchmark -dir ./shop -cases cases.yaml")
		fmt.Println("\nCases file:")
		fmt.Println("  - query: harga iphone")
		fmt.Println("    session: a            # optional, shared sessions run in order")
		fmt.Println("    relevant: [iPhone 15 Pro]")
		fmt.Println("    intent: sales_harga   # optional")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fail("Error loading config: %v", err)
	}

	cases, err := loadCases(*casesPath)
	if err != nil {
		fail("Error loading cases: %v", err)
	}

	st, err := store.NewBoltStore(config.CatalogDBPath(*dir))
	if err != nil {
		fail("Error opening catalog: %v", err)
	}
	defer st.Close()

	engine, err := usecase.NewEngine(cfg, usecase.WithLogger(observability.NopLogger()))
	if err != nil {
		fail("Error creating engine: %v", err)
	}
	n, err := usecase.NewIndexUseCase(st, nil).LoadInto(engine)
	if err != nil {
		fail("Error loading catalog: %v", err)
	}

	report, err := engine.Evaluate(context.Background(), cases, *topK)
	if err != nil {
		fail("Evaluation error: %v", err)
	}

	fmt.Println("SEARCH QUALITY BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Catalog items: %d\n", n)
	fmt.Printf("Questions:     %d (top %d scored)\n\n", len(cases), *topK)

	for i, o := range report.Outcomes {
		mark := "MISS"
		if o.ReciprocalRank == 1 {
			mark = "HIT "
		} else if o.ReciprocalRank > 0 {
			mark = "LOW "
		}
		fmt.Printf("%2d. [%s] %q -> %s\n", i+1, mark, o.Case.Query, o.Intent)
		if len(o.Retrieved) > 0 {
			fmt.Printf("    %s\n", strings.Join(o.Retrieved, ", "))
		}
	}

	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS:\n")
	fmt.Printf("  Precision@%d: %.3f\n", *topK, report.MeanPrecision)
	fmt.Printf("  Recall@%d:    %.3f\n", *topK, report.MeanRecall)
	fmt.Printf("  MRR:          %.3f\n", report.MRR)
	fmt.Printf("  NDCG:         %.3f\n", report.MeanNDCG)
	if report.IntentCases > 0 {
		fmt.Printf("  Intent:       %.3f (%d labelled)\n", report.IntentAccuracy, report.IntentCases)
	}

	switch {
	case report.MRR > 0.8:
		fmt.Println("  Status: GOOD - the expected item is usually ranked first")
	case report.MRR > 0.5:
		fmt.Println("  Status: OK - expected items are found but not always on top")
	default:
		fmt.Println("  Status: POOR - check synonyms, phonetic table and min score")
	}
}

func loadCases(path string) ([]usecase.EvalCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cases []usecase.EvalCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cases, nil
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
