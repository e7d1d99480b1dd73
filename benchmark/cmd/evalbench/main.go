package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nvr-ai/go-eval/benchmark"
	"github.com/nvr-ai/go-eval/coco"
)

func main() {
	var (
		scenarioFile = flag.String("scenarios", "", "Path to a scenario set JSON file (default: built-in set)")
		configFile   = flag.String("config", "", "Path to an evaluation protocol file (.json, .yaml)")
		concurrency  = flag.Int("concurrency", 4, "Worker count per evaluation batch")
		tag          = flag.String("tag", "", "Only run scenarios carrying this tag")
		output       = flag.String("output", "", "Write run results to this JSON file")
		baselineFile = flag.String("baseline", "", "Compare against run results from this JSON file")
		threshold    = flag.Float64("threshold", 0.10, "Regression threshold as a throughput fraction")
		verbose      = flag.Bool("verbose", false, "Print recall and precision for every scenario")
	)
	flag.Parse()

	set := benchmark.DefaultScenarioSet()
	if *scenarioFile != "" {
		loaded, err := benchmark.LoadScenarioSet(*scenarioFile)
		if err != nil {
			log.Fatalf("Failed to load scenarios: %v", err)
		}
		set = loaded
	}
	if *tag != "" {
		set.Scenarios = filterByTag(set.Scenarios, *tag)
		if len(set.Scenarios) == 0 {
			log.Fatalf("No scenarios carry tag %q", *tag)
		}
	}

	cfg := coco.DefaultConfig()
	if *configFile != "" {
		loaded, err := coco.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load evaluation config: %v", err)
		}
		cfg = loaded
	}

	suite := benchmark.NewSuite()

	fmt.Printf("Running %d scenarios from %q with concurrency %d\n",
		len(set.Scenarios), set.Name, *concurrency)
	start := time.Now()

	for _, scenario := range set.Scenarios {
		result, err := suite.Run(scenario, cfg, *concurrency)
		if err != nil {
			log.Fatalf("Scenario %s failed: %v", scenario.Name, err)
		}
		fmt.Printf("  %-12s %6d images  %9.1f img/s  p95 %8.1f us  heap %6.1f MB\n",
			result.Scenario, result.Metrics.Images, result.Metrics.ImagesPerSecond,
			result.Metrics.P95LatencyMicros, result.Metrics.PeakHeapMB)
		if *verbose {
			keys := make([]string, 0, len(result.Result))
			for k := range result.Result {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("    %s = %.4f\n", k, result.Result[k])
			}
		}
	}

	fmt.Printf("Completed in %v\n", time.Since(start).Round(time.Millisecond))

	results := suite.Results()

	if *output != "" {
		if err := suite.SaveResults(*output); err != nil {
			log.Fatalf("Failed to save results: %v", err)
		}
		fmt.Printf("Results saved to %s\n", *output)
	}

	if *baselineFile != "" {
		baseline, err := benchmark.LoadResults(*baselineFile)
		if err != nil {
			log.Fatalf("Failed to load baseline: %v", err)
		}

		deltas := benchmark.CompareRuns(baseline, results)
		fmt.Printf("\n=== COMPARISON AGAINST %s ===\n", filepath.Base(*baselineFile))
		for _, d := range deltas {
			fmt.Printf("  %-12s %+.1f%% throughput  %+.1f MB peak heap\n",
				d.Scenario, 100*d.ThroughputChange, d.PeakHeapChangeMB)
		}

		if regressions := benchmark.Regressions(deltas, *threshold); len(regressions) > 0 {
			for _, r := range regressions {
				fmt.Printf("Regression: %s dropped %.1f%% (%.1f -> %.1f img/s)\n",
					r.Scenario, -100*r.ThroughputChange,
					r.BaselineImagesPerSecond, r.CurrentImagesPerSecond)
			}
			os.Exit(1)
		}
		fmt.Println("No regressions above threshold")
	}
}

// filterByTag keeps scenarios carrying the tag.
func filterByTag(scenarios []benchmark.Scenario, tag string) []benchmark.Scenario {
	out := make([]benchmark.Scenario, 0, len(scenarios))
	for _, s := range scenarios {
		for _, t := range s.Tags {
			if t == tag {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "Benchmark tool for detection evaluation throughput.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -tag ci -output results.json\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(
			os.Stderr,
			"  %s -scenarios nightly.json -baseline results.json -threshold 0.05\n",
			filepath.Base(os.Args[0]),
		)
	}
}
