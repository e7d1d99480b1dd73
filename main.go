// Command cocoeval evaluates detection annotations against ground truth and
// prints COCO-style recall and precision.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/nvr-ai/go-eval/coco"
	"github.com/nvr-ai/go-eval/dataset"
)

func main() {
	var (
		annotationsPath string
		configPath      string
		concurrency     int
		format          string
		verbose         bool
	)
	flag.StringVar(&annotationsPath, "annotations", "", "Annotation JSON file or directory (required)")
	flag.StringVar(&configPath, "config", "",
		"Evaluation protocol file (.json, .yaml); default is the standard COCO protocol")
	flag.IntVar(&concurrency, "concurrency", 4, "Images matched in parallel")
	flag.StringVar(&format, "format", "text", "Output format: text or json")
	flag.BoolVar(&verbose, "verbose", false, "Print per-image loading detail to stderr")
	flag.Parse()

	if annotationsPath == "" {
		log.Fatal("Annotation path is required (-annotations)")
	}
	if format != "text" && format != "json" {
		log.Fatalf("Unknown format %q (want text or json)", format)
	}

	cfg := coco.DefaultConfig()
	if configPath != "" {
		loaded, err := coco.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	annotations, err := loadAnnotations(annotationsPath)
	if err != nil {
		log.Fatalf("Failed to load annotations: %v", err)
	}

	if verbose {
		groundTruth, detections := 0, 0
		for _, a := range annotations {
			groundTruth += len(a.GroundTruth)
			detections += len(a.Detections)
			fmt.Fprintf(os.Stderr, "  %s: %d ground truth, %d detections\n",
				a.ImageID, len(a.GroundTruth), len(a.Detections))
		}
		fmt.Fprintf(os.Stderr, "Loaded %d images (%d ground-truth boxes, %d detections)\n",
			len(annotations), groundTruth, detections)
	}

	eval, err := coco.NewEvaluator(cfg)
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	start := time.Now()
	eval.EvaluateBatch(dataset.Pairs(annotations), concurrency)
	result := eval.Result()

	if verbose {
		fmt.Fprintf(os.Stderr, "Evaluated %d images in %v\n",
			eval.Images(), time.Since(start).Round(time.Microsecond))
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
		fmt.Println(string(data))
	case "text":
		printText(result)
	}
}

// loadAnnotations accepts either a single annotation file or a directory of
// them.
func loadAnnotations(path string) ([]*dataset.ImageAnnotations, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return dataset.LoadDir(path)
	}

	single, err := dataset.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return []*dataset.ImageAnnotations{single}, nil
}

// printText writes one "key = value" line per populated bucket. A
// single-bucket protocol prints the bare recall value so shell scripts can
// consume it directly.
func printText(result coco.Result) {
	if scalar, ok := result.Scalar(); ok {
		fmt.Printf("%.4f\n", scalar)
		return
	}

	recalls := result.RecallMap()
	precisions := result.PrecisionMap()
	if len(recalls) == 0 && len(precisions) == 0 {
		fmt.Println("No data: every bucket was empty")
		return
	}
	printSorted(recalls)
	printSorted(precisions)
}

func printSorted(values map[string]float64) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s = %.4f\n", k, values[k])
	}
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "COCO-style recall and precision for detection annotations.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -annotations ./frames -format json\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(
			os.Stderr,
			"  %s -annotations frame-0042.json -config protocol.yaml -verbose\n",
			filepath.Base(os.Args[0]),
		)
	}
}
