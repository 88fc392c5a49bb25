// lextest keeps token/table dumps of sample programs under regression.
// Each source has a golden dump (.<name>.json) next to it or under -dir.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/xplshn/clex/pkg/config"
	"github.com/xplshn/clex/pkg/lexer"
	"github.com/xplshn/clex/pkg/report"
)

type FileTestResult struct {
	File     string        `json:"file"`
	Status   string        `json:"status"` // PASS, FAIL, SKIP, ERROR
	Message  string        `json:"message,omitempty"`
	Diff     string        `json:"diff,omitempty"`
	Duration time.Duration `json:"duration"`
}

var (
	generateGolden = flag.String("generate-golden", "", "Generate a golden .json file for a given source file.")
	testFiles      = flag.String("test-files", "testdata/*.mc", "Glob pattern(s) for files to test (space-separated).")
	skipFiles      = flag.String("skip-files", "", "Files to skip (space-separated).")
	outputJSON     = flag.String("output", ".test_results.json", "Output file for the JSON test report.")
	jsonDir        = flag.String("dir", "", "Directory to store/read golden JSON files (defaults to source file dir).")
	profile        = flag.String("profile", "compat", "Lexer profile used for every file (compat, modern).")
	jobs           = flag.Int("j", 4, "Number of parallel test jobs.")
	verbose        = flag.Bool("v", false, "Enable verbose logging.")
)

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cCyan   = "\x1b[96m"
	cBold   = "\x1b[1m"
	cNone   = "\x1b[0m"
)

func main() {
	flag.Parse()
	log.SetFlags(0)
	setupInterruptHandler()

	if *jobs < 1 {
		*jobs = 1
	}

	if *generateGolden != "" {
		handleGenerateGolden(*generateGolden)
		return
	}
	handleRunTestSuite()
}

// setupInterruptHandler is used to exit cleanly on CTRL+C
func setupInterruptHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		fmt.Printf("\n%s[INTERRUPT]%s Test run cancelled.\n", cYellow, cNone)
		os.Exit(1)
	}()
}

func getJSONPath(sourceFile string) string {
	jsonFileName := "." + filepath.Base(sourceFile) + ".json"
	if *jsonDir != "" {
		return filepath.Join(*jsonDir, jsonFileName)
	}
	return filepath.Join(filepath.Dir(sourceFile), jsonFileName)
}

func newConfig() *config.Config {
	cfg := config.NewConfig()
	if err := cfg.ApplyProfile(*profile); err != nil {
		log.Fatalf("%s[ERROR]%s %v\n", cRed, cNone, err)
	}
	return cfg
}

// lexFile tokenizes one source with a fresh Lexer and captures the result.
func lexFile(path string) (report.Dump, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return report.Dump{}, err
	}
	cfg := newConfig()
	src := string(content)
	l := lexer.NewLexer(cfg, nil)
	toks, errs := l.Tokenize(src)
	d := report.NewDump(src, toks, errs, l)
	d.File, d.Profile = filepath.Base(path), cfg.ProfileName
	return d, nil
}

func handleGenerateGolden(sourceFile string) {
	log.Printf("Generating golden file for %s...\n", sourceFile)

	goldenFileName, err := writeGolden(sourceFile)
	if err != nil {
		log.Fatalf("%s[ERROR]%s %v\n", cRed, cNone, err)
	}
	log.Printf("%s[SUCCESS]%s Golden file created at %s\n", cGreen, cNone, goldenFileName)
}

// writeGolden tokenizes sourceFile and stores its dump as the golden file.
// A failing Close is reported like any other write error.
func writeGolden(sourceFile string) (string, error) {
	d, err := lexFile(sourceFile)
	if err != nil {
		return "", fmt.Errorf("could not tokenize %s: %w", sourceFile, err)
	}

	if *jsonDir != "" {
		if err := os.MkdirAll(*jsonDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", *jsonDir, err)
		}
	}

	goldenFileName := getJSONPath(sourceFile)
	f, err := os.Create(goldenFileName)
	if err != nil {
		return "", fmt.Errorf("failed to write golden file %s: %w", goldenFileName, err)
	}
	if err := report.WriteJSON(f, d); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to marshal golden data to JSON: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write golden file %s: %w", goldenFileName, err)
	}
	return goldenFileName, nil
}

// hashFile computes the xxhash of a file's content
func hashFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(content)), nil
}

func handleRunTestSuite() {
	files, err := expandGlobPatterns(*testFiles)
	if err != nil {
		log.Fatalf("%s[ERROR]%s Invalid glob pattern(s): %v\n", cRed, cNone, err)
	}
	if len(files) == 0 {
		log.Println("No test files found matching the pattern(s).")
		return
	}

	skipList := make(map[string]bool)
	for _, f := range strings.Fields(*skipFiles) {
		skipList[f] = true
	}

	tasks := make(chan string, len(files))
	resultsChan := make(chan *FileTestResult, len(files))
	var wg sync.WaitGroup

	for i := 0; i < *jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range tasks {
				start := time.Now()
				result := testFile(file)
				result.Duration = time.Since(start)
				resultsChan <- result
			}
		}()
	}

	// Feed the tasks channel, skipping files with identical content
	seenHashes := make(map[string]string)
	for _, file := range files {
		if skipList[file] {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: "Explicitly skipped"}
			continue
		}
		fileHash, err := hashFile(file)
		if err != nil {
			resultsChan <- &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to read file for hashing: %v", err)}
			continue
		}
		if originalFile, seen := seenHashes[fileHash]; seen {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: fmt.Sprintf("Content is identical to %s", originalFile)}
			continue
		}
		seenHashes[fileHash] = file
		tasks <- file
	}
	close(tasks)

	wg.Wait()
	close(resultsChan)

	var allResults []*FileTestResult
	for result := range resultsChan {
		allResults = append(allResults, result)
	}
	sort.Slice(allResults, func(i, j int) bool {
		return allResults[i].File < allResults[j].File
	})

	printSummary(allResults)
	writeJSONReport(allResults)

	for _, r := range allResults {
		if r.Status == "FAIL" || r.Status == "ERROR" {
			os.Exit(1)
		}
	}
}

func testFile(file string) *FileTestResult {
	goldenFile := getJSONPath(file)
	goldenData, err := os.ReadFile(goldenFile)
	if os.IsNotExist(err) {
		return &FileTestResult{File: file, Status: "SKIP", Message: "Cannot test without a corresponding .json golden file"}
	}
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Could not read golden file %s: %v", goldenFile, err)}
	}

	var golden report.Dump
	if err := json.Unmarshal(goldenData, &golden); err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Could not parse golden file %s: %v", goldenFile, err)}
	}

	got, err := lexFile(file)
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Could not tokenize: %v", err)}
	}
	if *verbose {
		log.Printf("[%s] %d tokens, %d errors", file, len(got.Tokens), len(got.Errors))
	}

	return compareDumps(file, &golden, &got)
}

func compareDumps(file string, golden, got *report.Dump) *FileTestResult {
	if golden.SourceHash != got.SourceHash {
		return &FileTestResult{
			File:    file,
			Status:  "FAIL",
			Message: fmt.Sprintf("Golden file is stale (source hash %s, golden %s); regenerate it with -generate-golden", got.SourceHash, golden.SourceHash),
		}
	}
	if golden.Profile != "" && golden.Profile != got.Profile {
		return &FileTestResult{File: file, Status: "SKIP", Message: fmt.Sprintf("Golden file was generated with profile '%s'", golden.Profile)}
	}

	if diff := cmp.Diff(golden, got, cmpopts.IgnoreFields(report.Dump{}, "File"), cmpopts.EquateEmpty()); diff != "" {
		return &FileTestResult{File: file, Status: "FAIL", Message: "Token stream or tables mismatch", Diff: diff}
	}
	return &FileTestResult{File: file, Status: "PASS", Message: "Tokens and tables match"}
}

func expandGlobPatterns(patterns string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range strings.Fields(patterns) {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

func printSummary(results []*FileTestResult) {
	var passed, failed, skipped, errored int
	fmt.Println()
	for _, r := range results {
		var color string
		switch r.Status {
		case "PASS":
			passed++
			color = cGreen
		case "FAIL":
			failed++
			color = cRed
		case "SKIP":
			skipped++
			color = cYellow
		default:
			errored++
			color = cRed
		}
		if r.Status == "PASS" && !*verbose {
			continue
		}
		fmt.Printf("%s[%s]%s %s%s%s: %s\n", color, r.Status, cNone, cBold, r.File, cNone, r.Message)
		if r.Diff != "" {
			fmt.Printf("%s%s%s\n", cCyan, r.Diff, cNone)
		}
	}
	fmt.Printf("\n%sSummary:%s %s%d passed%s, %s%d failed%s, %s%d skipped%s, %d errors (%d total)\n",
		cBold, cNone, cGreen, passed, cNone, cRed, failed, cNone, cYellow, skipped, cNone, errored, len(results))
}

func writeJSONReport(results []*FileTestResult) {
	resultsMap := make(map[string]*FileTestResult, len(results))
	for _, r := range results {
		resultsMap[r.File] = r
	}

	outputFile := *outputJSON
	if *jsonDir != "" {
		outputFile = filepath.Join(*jsonDir, *outputJSON)
	}
	f, err := os.Create(outputFile)
	if err != nil {
		log.Printf("%s[WARN]%s Could not write test report %s: %v\n", cYellow, cNone, outputFile, err)
		return
	}
	if err := report.WriteJSON(f, resultsMap); err != nil {
		log.Printf("%s[WARN]%s Could not encode test report: %v\n", cYellow, cNone, err)
	}
	if err := f.Close(); err != nil {
		log.Printf("%s[WARN]%s Could not write test report %s: %v\n", cYellow, cNone, outputFile, err)
	}
}
