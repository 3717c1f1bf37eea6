// Package main provides a generator that extracts CLI, configuration and rule
// metadata from csmstyle source code and generates markdown documentation.
//
// Usage:
//
//	go run ./scripts/gendocs -gen=cli -outdir=docs/cli
//	go run ./scripts/gendocs -gen=config -outdir=docs/concepts
//	go run ./scripts/gendocs -gen=rules -outdir=docs/rules
//	go run ./scripts/gendocs -gen=all
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

var (
	genFlag    = flag.String("gen", "all", "what to generate: cli, config, rules, all")
	outDirFlag = flag.String("outdir", "", "output directory (defaults based on gen type)")
)

// generators maps each -gen value to its generator and default output directory.
var generators = map[string]struct {
	run        func(outDir string) error
	defaultDir string
}{
	"cli":    {generateCLIDocs, filepath.Join("docs", "cli")},
	"config": {generateConfigDocs, filepath.Join("docs", "concepts")},
	"rules":  {generateRuleDocs, filepath.Join("docs", "rules")},
}

func main() {
	flag.Parse()

	projectRoot, err := findProjectRoot()
	if err != nil {
		log.Fatalf("failed to find project root: %v", err)
	}
	log.Printf("Project root: %s", projectRoot)

	if err := generate(*genFlag, *outDirFlag, projectRoot); err != nil {
		log.Fatal(err)
	}

	log.Println("Done!")
}

// generate runs the generator named by gen, or every generator for "all".
func generate(gen, outDir, projectRoot string) error {
	if gen == "all" {
		for _, name := range []string{"cli", "config", "rules"} {
			if err := generate(name, "", projectRoot); err != nil {
				return err
			}
		}
		return nil
	}

	g, ok := generators[gen]
	if !ok {
		return fmt.Errorf("unknown -gen value: %s (use: cli, config, rules, all)", gen)
	}
	if outDir == "" {
		outDir = filepath.Join(projectRoot, g.defaultDir)
	}
	if err := g.run(outDir); err != nil {
		return fmt.Errorf("failed to generate %s docs: %w", gen, err)
	}
	return nil
}

// findProjectRoot walks up from current directory to find go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
