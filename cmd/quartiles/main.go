// Command quartiles resolves a journal's SJR quartile from the local
// rankings file. Useful for checking the reference data without running
// the catalog service.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"pub-catalog/journals"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <journal title or ISSN>\n", os.Args[0])
		os.Exit(2)
	}
	query := strings.Join(os.Args[1:], " ")

	path := os.Getenv("QUARTILES_FILE")
	if path == "" {
		path = "scimagojr_2023.csv"
	}

	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	index := journals.NewIndex(logging)
	if err := index.Load(path); err != nil {
		log.Fatalf("failed to load rankings from %s: %v", path, err)
	}
	if index.Len() == 0 {
		log.Fatalf("no journal rankings loaded from %s", path)
	}
	log.Printf("Loaded %d journal rankings from %s", index.Len(), path)

	// Digits with optional dash reads as an ISSN, anything else as a title.
	if isISSN(query) {
		if q := index.FindByISSN(query, query); q != "" {
			fmt.Printf("%s: %s\n", query, q)
			return
		}
		log.Fatalf("no journal found for ISSN %s", query)
	}

	matches := index.Search(query, 10)
	if len(matches) == 0 {
		log.Fatalf("no journal found matching %q", query)
	}
	for _, e := range matches {
		fmt.Printf("%s: %s\n", e.Title, e.Quartile)
	}
}

func isISSN(s string) bool {
	s = strings.ReplaceAll(s, "-", "")
	if len(s) != 8 {
		return false
	}
	for i, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		// The check digit may be X.
		if i == 7 && (r == 'X' || r == 'x') {
			continue
		}
		return false
	}
	return true
}
