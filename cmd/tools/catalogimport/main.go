// Command catalogimport loads a scraped catalog JSON file into the SQLite
// knowledge database used by the API server.
//
// Usage:
//
//	catalogimport -db partselect.db -in catalog.json
//
// The input file holds three optional arrays: parts, repairs, blogs.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/partdesk/backend/internal/model/part"
	"github.com/partdesk/backend/internal/service/knowledge"
)

type catalogFile struct {
	Parts   []part.Record `json:"parts"`
	Repairs []part.Repair `json:"repairs"`
	Blogs   []part.Blog   `json:"blogs"`
}

func main() {
	dbPath := flag.String("db", "partselect.db", "path to the catalog database")
	inPath := flag.String("in", "catalog.json", "path to the catalog JSON file")
	flag.Parse()

	raw, err := os.ReadFile(*inPath)
	if err != nil {
		log.Fatalf("failed to read catalog file: %v", err)
	}

	var catalog catalogFile
	if err := json.Unmarshal(raw, &catalog); err != nil {
		log.Fatalf("failed to parse catalog file: %v", err)
	}

	store, err := knowledge.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open catalog database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	for _, record := range catalog.Parts {
		if err := store.InsertPart(ctx, record); err != nil {
			log.Fatalf("failed to import part: %v", err)
		}
	}
	for _, repair := range catalog.Repairs {
		if err := store.InsertRepair(ctx, repair); err != nil {
			log.Fatalf("failed to import repair: %v", err)
		}
	}
	for _, blog := range catalog.Blogs {
		if err := store.InsertBlog(ctx, blog); err != nil {
			log.Fatalf("failed to import blog: %v", err)
		}
	}

	log.Printf("imported %d parts, %d repairs, %d blogs into %s",
		len(catalog.Parts), len(catalog.Repairs), len(catalog.Blogs), *dbPath)
}
