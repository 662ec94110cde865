package ingestion

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document is one source unit reduced to the chunker's input shapes:
// table rows for CSV files, page texts for everything else.
type Document struct {
	Name  string
	Rows  [][]string
	Pages []string
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// LoadCSV reads a row-oriented file. The header row is dropped; missing
// trailing fields become empty strings.
func LoadCSV(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Document{}, fmt.Errorf("failed to parse csv file: %w", err)
	}

	if len(records) > 0 {
		records = records[1:]
	}

	return Document{
		Name: filepath.Base(path),
		Rows: records,
	}, nil
}

// LoadHTML reduces a scraped web or Wikipedia page to a single page of
// plain text.
func LoadHTML(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to open html file: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return Document{}, fmt.Errorf("failed to parse html file: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	text := doc.Find("body").Text()
	text = strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))

	return Document{
		Name:  filepath.Base(path),
		Pages: []string{text},
	}, nil
}

// LoadText reads a pre-paginated text file; pages are separated by form
// feeds, matching how upstream PDF extraction emits them.
func LoadText(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read text file: %w", err)
	}

	var pages []string
	for _, page := range strings.Split(string(data), "\f") {
		if strings.TrimSpace(page) != "" {
			pages = append(pages, page)
		}
	}

	return Document{
		Name:  filepath.Base(path),
		Pages: pages,
	}, nil
}

// DiscoverDocuments loads every supported file in dir, in name order.
func DiscoverDocuments(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var docs []Document
	for _, name := range names {
		path := filepath.Join(dir, name)

		var doc Document
		switch strings.ToLower(filepath.Ext(name)) {
		case ".csv":
			doc, err = LoadCSV(path)
		case ".html", ".htm":
			doc, err = LoadHTML(path)
		case ".txt":
			doc, err = LoadText(path)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}
