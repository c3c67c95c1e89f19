// Package importer bulk-loads vocabulary from Excel or CSV files,
// creating flashcards with scheduler defaults for one user.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/lexibot/internal/database"
	"github.com/example/lexibot/internal/store"
	"github.com/example/lexibot/pkg/models"
)

// Config defines the import configuration
type Config struct {
	FilePath   string // Path to the Excel or CSV file
	UserID     string // Owner of the created cards
	SheetName  string // Name of the sheet to import
	StartRow   int    // The row to start importing from (1-based index)
}

// DefaultConfig returns the default import configuration
func DefaultConfig(filePath, userID string) Config {
	return Config{
		FilePath:  filePath,
		UserID:    userID,
		SheetName: "Sheet1",
		StartRow:  2, // By default, start from the second row (skip header)
	}
}

// Result holds the result of an import operation
type Result struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// Importer creates flashcards from spreadsheet rows.
type Importer struct {
	cards *database.CardRepository
}

// New creates an importer over the given record store.
func New(s store.Store) *Importer {
	return &Importer{cards: database.NewCardRepository(s)}
}

// ImportWords imports words from an Excel or CSV file. Rows are expected
// as word in the first column, translation in the second.
func (im *Importer) ImportWords(ctx context.Context, config Config) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return im.importFromCSV(ctx, config)
	}
	return im.importFromExcel(ctx, config)
}

// importFromExcel imports words from an Excel file
func (im *Importer) importFromExcel(ctx context.Context, config Config) (*Result, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &Result{}
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		if err := im.processRow(ctx, config.UserID, row, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

// importFromCSV imports words from a CSV file
func (im *Importer) importFromCSV(ctx context.Context, config Config) (*Result, error) {
	f, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	result := &Result{}
	for rowNum := 1; ; rowNum++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		if rowNum < config.StartRow {
			continue
		}
		result.TotalProcessed++
		if err := im.processRow(ctx, config.UserID, row, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

func (im *Importer) processRow(ctx context.Context, userID string, row []string, result *Result) error {
	if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
		result.Skipped++
		return nil
	}
	word := strings.TrimSpace(row[0])
	translation := ""
	if len(row) > 1 {
		translation = strings.TrimSpace(row[1])
	}

	existing, err := im.cards.GetByUserAndWord(ctx, userID, word)
	if err != nil {
		return err
	}
	if existing != nil {
		result.Skipped++
		return nil
	}

	if _, err := im.cards.Create(ctx, models.NewCard(userID, word, translation)); err != nil {
		return err
	}
	result.Created++
	return nil
}
