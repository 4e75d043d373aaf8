package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/sipschool/internal/database"
	"github.com/example/sipschool/pkg/models"
)

// ImportConfig defines the import configuration. Curators maintain the
// concept curriculum in a spreadsheet with one row per concept:
// name, category, description, relation type, related concept name, weight
// for the question mapping sheet.
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	NameColumn        string // Column with the concept name
	CategoryColumn    string // Column with the concept category
	DescriptionColumn string // Column with the description
	RelationColumn    string // Column with the relationship type (optional)
	RelatedColumn     string // Column with the related concept name (optional)
	SheetName         string // Name of the sheet to import
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		NameColumn:        "A",
		CategoryColumn:    "B",
		DescriptionColumn: "C",
		RelationColumn:    "D",
		RelatedColumn:     "E",
		SheetName:         "Sheet1",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed   int
	ConceptsCreated  int
	RelationsCreated int
	Skipped          int
	Errors           []string
}

// ImportConcepts imports concepts and their relationships from an Excel or
// CSV file.
func ImportConcepts(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return importFromCSV(ctx, config)
	}
	return importFromExcel(ctx, config)
}

func importFromExcel(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	repo := database.NewConceptRepository()
	result := &ImportResult{Errors: make([]string, 0)}

	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		if err := processRow(ctx, row, config, repo, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	return result, nil
}

func importFromCSV(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	repo := database.NewConceptRepository()
	result := &ImportResult{Errors: make([]string, 0)}

	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}

		rowNum++
		if rowNum < config.StartRow {
			continue
		}

		result.TotalProcessed++
		if err := processRow(ctx, row, config, repo, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	return result, nil
}

func processRow(ctx context.Context, row []string, config ImportConfig, repo *database.ConceptRepository, result *ImportResult) error {
	name := cell(row, config.NameColumn)
	category := cell(row, config.CategoryColumn)
	description := cell(row, config.DescriptionColumn)
	relationType := strings.ToLower(cell(row, config.RelationColumn))
	relatedName := cell(row, config.RelatedColumn)

	if name == "" {
		result.Skipped++
		return nil
	}
	if category == "" {
		return fmt.Errorf("concept %q has no category", name)
	}

	existing, err := repo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	concept, err := repo.GetOrCreate(ctx, name, category, description)
	if err != nil {
		return err
	}
	if existing == nil {
		result.ConceptsCreated++
	}

	if relationType == "" || relatedName == "" {
		return nil
	}
	switch relationType {
	case models.RelationPrerequisite, models.RelationRelated, models.RelationSubtopic:
	default:
		return fmt.Errorf("unknown relationship type %q", relationType)
	}

	related, err := repo.GetByName(ctx, relatedName)
	if err != nil {
		return err
	}
	if related == nil {
		return fmt.Errorf("related concept %q not found; list it before the concepts that depend on it", relatedName)
	}

	rel := &models.ConceptRelation{
		ConceptID:        concept.ID,
		RelatedConceptID: related.ID,
		RelationshipType: relationType,
		Strength:         1.0,
	}
	if err := repo.CreateRelation(ctx, rel); err != nil {
		return err
	}
	result.RelationsCreated++

	return nil
}

// WeightConfig configures the question-to-concept weight import: one row per
// mapping with the question ID, the concept name, and an optional weight.
type WeightConfig struct {
	FilePath       string
	QuestionColumn string
	ConceptColumn  string
	WeightColumn   string
	SheetName      string
	StartRow       int
}

// DefaultWeightConfig returns the default weight import configuration
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{
		QuestionColumn: "A",
		ConceptColumn:  "B",
		WeightColumn:   "C",
		SheetName:      "Sheet1",
		StartRow:       2,
	}
}

// ImportQuestionWeights imports question-to-concept weights from an Excel
// file.
func ImportQuestionWeights(ctx context.Context, config WeightConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	repo := database.NewConceptRepository()
	result := &ImportResult{Errors: make([]string, 0)}

	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		questionRaw := cell(row, config.QuestionColumn)
		conceptName := cell(row, config.ConceptColumn)
		weightRaw := cell(row, config.WeightColumn)

		if questionRaw == "" || conceptName == "" {
			result.Skipped++
			continue
		}

		questionID, err := strconv.ParseInt(questionRaw, 10, 64)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid question ID %q", i+1, questionRaw))
			continue
		}

		weight := 1.0
		if weightRaw != "" {
			weight, err = strconv.ParseFloat(weightRaw, 64)
			if err != nil || weight <= 0 {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid weight %q", i+1, weightRaw))
				continue
			}
		}

		concept, err := repo.GetByName(ctx, conceptName)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		if concept == nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: concept %q not found", i+1, conceptName))
			continue
		}

		if err := repo.SetQuestionConcept(ctx, questionID, concept.ID, weight); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		result.RelationsCreated++
	}

	return result, nil
}

// cell returns the trimmed value of the column letter in the row, or empty
// if the row is too short or the column is unset.
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// columnToIndex converts a column letter (A, B, ... AA) to a 0-based index.
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	index := 0
	for _, r := range column {
		if r < 'A' || r > 'Z' {
			return -1
		}
		index = index*26 + int(r-'A') + 1
	}
	return index - 1
}
