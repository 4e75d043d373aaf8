package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/sipschool/pkg/models"
)

// ConceptRepository handles database operations for the concept graph
type ConceptRepository struct{}

// NewConceptRepository creates a new repository instance
func NewConceptRepository() *ConceptRepository {
	return &ConceptRepository{}
}

// GetAll returns all concepts ordered by category and name
func (r *ConceptRepository) GetAll(ctx context.Context) ([]models.Concept, error) {
	var concepts []models.Concept
	query := "SELECT id, name, category, description, created_at FROM concepts ORDER BY category, name"
	if err := DB.SelectContext(ctx, &concepts, query); err != nil {
		return nil, fmt.Errorf("failed to get concepts: %w", err)
	}
	return concepts, nil
}

// GetByName returns a concept by its unique name, or nil if absent.
func (r *ConceptRepository) GetByName(ctx context.Context, name string) (*models.Concept, error) {
	var concept models.Concept
	query := DB.Rebind("SELECT id, name, category, description, created_at FROM concepts WHERE name = ?")
	err := DB.GetContext(ctx, &concept, query, name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get concept: %w", err)
	}
	return &concept, nil
}

// Create inserts a new concept
func (r *ConceptRepository) Create(ctx context.Context, concept *models.Concept) error {
	query := DB.Rebind("INSERT INTO concepts (name, category, description) VALUES (?, ?, ?)")
	result, err := DB.ExecContext(ctx, query, concept.Name, concept.Category, concept.Description)
	if err != nil {
		return fmt.Errorf("failed to create concept: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	concept.ID = id

	return nil
}

// GetOrCreate returns the concept with the given name, creating it if needed.
func (r *ConceptRepository) GetOrCreate(ctx context.Context, name, category, description string) (*models.Concept, error) {
	existing, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	concept := &models.Concept{Name: name, Category: category, Description: description}
	if err := r.Create(ctx, concept); err != nil {
		return nil, err
	}
	return concept, nil
}

// CreateRelation inserts a directed, typed edge between two concepts.
// Duplicate edges are ignored.
func (r *ConceptRepository) CreateRelation(ctx context.Context, rel *models.ConceptRelation) error {
	query := DB.Rebind(`
		INSERT INTO concept_relationships (concept_id, related_concept_id, relationship_type, strength)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (concept_id, related_concept_id, relationship_type) DO NOTHING
	`)
	if _, err := DB.ExecContext(ctx, query, rel.ConceptID, rel.RelatedConceptID, rel.RelationshipType, rel.Strength); err != nil {
		return fmt.Errorf("failed to create concept relation: %w", err)
	}
	return nil
}

// GetPrerequisiteRelations returns every prerequisite edge in the graph.
func (r *ConceptRepository) GetPrerequisiteRelations(ctx context.Context) ([]models.ConceptRelation, error) {
	var relations []models.ConceptRelation
	query := DB.Rebind(`
		SELECT id, concept_id, related_concept_id, relationship_type, strength, created_at
		FROM concept_relationships
		WHERE relationship_type = ?
	`)
	if err := DB.SelectContext(ctx, &relations, query, models.RelationPrerequisite); err != nil {
		return nil, fmt.Errorf("failed to get prerequisite relations: %w", err)
	}
	return relations, nil
}

// GetQuestionConcepts returns the concepts a question exercises, each with
// the weight the mapping carries.
func (r *ConceptRepository) GetQuestionConcepts(ctx context.Context, questionID int64) ([]models.WeightedConcept, error) {
	var concepts []models.WeightedConcept
	query := DB.Rebind(`
		SELECT c.id, c.name, c.category, c.description, c.created_at, qc.weight
		FROM concepts c
		JOIN question_concepts qc ON c.id = qc.concept_id
		WHERE qc.question_id = ?
	`)
	if err := DB.SelectContext(ctx, &concepts, query, questionID); err != nil {
		return nil, fmt.Errorf("failed to get question concepts: %w", err)
	}
	return concepts, nil
}

// SetQuestionConcept upserts the weight a question carries for a concept.
func (r *ConceptRepository) SetQuestionConcept(ctx context.Context, questionID, conceptID int64, weight float64) error {
	query := DB.Rebind(`
		INSERT INTO question_concepts (question_id, concept_id, weight)
		VALUES (?, ?, ?)
		ON CONFLICT (question_id, concept_id) DO UPDATE SET weight = excluded.weight
	`)
	if _, err := DB.ExecContext(ctx, query, questionID, conceptID, weight); err != nil {
		return fmt.Errorf("failed to set question concept: %w", err)
	}
	return nil
}
