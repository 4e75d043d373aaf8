package models

import "time"

// Relationship types between two concepts.
const (
	RelationPrerequisite = "prerequisite"
	RelationRelated      = "related"
	RelationSubtopic     = "subtopic"
)

// Concept represents a tagged unit of wine knowledge (a grape variety,
// a region, a winemaking technique) that questions exercise.
type Concept struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Category    string    `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ConceptRelation is a directed, typed edge between two concepts. For
// RelationPrerequisite edges the related concept is the foundation the
// source concept builds on.
type ConceptRelation struct {
	ID               int64     `json:"id" db:"id"`
	ConceptID        int64     `json:"concept_id" db:"concept_id"`
	RelatedConceptID int64     `json:"related_concept_id" db:"related_concept_id"`
	RelationshipType string    `json:"relationship_type" db:"relationship_type"`
	Strength         float64   `json:"strength" db:"strength"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// QuestionConcept maps a question to a concept it exercises, with a weight
// indicating how strongly. Default weight is 1.0.
type QuestionConcept struct {
	ID         int64   `json:"id" db:"id"`
	QuestionID int64   `json:"question_id" db:"question_id"`
	ConceptID  int64   `json:"concept_id" db:"concept_id"`
	Weight     float64 `json:"weight" db:"weight"`
}

// WeightedConcept is a concept joined with the weight a particular question
// carries for it.
type WeightedConcept struct {
	Concept
	Weight float64 `json:"weight" db:"weight"`
}
