package knowledge

import (
	"sort"

	"github.com/example/sipschool/pkg/models"
)

// Gap flags a concept the user is weak on despite having mastered material
// that builds on it.
type Gap struct {
	ConceptID int64
	GapScore  float64 // 1.0 - mastery level
}

// IdentifyGaps walks the prerequisite edges and returns every concept below
// the mastery threshold that is a prerequisite of a concept above it, ranked
// by gap score descending. Concepts missing from the mastery map count as
// mastery 0. The prerequisite graph is assumed acyclic.
func IdentifyGaps(mastery map[int64]float64, relations []models.ConceptRelation) []Gap {
	seen := make(map[int64]bool)
	var gaps []Gap

	for _, rel := range relations {
		if rel.RelationshipType != models.RelationPrerequisite {
			continue
		}
		// rel.ConceptID builds on rel.RelatedConceptID
		if mastery[rel.ConceptID] <= MasteryThreshold {
			continue
		}
		prereq := rel.RelatedConceptID
		if seen[prereq] || mastery[prereq] >= MasteryThreshold {
			continue
		}
		seen[prereq] = true
		gaps = append(gaps, Gap{ConceptID: prereq, GapScore: 1.0 - mastery[prereq]})
	}

	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].GapScore != gaps[j].GapScore {
			return gaps[i].GapScore > gaps[j].GapScore
		}
		return gaps[i].ConceptID < gaps[j].ConceptID
	})

	return gaps
}
