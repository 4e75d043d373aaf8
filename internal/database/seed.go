package database

import (
	"context"
	"fmt"

	"github.com/example/sipschool/pkg/models"
)

type seedConcept struct {
	name        string
	category    string
	description string
}

type seedRelation struct {
	concept string // the concept that builds on the foundation
	related string // the foundation (prerequisite) or linked concept
	relType string
}

var wineConcepts = []seedConcept{
	{"Chardonnay", "Grape Varieties", "White grape variety, versatile from crisp to rich styles"},
	{"Cabernet Sauvignon", "Grape Varieties", "Red grape variety, full-bodied with high tannins"},
	{"Pinot Noir", "Grape Varieties", "Red grape variety, light to medium-bodied, elegant"},
	{"Syrah/Shiraz", "Grape Varieties", "Red grape variety, full-bodied with spicy notes"},
	{"Sauvignon Blanc", "Grape Varieties", "White grape variety, crisp with herbaceous notes"},
	{"Merlot", "Grape Varieties", "Red grape variety, medium to full-bodied, soft tannins"},
	{"Riesling", "Grape Varieties", "White grape variety, aromatic, ranges from dry to sweet"},
	{"Tempranillo", "Grape Varieties", "Spanish red grape variety, medium to full-bodied"},
	{"Sangiovese", "Grape Varieties", "Italian red grape variety, high acidity and tannins"},
	{"Nebbiolo", "Grape Varieties", "Italian red grape variety, high tannins and acidity"},
	{"Bordeaux", "Wine Regions", "French region famous for red blends and sweet wines"},
	{"Burgundy", "Wine Regions", "French region known for Pinot Noir and Chardonnay"},
	{"Champagne", "Wine Regions", "French region producing sparkling wine"},
	{"Rhône Valley", "Wine Regions", "French region known for Syrah and GSM blends"},
	{"Tuscany", "Wine Regions", "Italian region home to Chianti and Brunello"},
	{"Piedmont", "Wine Regions", "Italian region known for Barolo and Barbaresco"},
	{"Rioja", "Wine Regions", "Spanish region famous for Tempranillo wines"},
	{"Napa Valley", "Wine Regions", "California region known for premium wines"},
	{"Mosel", "Wine Regions", "German region famous for Riesling"},
	{"Terroir", "Viticulture", "Complete natural environment of vineyard"},
	{"Climate Types", "Viticulture", "Mediterranean, Continental, Maritime climates"},
	{"Soil Types", "Viticulture", "Limestone, clay, gravel, and other soil types"},
	{"Harvest Decisions", "Viticulture", "Timing and methods of grape harvesting"},
	{"Fermentation", "Winemaking", "Alcoholic and malolactic fermentation processes"},
	{"Oak Aging", "Winemaking", "Use of barrels for aging and flavor"},
	{"Clarification", "Winemaking", "Fining and filtering processes"},
	{"Blending", "Winemaking", "Combining different wines or varieties"},
	{"Fortification", "Winemaking", "Adding spirits to wine"},
	{"Serving Temperature", "Wine Service", "Proper temperatures for different wines"},
	{"Decanting", "Wine Service", "Aerating and separating sediment"},
	{"Glassware", "Wine Service", "Proper glass shapes for wine types"},
}

// Edges read concept-builds-on-related: for prerequisite rows the related
// concept is the foundation gap detection looks for.
var wineRelations = []seedRelation{
	{"Chardonnay", "Burgundy", models.RelationRelated},
	{"Chardonnay", "Champagne", models.RelationRelated},
	{"Pinot Noir", "Burgundy", models.RelationRelated},
	{"Cabernet Sauvignon", "Bordeaux", models.RelationRelated},
	{"Sangiovese", "Tuscany", models.RelationRelated},
	{"Nebbiolo", "Piedmont", models.RelationRelated},
	{"Tempranillo", "Rioja", models.RelationRelated},

	{"Oak Aging", "Fermentation", models.RelationPrerequisite},
	{"Clarification", "Fermentation", models.RelationPrerequisite},
	{"Fortification", "Fermentation", models.RelationPrerequisite},
	{"Blending", "Oak Aging", models.RelationPrerequisite},

	{"Terroir", "Climate Types", models.RelationSubtopic},
	{"Terroir", "Soil Types", models.RelationSubtopic},

	{"Serving Temperature", "Glassware", models.RelationRelated},
	{"Decanting", "Glassware", models.RelationRelated},
}

// SeedConcepts populates the concept graph with the wine curriculum. Existing
// concepts are left untouched, so the seed is safe to run on every startup.
func SeedConcepts(ctx context.Context) error {
	repo := NewConceptRepository()

	ids := make(map[string]int64, len(wineConcepts))
	for _, sc := range wineConcepts {
		concept, err := repo.GetOrCreate(ctx, sc.name, sc.category, sc.description)
		if err != nil {
			return fmt.Errorf("failed to seed concept %q: %w", sc.name, err)
		}
		ids[sc.name] = concept.ID
	}

	for _, sr := range wineRelations {
		conceptID, ok := ids[sr.concept]
		if !ok {
			return fmt.Errorf("seed relation references unknown concept %q", sr.concept)
		}
		relatedID, ok := ids[sr.related]
		if !ok {
			return fmt.Errorf("seed relation references unknown concept %q", sr.related)
		}
		rel := &models.ConceptRelation{
			ConceptID:        conceptID,
			RelatedConceptID: relatedID,
			RelationshipType: sr.relType,
			Strength:         1.0,
		}
		if err := repo.CreateRelation(ctx, rel); err != nil {
			return fmt.Errorf("failed to seed relation %s -> %s: %w", sr.concept, sr.related, err)
		}
	}

	return nil
}
