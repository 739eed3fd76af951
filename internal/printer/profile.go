package printer

import (
	"strings"

	"github.com/HerbHall/printwatch/pkg/models"
)

// Keyword families. The sets are disjoint; text matching both is ambiguous.
var (
	inkjetKeywords = []string{
		"inkjet", "ink jet", "ecotank", "workforce", "deskjet", "officejet",
		"pixma", "maxify", "stylus", "designjet", "bubblejet", "ink tank",
		"ink cartridge", "ink",
	}
	laserKeywords = []string{
		"laserjet", "laser", "toner", "imagerunner", "bizhub", "ecosys",
		"taskalfa", "phaser", "versalink", "workcentre", "drum", "page printer",
	}
)

// shortKeywords must match a whole word, since they appear inside unrelated
// words ("pink", "drummond").
var shortKeywords = map[string]bool{"ink": true, "drum": true}

// DetectProfile classifies a printer from its identity strings. The system
// description is consulted first, then the model, then the supply
// description. A source matching both families is skipped.
func DetectProfile(description, model, supplyDescription string) models.Profile {
	for _, text := range []string{description, model, supplyDescription} {
		if p := classify(text); p != models.ProfileUnknown {
			return p
		}
	}
	return models.ProfileUnknown
}

// classify matches one text against both families.
func classify(text string) models.Profile {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return models.ProfileUnknown
	}
	inkjet := matchesAny(lower, inkjetKeywords)
	laser := matchesAny(lower, laserKeywords)
	switch {
	case inkjet && !laser:
		return models.ProfileInkjet
	case laser && !inkjet:
		return models.ProfileLaser
	default:
		return models.ProfileUnknown
	}
}

func matchesAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if shortKeywords[kw] {
			if containsWord(lower, kw) {
				return true
			}
			continue
		}
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// containsWord reports whether word occurs in s delimited by non-alphanumerics.
func containsWord(s, word string) bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	for _, f := range fields {
		if f == word {
			return true
		}
	}
	return false
}
