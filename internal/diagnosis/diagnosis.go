// Package diagnosis maps raw vendor ONU status to a normalized health
// classification. Pure lookup, no I/O; vendor quirks live in per-brand
// tables so adding a brand never touches control flow.
package diagnosis

import (
	"strings"

	"github.com/HerbHall/oltwatch/pkg/models"
)

// RxThreshold is the dBm level below which an online unit is classified as
// suffering high attenuation.
const RxThreshold = -25.0

// statusClass buckets vendor status tokens.
type statusClass int

const (
	classOnline statusClass = iota
	classFiberDown
	classPowerDown
)

// brandRules is one vendor's status vocabulary. Tokens are matched after
// normalization (upper-cased, spaces collapsed to underscores), so both the
// raw web-UI spelling ("Power Down") and the collector token ("POWER_OFF")
// resolve.
type brandRules struct {
	classes map[string]statusClass
}

var tables = map[models.Brand]brandRules{
	models.BrandHioso: {
		classes: map[string]statusClass{
			"UP":         classOnline,
			"ONLINE":     classOnline,
			"DOWN":       classFiberDown,
			"PWRDOWN":    classPowerDown,
			"POWER_DOWN": classPowerDown,
			"POWEROFF":   classPowerDown,
			"POWER_OFF":  classPowerDown,
		},
	},
	models.BrandVSOL: {
		classes: map[string]statusClass{
			"ONLINE":    classOnline,
			"WIRE_DOWN": classFiberDown,
			"WIREDOWN":  classFiberDown,
			"DOWN":      classPowerDown,
			"POWEROFF":  classPowerDown,
			"POWER_OFF": classPowerDown,
		},
	},
}

// onlineFallback covers brands with no registered table: these tokens count
// as online, everything else as generically offline.
var onlineFallback = map[string]bool{
	"UP":     true,
	"ONLINE": true,
}

// Diagnose classifies one unit. rawStatus is the vendor's free-form status
// token; rx is the received optical level in dBm, nil when not reported.
func Diagnose(brand models.Brand, rawStatus string, rx *float64) models.Diagnosis {
	status := normalize(rawStatus)

	// An absent or unrecognizable status means the device reported the unit
	// but couldn't classify it: flag for manual inspection, don't guess.
	if status == "" || status == "UNKNOWN" {
		return models.DiagnosisNeedsCheck
	}

	if rules, ok := tables[brand]; ok {
		if class, ok := rules.classes[status]; ok {
			switch class {
			case classOnline:
				return checkRx(rx)
			case classFiberDown:
				return models.DiagnosisFiberIssue
			case classPowerDown:
				return models.DiagnosisPowerIssue
			}
		}
	}

	// Fallback for any brand/status combination not covered above.
	if !onlineFallback[status] {
		return models.DiagnosisOffline
	}
	return models.DiagnosisNormal
}

// checkRx applies the attenuation sub-rule for online units.
func checkRx(rx *float64) models.Diagnosis {
	if rx != nil && *rx < RxThreshold {
		return models.DiagnosisHighAttenuation
	}
	return models.DiagnosisNormal
}

// normalize upper-cases a status token and collapses separators so table
// lookups are spelling-insensitive.
func normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
