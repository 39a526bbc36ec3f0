package diagnosis

import (
	"testing"

	"github.com/HerbHall/oltwatch/pkg/models"
)

func rx(v float64) *float64 { return &v }

func TestDiagnose(t *testing.T) {
	tests := []struct {
		name   string
		brand  models.Brand
		status string
		rx     *float64
		want   models.Diagnosis
	}{
		// Hioso vocabulary.
		{"hioso up healthy", models.BrandHioso, "Up", rx(-18.0), models.DiagnosisNormal},
		{"hioso up no level", models.BrandHioso, "Up", nil, models.DiagnosisNormal},
		{"hioso online token", models.BrandHioso, "ONLINE", rx(-10.0), models.DiagnosisNormal},
		{"hioso down", models.BrandHioso, "Down", nil, models.DiagnosisFiberIssue},
		{"hioso pwrdown", models.BrandHioso, "PwrDown", nil, models.DiagnosisPowerIssue},
		{"hioso power down spaced", models.BrandHioso, "Power Down", nil, models.DiagnosisPowerIssue},
		{"hioso poweroff", models.BrandHioso, "PowerOff", nil, models.DiagnosisPowerIssue},

		// VSOL vocabulary: note "Down" means power loss here, not fiber.
		{"vsol online", models.BrandVSOL, "Online", rx(-20.0), models.DiagnosisNormal},
		{"vsol wire down", models.BrandVSOL, "Wire Down", nil, models.DiagnosisFiberIssue},
		{"vsol wire_down token", models.BrandVSOL, "WIRE_DOWN", nil, models.DiagnosisFiberIssue},
		{"vsol down", models.BrandVSOL, "Down", nil, models.DiagnosisPowerIssue},
		{"vsol power off", models.BrandVSOL, "Power Off", nil, models.DiagnosisPowerIssue},

		// Attenuation sub-rule applies only to online units.
		{"attenuation at threshold", models.BrandHioso, "Up", rx(-25.0), models.DiagnosisNormal},
		{"attenuation below threshold", models.BrandHioso, "Up", rx(-25.1), models.DiagnosisHighAttenuation},
		{"attenuation deep", models.BrandVSOL, "Online", rx(-30.0), models.DiagnosisHighAttenuation},
		{"attenuation ignored when down", models.BrandHioso, "Down", rx(-30.0), models.DiagnosisFiberIssue},

		// Absent or unrecognizable status flags for inspection.
		{"empty status", models.BrandHioso, "", rx(-18.0), models.DiagnosisNeedsCheck},
		{"unknown token", models.BrandVSOL, "UNKNOWN", nil, models.DiagnosisNeedsCheck},
		{"whitespace only", models.BrandHioso, "   ", nil, models.DiagnosisNeedsCheck},

		// Tokens outside the brand table fall back per online/offline.
		{"hioso novel offline token", models.BrandHioso, "LOS", nil, models.DiagnosisOffline},
		{"vsol novel offline token", models.BrandVSOL, "DyingGasp", nil, models.DiagnosisOffline},
		{"unknown brand online", models.Brand("zte"), "Up", rx(-18.0), models.DiagnosisNormal},
		{"unknown brand offline", models.Brand("zte"), "Down", nil, models.DiagnosisOffline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diagnose(tt.brand, tt.status, tt.rx)
			if got != tt.want {
				t.Errorf("Diagnose(%q, %q, %v) = %q, want %q",
					tt.brand, tt.status, tt.rx, got, tt.want)
			}
		})
	}
}

func TestDiagnose_CaseAndSeparatorInsensitive(t *testing.T) {
	variants := []string{"power off", "Power Off", "POWER_OFF", "power-off", "  Power Off  "}
	for _, v := range variants {
		if got := Diagnose(models.BrandVSOL, v, nil); got != models.DiagnosisPowerIssue {
			t.Errorf("Diagnose(vsol, %q) = %q, want power_issue", v, got)
		}
	}
}

func TestIsProblem(t *testing.T) {
	if models.DiagnosisNormal.IsProblem() {
		t.Error("normal must not be a problem")
	}
	for _, d := range []models.Diagnosis{
		models.DiagnosisNeedsCheck,
		models.DiagnosisPowerIssue,
		models.DiagnosisFiberIssue,
		models.DiagnosisHighAttenuation,
		models.DiagnosisOffline,
	} {
		if !d.IsProblem() {
			t.Errorf("%q must be a problem", d)
		}
	}
}
