// Package risk converts a carer's visit observation into a score, a
// three-tier risk level and the ordered list of reasons behind it.
//
// Compute is pure: it performs no I/O, keeps no state between calls and may
// be called concurrently. The symptom catalog is passed in by the caller.
package risk

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/carewatch/carewatch/internal/domain/symptom"
)

// Level is the risk classification derived from a score.
type Level string

const (
	Green Level = "green"
	Amber Level = "amber"
	Red   Level = "red"
)

// Classification thresholds. A score at or above the threshold is in that tier.
const (
	AmberThreshold = 3
	RedThreshold   = 5
)

// ParseLevel converts a stored or user-supplied string into a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case Green, Amber, Red:
		return Level(s), nil
	}
	return "", fmt.Errorf("invalid risk level: %q", s)
}

// Severity orders levels: green=0, amber=1, red=2. Unknown levels are -1.
func (l Level) Severity() int {
	switch l {
	case Green:
		return 0
	case Amber:
		return 1
	case Red:
		return 2
	}
	return -1
}

// RequiresAlert reports whether a visit at this level must be reviewed by a manager.
func (l Level) RequiresAlert() bool {
	return l == Amber || l == Red
}

// Classify maps a score onto a Level.
func Classify(score int) Level {
	switch {
	case score >= RedThreshold:
		return Red
	case score >= AmberThreshold:
		return Amber
	default:
		return Green
	}
}

// Result is the outcome of scoring one observation.
type Result struct {
	Score   int      `json:"score"`
	Level   Level    `json:"risk_level"`
	Reasons []string `json:"reasons"`
}

// Engine scores observations against a fixed symptom catalog.
type Engine struct {
	catalog symptom.Lookuper
}

// NewEngine returns an Engine bound to catalog.
func NewEngine(catalog symptom.Lookuper) *Engine {
	return &Engine{catalog: catalog}
}

// Score is Compute with the engine's catalog.
func (e *Engine) Score(selectedSymptomIDs []string, v Vitals) Result {
	return Compute(e.catalog, selectedSymptomIDs, v)
}

// Compute scores an observation.
//
// Symptoms are taken in the order given. Ids the catalog does not know are
// skipped; repeated ids are counted each time they appear. Vitals are then
// checked in a fixed order (temperature, pulse, oxygen saturation,
// respiratory rate, blood pressure) and only when recorded.
func Compute(catalog symptom.Lookuper, selectedSymptomIDs []string, v Vitals) Result {
	score := 0
	reasons := make([]string, 0, len(selectedSymptomIDs))

	for _, id := range selectedSymptomIDs {
		s, ok := catalog.Lookup(id)
		if !ok {
			continue
		}
		score += s.Points
		reasons = append(reasons, s.Label)
	}

	if v.Temperature != nil {
		t := *v.Temperature
		if t >= 38 {
			score += 2
			reasons = append(reasons, fmt.Sprintf("High temperature (%s°C)", formatValue(t)))
		} else if t < 36 {
			score += 1
			reasons = append(reasons, fmt.Sprintf("Low temperature (%s°C)", formatValue(t)))
		}
	}

	if v.Pulse != nil {
		if p := *v.Pulse; p > 100 || p < 50 {
			score += 1
			reasons = append(reasons, fmt.Sprintf("Abnormal pulse (%s bpm)", formatValue(p)))
		}
	}

	if v.OxygenSaturation != nil {
		if o := *v.OxygenSaturation; o < 95 {
			score += 2
			reasons = append(reasons, fmt.Sprintf("Low oxygen saturation (%s%%)", formatValue(o)))
		}
	}

	if v.RespiratoryRate != nil {
		if r := *v.RespiratoryRate; r > 20 || r < 12 {
			score += 1
			reasons = append(reasons, fmt.Sprintf("Abnormal respiratory rate (%s/min)", formatValue(r)))
		}
	}

	// Only systolic is thresholded; diastolic is reported alongside it.
	if v.SystolicBP != nil && v.DiastolicBP != nil {
		if sys := *v.SystolicBP; sys > 140 || sys < 90 {
			score += 1
			reasons = append(reasons, fmt.Sprintf("Abnormal blood pressure (%s/%s)",
				formatValue(sys), formatValue(*v.DiastolicBP)))
		}
	}

	return Result{
		Score:   score,
		Level:   Classify(score),
		Reasons: reasons,
	}
}

// formatValue renders a reading with the fewest digits that represent it
// exactly, so 39 prints as "39" and 38.5 as "38.5". Negative zero prints as
// "0". Magnitudes below 1e-6 or from 1e21 up use exponent form ("1e-7").
func formatValue(f float64) string {
	if f == 0 {
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
