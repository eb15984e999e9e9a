package risk

import (
	"errors"
	"fmt"
	"math"
)

// Vitals holds the optional readings taken during a visit. A nil field means
// the reading was not recorded; it is never treated as zero.
type Vitals struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	Pulse            *float64 `json:"pulse,omitempty"`
	SystolicBP       *float64 `json:"systolic_bp,omitempty"`
	DiastolicBP      *float64 `json:"diastolic_bp,omitempty"`
	OxygenSaturation *float64 `json:"oxygen_saturation,omitempty"`
	RespiratoryRate  *float64 `json:"respiratory_rate,omitempty"`
}

// ErrInvalidVitals is wrapped by every error Validate returns.
var ErrInvalidVitals = errors.New("invalid vitals")

// Reading is a convenience for building Vitals literals.
func Reading(v float64) *float64 {
	return &v
}

// IsEmpty reports whether no reading was recorded.
func (v Vitals) IsEmpty() bool {
	return v.Temperature == nil && v.Pulse == nil && v.SystolicBP == nil &&
		v.DiastolicBP == nil && v.OxygenSaturation == nil && v.RespiratoryRate == nil
}

type vitalBound struct {
	name     string
	value    *float64
	min, max float64
}

// Validate rejects readings that cannot have come from a real measurement:
// NaN, infinities and values outside physical bounds. It is meant for the
// request boundary; Compute itself never fails.
func (v Vitals) Validate() error {
	bounds := []vitalBound{
		{"temperature", v.Temperature, 25, 45},
		{"pulse", v.Pulse, 0, 300},
		{"systolic_bp", v.SystolicBP, 0, 300},
		{"diastolic_bp", v.DiastolicBP, 0, 250},
		{"oxygen_saturation", v.OxygenSaturation, 0, 100},
		{"respiratory_rate", v.RespiratoryRate, 0, 100},
	}
	for _, b := range bounds {
		if b.value == nil {
			continue
		}
		f := *b.value
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %s is not a number", ErrInvalidVitals, b.name)
		}
		if f < b.min || f > b.max {
			return fmt.Errorf("%w: %s must be between %s and %s, got %s",
				ErrInvalidVitals, b.name, formatValue(b.min), formatValue(b.max), formatValue(f))
		}
	}
	return nil
}
