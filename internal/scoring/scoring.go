// Package scoring converts raw LLM evidence into bounded impact and zero echo
// scores. The evidence shape has changed across model prompt revisions, so the
// version is detected structurally and each shape has its own formula.
//
// Every function in this package is pure. Unexpected shapes never fail; they
// fall through to the Legacy decoder and produce zeros.
package scoring

import (
	"encoding/json"
	"math"
	"strings"
)

// Version identifies the evidence shape that produced a score.
type Version string

const (
	V12    Version = "V1.2"
	V11    Version = "V1.1"
	V10    Version = "V1.0"
	V09    Version = "V0.9"
	Legacy Version = "Legacy"
)

// Bounds of every score.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Result holds normalized scores and the detected evidence version.
type Result struct {
	ImpactScore   float64 `json:"impact_score"`
	ZeroEchoScore float64 `json:"zero_echo_score"`
	SchemaVersion Version `json:"schema_version"`
}

// Component is a named intermediate value of a scoring formula.
type Component struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type computation struct {
	version    Version
	impact     float64
	zeroEcho   float64
	components []Component
}

func (c computation) result() Result {
	return Result{
		ImpactScore:   bound(c.impact),
		ZeroEchoScore: bound(c.zeroEcho),
		SchemaVersion: c.version,
	}
}

type decoder struct {
	match   func(*evidence) bool
	compute func(*evidence) computation
}

// Detection order matters: boosted payloads are a superset of V1.0 payloads,
// and V1.x keys are checked before the V0.9 keys.
var chain = []decoder{
	{match: isBoosted, compute: computeBoosted},
	{match: isV10, compute: computeV10},
	{match: isV09, compute: computeV09},
	{match: func(*evidence) bool { return true }, compute: computeLegacy},
}

// Normalize detects the evidence version and returns recomputed scores,
// clamped to [0,10] and rounded to one decimal.
func Normalize(raw json.RawMessage) Result {
	return run(decode(raw)).result()
}

// Detect returns the evidence version without computing scores.
func Detect(raw json.RawMessage) Version {
	return run(decode(raw)).version
}

func run(ev *evidence) computation {
	for _, d := range chain {
		if d.match(ev) {
			return d.compute(ev)
		}
	}
	return computeLegacy(ev)
}

// Aggregate combines sub-metrics by boosted max:
// min(10, max(values) + mean(values)*0.25). Empty input aggregates to 0.
func Aggregate(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}

	hi := values[0]
	sum := 0.0
	for _, v := range values {
		hi = math.Max(hi, v)
		sum += v
	}

	return math.Min(MaxScore, hi+(sum/float64(len(values)))*0.25)
}

// ParseVersion maps a stored tag back to a Version. Unknown tags map to Legacy.
func ParseVersion(s string) Version {
	for _, v := range []Version{V12, V11, V10, V09, Legacy} {
		if strings.EqualFold(s, string(v)) {
			return v
		}
	}
	return Legacy
}

func bound(v float64) float64 {
	if math.IsNaN(v) {
		return MinScore
	}
	return round1(clamp(v))
}

func clamp(v float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
