package scoring

import (
	"encoding/json"
	"math"
)

// DefaultTolerance is the largest claimed-vs-recomputed difference not
// reported as a mismatch.
const DefaultTolerance = 0.05

var (
	claimedImpactKeys   = []string{"impact_score", "IS_Score", "Impact_Score", "Final_IS", "IS_Total"}
	claimedZeroEchoKeys = []string{"zero_echo_score", "ZES_Score", "ZS_Score", "Final_ZES", "ZES_Total"}
)

// Claimed holds scores the model asserted in its own output, if any.
type Claimed struct {
	ImpactScore   *float64 `json:"impact_score,omitempty"`
	ZeroEchoScore *float64 `json:"zero_echo_score,omitempty"`
}

// Mismatch flags claimed scores that disagree with the recomputed ones.
type Mismatch struct {
	ImpactScore   bool `json:"impact_score"`
	ZeroEchoScore bool `json:"zero_echo_score"`
}

// Any reports whether either score mismatched.
func (m Mismatch) Any() bool {
	return m.ImpactScore || m.ZeroEchoScore
}

// Audit is the operator-facing breakdown of a score computation.
type Audit struct {
	Result     Result      `json:"result"`
	Components []Component `json:"components"`
	Claimed    Claimed     `json:"claimed"`
	Mismatch   Mismatch    `json:"mismatch"`
	Tolerance  float64     `json:"tolerance"`
}

// Drift compares a stored score against the current formula.
type Drift struct {
	ImpactDelta    float64 `json:"impact_delta"`
	ZeroEchoDelta  float64 `json:"zero_echo_delta"`
	VersionChanged bool    `json:"version_changed"`
	Drifted        bool    `json:"drifted"`
}

// Breakdown recomputes the scores for raw and reports the formula components
// alongside any scores the model claimed. Legacy payloads are pass-through, so
// their claims are never compared. A non-positive tolerance uses DefaultTolerance.
func Breakdown(raw json.RawMessage, tolerance float64) Audit {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	ev := decode(raw)
	c := run(ev)
	result := c.result()

	audit := Audit{
		Result:     result,
		Components: roundComponents(c.components),
		Tolerance:  tolerance,
	}

	if c.version == Legacy {
		return audit
	}

	audit.Claimed = Claimed{
		ImpactScore:   claimed(ev, claimedImpactKeys),
		ZeroEchoScore: claimed(ev, claimedZeroEchoKeys),
	}
	audit.Mismatch = Mismatch{
		ImpactScore:   exceeds(audit.Claimed.ImpactScore, result.ImpactScore, tolerance),
		ZeroEchoScore: exceeds(audit.Claimed.ZeroEchoScore, result.ZeroEchoScore, tolerance),
	}

	return audit
}

// Compare reports how far a stored result has drifted from the recomputed one.
func (a Audit) Compare(stored Result) Drift {
	d := Drift{
		ImpactDelta:    round2(a.Result.ImpactScore - stored.ImpactScore),
		ZeroEchoDelta:  round2(a.Result.ZeroEchoScore - stored.ZeroEchoScore),
		VersionChanged: stored.SchemaVersion != "" && stored.SchemaVersion != a.Result.SchemaVersion,
	}
	d.Drifted = math.Abs(d.ImpactDelta) > a.Tolerance ||
		math.Abs(d.ZeroEchoDelta) > a.Tolerance ||
		d.VersionChanged
	return d
}

func claimed(ev *evidence, keys []string) *float64 {
	for _, key := range keys {
		if v, ok := lookupNumber(ev.root, key); ok {
			return &v
		}
	}
	return nil
}

func exceeds(claim *float64, recomputed, tolerance float64) bool {
	if claim == nil {
		return false
	}
	return math.Abs(*claim-recomputed) > tolerance+1e-9
}

func roundComponents(in []Component) []Component {
	out := make([]Component, len(in))
	for i, c := range in {
		out[i] = Component{Name: c.Name, Value: math.Round(c.Value*1000) / 1000}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
