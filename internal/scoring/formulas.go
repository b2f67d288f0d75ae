package scoring

import "strings"

const (
	keyImpactV1  = "IS_Analysis"
	keyMetricsV1 = "ZES_Raw_Metrics"
	keyImpactV09 = "Impact_Analysis_IS"
	keyZESV09    = "Evidence_Analysis_ZES"
	keySchema    = "Schema_Version"
)

var (
	signalKeys  = []string{"T1", "T2", "T3", "T4"}
	noiseKeys   = []string{"P1", "P2", "P3", "P4"}
	utilityKeys = []string{"V1", "V2", "V3", "V4"}
)

func isV1(ev *evidence) bool {
	return ev.has(keyImpactV1, keyMetricsV1)
}

func isBoosted(ev *evidence) bool {
	if !isV1(ev) {
		return false
	}
	metrics, ok := find(ev.root, keyMetricsV1)
	if !ok {
		return false
	}
	for _, key := range []string{"T4", "P4", "V4"} {
		if _, ok := find(metrics, key); ok {
			return true
		}
	}
	return false
}

func isV10(ev *evidence) bool {
	return isV1(ev)
}

func isV09(ev *evidence) bool {
	return ev.has(keyImpactV09, keyZESV09)
}

// impactV1 is shared by V1.0 and the boosted versions:
// (Tier_Score + Gap_Score) + (Scope_Matrix_Score + Criticality_Total).
func impactV1(ev *evidence) (float64, []Component) {
	section := ev.section(keyImpactV1)

	tier := number(section, "Tier_Score")
	gap := number(section, "Gap_Score")
	scope := number(section, "Scope_Matrix_Score")
	criticality := number(section, "Criticality_Total")

	return (tier + gap) + (scope + criticality), []Component{
		{Name: "Tier_Score", Value: tier},
		{Name: "Gap_Score", Value: gap},
		{Name: "Scope_Matrix_Score", Value: scope},
		{Name: "Criticality_Total", Value: criticality},
	}
}

func computeV10(ev *evidence) computation {
	impact, components := impactV1(ev)
	metrics := ev.section(keyMetricsV1)

	s := mean(numbers(metrics, signalKeys[:3]...))
	n := mean(numbers(metrics, noiseKeys[:3]...))
	u := mean(numbers(metrics, utilityKeys[:3]...))

	fine, ok := lookupNumber(metrics, "Fine_Adjustment")
	if !ok {
		fine = number(ev.root, "Fine_Adjustment")
	}

	quality := ((s+10-n)/2)*(u/10) + fine

	return computation{
		version:  V10,
		impact:   impact,
		zeroEcho: 10 - quality,
		components: append(components,
			Component{Name: "Signal", Value: s},
			Component{Name: "Noise", Value: n},
			Component{Name: "Utility", Value: u},
			Component{Name: "Fine_Adjustment", Value: fine},
			Component{Name: "Quality", Value: quality},
		),
	}
}

func computeBoosted(ev *evidence) computation {
	impact, components := impactV1(ev)
	metrics := ev.section(keyMetricsV1)

	signal := Aggregate(numbers(metrics, signalKeys...)...)
	noise := Aggregate(numbers(metrics, noiseKeys...)...)
	utility := Aggregate(numbers(metrics, utilityKeys...)...)

	penalty := max(0, noise-1) / 10
	purity := signal * (1 - penalty)
	quality := purity*0.7 + utility*0.3

	version := V11
	if declared, ok := find(ev.root, keySchema); ok {
		if s, isString := declared.(string); isString && strings.Contains(s, "1.2") {
			version = V12
		}
	}

	return computation{
		version:  version,
		impact:   impact,
		zeroEcho: 10 - quality,
		components: append(components,
			Component{Name: "Signal_Aggregate", Value: signal},
			Component{Name: "Noise_Aggregate", Value: noise},
			Component{Name: "Utility_Aggregate", Value: utility},
			Component{Name: "Noise_Penalty", Value: penalty},
			Component{Name: "Purity", Value: purity},
			Component{Name: "Quality", Value: quality},
		),
	}
}

var impactTermsV09 = []string{
	"IW_Score",
	"Gap_Score",
	"Context_Bonus",
	"Scope_Total",
	"Criticality_Total",
	"Adjustment_Score",
}

func computeV09(ev *evidence) computation {
	section := ev.section(keyImpactV09)

	var components []Component
	impact := 0.0
	for _, key := range impactTermsV09 {
		v := number(section, key)
		impact += v
		components = append(components, Component{Name: key, Value: v})
	}

	// Negative evidence carries its own negative weights, so every term is
	// summed as supplied.
	weighted := 0.0
	terms := 0
	walk(ev.section(keyZESV09), func(m map[string]any) bool {
		w, hasWeight := field(m, "weight")
		raw, hasRaw := field(m, "raw_score", "score")
		if !hasWeight || !hasRaw {
			return true
		}
		weight, okW := toFloat(w)
		score, okS := toFloat(raw)
		if okW && okS {
			weighted += weight * score
			terms++
		}
		return false
	})

	return computation{
		version:  V09,
		impact:   impact,
		zeroEcho: 5.0 - weighted,
		components: append(components,
			Component{Name: "Evidence_Terms", Value: float64(terms)},
			Component{Name: "Weighted_Evidence", Value: weighted},
		),
	}
}

func computeLegacy(ev *evidence) computation {
	impact := number(ev.root, "impact_score")
	zeroEcho := number(ev.root, "zero_echo_score")

	return computation{
		version:  Legacy,
		impact:   impact,
		zeroEcho: zeroEcho,
		components: []Component{
			{Name: "impact_score", Value: impact},
			{Name: "zero_echo_score", Value: zeroEcho},
		},
	}
}
