package prompts

const scoringSpec = `Respond with a JSON object matching this exact structure:

{
  "Schema_Version": "1.2",
  "results": [
    {
      "Article_ID": "<id>",
      "IS_Analysis": {
        "Tier_Score": <0-3>,
        "Gap_Score": <0-3>,
        "Scope_Matrix_Score": <0-2>,
        "Criticality_Total": <0-2>
      },
      "ZES_Raw_Metrics": {
        "T1": <0-10>, "T2": <0-10>, "T3": <0-10>, "T4": <0-10>,
        "P1": <0-10>, "P2": <0-10>, "P3": <0-10>, "P4": <0-10>,
        "V1": <0-10>, "V2": <0-10>, "V3": <0-10>, "V4": <0-10>
      }
    }
  ]
}

Field constraints:
- Article_ID: Copied verbatim from the input article.
- IS_Analysis: Impact sub-scores. Numbers only, no totals.
- ZES_Raw_Metrics: T1-T4 rate signal, P1-P4 rate noise, V1-V4 rate
  utility. Higher noise means more speculation, hype, or recycled text.

Behavioral constraints:
- Return exactly one result per input article, in input order
- Never invent an Article_ID and never omit one
- Do not include impact_score or zero_echo_score; they are computed`

const classifySpec = `Respond with a JSON object matching this exact structure:

{
  "results": [
    {
      "category": "<category>",
      "article_ids": ["<id>", "<id>"]
    }
  ]
}

Field constraints:
- category: Short section name. Reuse one name per section.
- article_ids: Article_ID values copied verbatim from the input.

Behavioral constraints:
- Every article_id appears in at most one group
- Leave duplicate coverage of the same story out of every group
- Never invent an Article_ID`

var specs = map[Stage]string{
	StageScoring:  scoringSpec,
	StageClassify: classifySpec,
}

// Spec returns the response specification for a stage. The specification
// describes the JSON shape the reconciliation parser accepts.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
