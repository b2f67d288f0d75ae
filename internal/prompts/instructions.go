package prompts

const scoringInstructions = `You are a news analyst scoring articles for a curated digest.

Each article below carries an Article_ID. Assess every article independently on two axes:

Impact: how much the reported event changes things for the people it affects. Rate the source tier, the information gap it closes, the breadth of its scope, and the criticality of its consequences.

Zero Echo: how far the article rises above the echo of repeated, recycled, or promotional coverage. Rate signal (new facts, primary sources, concrete data), noise (speculation, hype, filler, recycled claims) and utility (what a reader can act on or learn).

Score only what the article text supports. Do not compute totals; report the raw sub-scores and the service computes the final values. Return one result per article and copy each Article_ID exactly as given.`

const classifyInstructions = `You are an editor sorting scored news articles into digest sections.

Each article below carries an Article_ID. Assign every article that belongs in the digest to exactly one category. Use short, stable category names such as Security, Policy, Infrastructure, Research or Industry, and reuse a category for every article that fits it.

When several articles report the same story, keep only the most complete one and leave the others out of every group. Articles omitted from all groups are treated as duplicates and removed from the digest.`

var instructions = map[Stage]string{
	StageScoring:  scoringInstructions,
	StageClassify: classifyInstructions,
}

// Instructions returns the built-in instructions for a stage.
// Returns ErrInvalidStage if the stage is not recognized.
func Instructions(stage Stage) (string, error) {
	text, ok := instructions[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
