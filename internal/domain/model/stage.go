package model

// Stage identifies one named step of the fixed evaluation pipeline.
type Stage string

const (
	// StageStarting is the pseudo-stage shown before the first real stage begins.
	StageStarting Stage = "starting"
	StageDomain   Stage = "domain"
	StageSocial   Stage = "social"
	// StageSimilarity covers phonetic conflict analysis.
	StageSimilarity Stage = "similarity"
	StageVisibility Stage = "visibility"
	StageTrademark  Stage = "trademark"
	StageAnalysis   Stage = "analysis"
	// StageDone is the terminal state reached once the job has finished.
	StageDone Stage = "done"
)

// PipelineStages lists the real stages in execution order.
var PipelineStages = []Stage{
	StageDomain,
	StageSocial,
	StageSimilarity,
	StageVisibility,
	StageTrademark,
	StageAnalysis,
}

var stageLabels = map[Stage]string{
	StageStarting:   "Preparing evaluation",
	StageDomain:     "Checking domain availability",
	StageSocial:     "Scanning social platforms",
	StageSimilarity: "Analyzing phonetic conflicts",
	StageVisibility: "Searching app stores & web",
	StageTrademark:  "Researching trademarks",
	StageAnalysis:   "Generating strategic report",
	StageDone:       "Report ready",
}

// Rank returns the position of s in the ordering starting < pipeline stages < done.
// Unknown stages return -1.
func (s Stage) Rank() int {
	switch s {
	case StageStarting:
		return 0
	case StageDone:
		return len(PipelineStages) + 1
	}
	for i, st := range PipelineStages {
		if st == s {
			return i + 1
		}
	}
	return -1
}

// Valid reports whether s belongs to the fixed enumeration.
func (s Stage) Valid() bool { return s.Rank() >= 0 }

// IsPipeline reports whether s is one of the real pipeline stages.
func (s Stage) IsPipeline() bool {
	r := s.Rank()
	return r > 0 && r <= len(PipelineStages)
}

// Label returns the human-readable description of the stage.
func (s Stage) Label() string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return string(s)
}
