package quiz

import (
	"fmt"

	"github.com/abhisek/gameiq/internal/store"
)

// CanGenerate decides whether a new generated quiz may be created. It needs
// a passed CORE and, once any generated quiz exists, a passed latest one.
func CanGenerate(core, latestGenerated *store.Session) bool {
	if core == nil || !Passed(core.BestScore) {
		return false
	}
	return latestGenerated == nil || Passed(latestGenerated.BestScore)
}

// Stage is a step of the unlock sequence for one (sport, position).
type Stage string

const (
	StageNoCore       Stage = "no_core"
	StageCoreUnpassed Stage = "core_unpassed"
	StageCoreUnlocked Stage = "core_unlocked"
	StageGenUnpassed  Stage = "generated_unpassed"
	StageGenUnlocked  Stage = "generated_unlocked"
)

// Progress describes where a user stands in the unlock sequence.
type Progress struct {
	Stage       Stage `json:"stage"`
	Sequence    int   `json:"sequence"` // latest generated quiz number, 0 when none
	BestScore   int   `json:"bestScore"`
	CanGenerate bool  `json:"canGenerate"`

	// Filled in by Manager.Progress.
	QuestionsPerQuiz int  `json:"questionsPerQuiz,omitempty"`
	AIAvailable      bool `json:"aiAvailable"`
}

// ProgressOf derives the Progress value from the same inputs as
// CanGenerate.
func ProgressOf(core, latestGenerated *store.Session) Progress {
	p := Progress{CanGenerate: CanGenerate(core, latestGenerated)}
	switch {
	case core == nil:
		p.Stage = StageNoCore
	case latestGenerated == nil:
		p.BestScore = core.BestScore
		p.Stage = StageCoreUnpassed
		if Passed(core.BestScore) {
			p.Stage = StageCoreUnlocked
		}
	default:
		p.Sequence = latestGenerated.Sequence
		p.BestScore = latestGenerated.BestScore
		p.Stage = StageGenUnpassed
		if Passed(latestGenerated.BestScore) {
			p.Stage = StageGenUnlocked
		}
		// A generated quiz can only exist after CORE was passed.
		if !Passed(core.BestScore) {
			p = Progress{Stage: StageCoreUnpassed, BestScore: core.BestScore}
		}
	}
	return p
}

func (p Progress) String() string {
	switch p.Stage {
	case StageNoCore:
		return "no core quiz yet"
	case StageCoreUnpassed:
		return fmt.Sprintf("core quiz not passed (best %d%%, need %d%%)", p.BestScore, PassThreshold)
	case StageCoreUnlocked:
		return "core quiz passed, next quiz unlocked"
	case StageGenUnpassed:
		return fmt.Sprintf("quiz #%d not passed (best %d%%, need %d%%)", p.Sequence, p.BestScore, PassThreshold)
	case StageGenUnlocked:
		return fmt.Sprintf("quiz #%d passed, next quiz unlocked", p.Sequence)
	}
	return string(p.Stage)
}
