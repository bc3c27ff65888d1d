package pipeline

type Stage string

const (
	StageExtracting    Stage = "extracting"
	StageConsolidating Stage = "consolidating"
	StageFiltering     Stage = "filtering"
	StageReporting     Stage = "reporting"
	StageDelivering    Stage = "delivering"
	StagePersisting    Stage = "persisting"
	StageDone          Stage = "done"
)

// Stages lists the stages of a complete run in order.
var Stages = []Stage{
	StageExtracting,
	StageConsolidating,
	StageFiltering,
	StageReporting,
	StageDelivering,
	StagePersisting,
	StageDone,
}

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeAborted   Outcome = "aborted"
	OutcomeFailed    Outcome = "failed"
)

// Update is sent to observers on every stage transition. Result is set only
// on the final StageDone update.
type Update struct {
	RunID   string
	Stage   Stage
	Message string
	Result  *Result
}

// Observer follows the progress of a run. Observers are called synchronously
// from the pipeline and must not block.
type Observer interface {
	Observe(update Update)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(update Update)

func (f ObserverFunc) Observe(update Update) {
	f(update)
}
