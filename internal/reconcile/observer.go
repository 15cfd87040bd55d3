package reconcile

// Stage names reported in Events.
const (
	StagePrepare   = "prepare"
	StageMatch     = "match"
	StagePartition = "partition"
)

// Event is a diagnostic report emitted while an operation runs.
// Fields that do not apply to a stage are left zero.
type Event struct {
	Op          string // Operation name, e.g. "split"
	Stage       string
	Source      string // Table name for per-source stages
	Rows        int
	Duplicates  int
	ByDOI       int
	ByTitleYear int
	Err         error
}

// Observer receives diagnostic events. Implementations must not retain
// the records they are told about; events carry counts only.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) {
	f(e)
}

type nopObserver struct{}

func (nopObserver) Observe(Event) {}
