package bench

import "time"

// ConnConfig is a backend connection target.
type ConnConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// BenchParams controls one benchmark invocation.
type BenchParams struct {
	Queries     int           // measured iterations per definition
	Concurrency int           // fixed worker pool size
	Warmup      int           // untimed iterations, errors swallowed
	SampleSize  int           // records/values pulled per value pool at startup
	Runs        int           // number of full runs for median (0/1 = single run)
	Timeout     time.Duration // per-call deadline at the data-access boundary
}

// Outcome classifies one iteration. Empty matches are successes with a
// zero-size answer set; they must stay distinguishable from failures in
// the statistics.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeEmpty
	OutcomeFailure
)

// IterationResult is the per-iteration outcome record. Errors are
// carried as data, not control flow, so the runner's swallow/count
// policy stays explicit and testable.
type IterationResult struct {
	Duration time.Duration
	Results  int
	Outcome  Outcome
	Err      error
}

// QueryStats is the derived per-definition report row. A definition
// with zero successful iterations reports all derived values as zero so
// a summary row can always be rendered.
type QueryStats struct {
	Name     string
	Total    int
	Success  int
	Failures int
	Empty    int // successful iterations that matched nothing
	Duration time.Duration

	// Throughput is the serial-equivalent rate 1000/meanMillis; QPS is
	// the wall-clock aggregate across workers.
	Throughput float64
	QPS        float64
	AvgResults float64

	LatencyAvg time.Duration
	LatencyMin time.Duration
	LatencyMax time.Duration
	LatencyP50 time.Duration
	LatencyP75 time.Duration
	LatencyP90 time.Duration
	LatencyP95 time.Duration
	LatencyP99 time.Duration

	// ConfigErr is set when the definition failed validation or filter
	// resolution before iterations could run; the row still renders.
	ConfigErr string
}

// Report is the outcome of one full run across all definitions.
type Report struct {
	RunID    string
	Stats    []QueryStats
	Duration time.Duration
}
