package etl

import (
	"context"
	"time"
)

// Stage identifies one step of a pipeline run, for logging and for
// StageError.
type Stage string

const (
	StageReadUsers    Stage = "read_users"
	StageReadProjects Stage = "read_projects"
	StageMask         Stage = "mask"
	StageJoin         Stage = "join"
	StageAggregate    Stage = "aggregate"
	StageWrite        Stage = "write"
)

// Source reads the two source tables. Reads are full-table projections
// with no filtering.
type Source interface {
	ReadUsers(ctx context.Context) ([]UserRecord, error)
	ReadProjects(ctx context.Context) ([]ProjectRecord, error)
}

// Sink replaces the entire contents of the destination table with the
// given rows in one logical write.
type Sink interface {
	WriteProjectCounts(ctx context.Context, rows []ProjectCount) error
}

// RunReport summarizes a completed run.
type RunReport struct {
	UsersRead    int
	ProjectsRead int
	JoinedRows   int
	OutputRows   int
	StartedAt    time.Time
	FinishedAt   time.Time
}

func (r *RunReport) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// Pipeline runs the five stages strictly in order, each stage fully
// materializing its output before the next begins. A run recomputes the
// destination from source state at read time; nothing carries over
// between runs.
//
// The pipeline does not own the engine handle — the app layer acquires
// the pool before constructing a Pipeline and releases it after Run
// returns, on every exit path.
type Pipeline struct {
	source Source
	sink   Sink
	logger Logger
	clock  Clock
	policy MaskPolicy
}

// NewPipeline creates a Pipeline with the provided dependencies.
func NewPipeline(source Source, sink Sink, logger Logger, clock Clock, policy MaskPolicy) *Pipeline {
	return &Pipeline{
		source: source,
		sink:   sink,
		logger: logger,
		clock:  clock,
		policy: policy,
	}
}

// Run executes one pipeline run. On the first stage failure it stops
// and returns a StageError wrapping the cause; later stages are not
// attempted and the destination is left untouched unless the write
// stage itself was reached.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{StartedAt: p.clock.Now()}

	users, err := p.source.ReadUsers(ctx)
	if err != nil {
		return nil, p.fail(StageReadUsers, err)
	}
	report.UsersRead = len(users)
	p.logger.Info("users source loaded", "rows", len(users))

	projects, err := p.source.ReadProjects(ctx)
	if err != nil {
		return nil, p.fail(StageReadProjects, err)
	}
	report.ProjectsRead = len(projects)
	p.logger.Info("projects source loaded", "rows", len(projects))

	masked, err := MaskUsers(users, p.policy)
	if err != nil {
		return nil, p.fail(StageMask, err)
	}
	p.logger.Info("emails masked", "rows", len(masked), "policy", string(p.policy))

	joined := JoinUserProjects(masked, projects)
	report.JoinedRows = len(joined)
	p.logger.Info("users joined with projects", "rows", len(joined))

	counts := CountProjects(joined)
	report.OutputRows = len(counts)
	p.logger.Info("project counts aggregated", "groups", len(counts))

	if err := p.sink.WriteProjectCounts(ctx, counts); err != nil {
		return nil, p.fail(StageWrite, err)
	}
	p.logger.Info("destination overwritten", "rows", len(counts))

	report.FinishedAt = p.clock.Now()
	return report, nil
}

func (p *Pipeline) fail(stage Stage, err error) error {
	p.logger.Error("pipeline stage failed", "stage", string(stage), "error", err.Error())
	return &StageError{Stage: stage, Err: err}
}
