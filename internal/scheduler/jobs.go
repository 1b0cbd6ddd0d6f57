package scheduler

// FuncJob adapts a plain function into a Job.
type FuncJob struct {
	name string
	fn   func() error
}

// NewFuncJob wraps fn as a named job.
func NewFuncJob(name string, fn func() error) *FuncJob {
	return &FuncJob{name: name, fn: fn}
}

func (j *FuncJob) Name() string { return j.name }

func (j *FuncJob) Run() error { return j.fn() }
