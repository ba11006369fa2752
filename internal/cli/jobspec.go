package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/panelarc/panelarc/internal/slide"
)

// slideJobSchema constrains slide job files. Jobs are CUE so that ref
// point lists can be generated with comprehensions instead of written
// out by hand.
const slideJobSchema = `
archive: string & !=""
mode:    *"archive" | "value"

// Cutoff version for value mode. Ignored in archive mode, where each
// reference point is its own cutoff.
as_of?: string

window_before: int & >=0
window_after:  *0 | int & >=0

ref_points: [...string]

computation: {
	name:  "count" | "sum" | "mean"
	field: *"" | string
}

fail_fast: *false | bool
workers:   *0 | int & >=0
`

// SlideJob is a decoded slide job file.
type SlideJob struct {
	Archive      string   `json:"archive"`
	Mode         string   `json:"mode"`
	AsOf         string   `json:"as_of,omitempty"`
	WindowBefore int64    `json:"window_before"`
	WindowAfter  int64    `json:"window_after"`
	RefPoints    []string `json:"ref_points"`
	Computation  struct {
		Name  string `json:"name"`
		Field string `json:"field"`
	} `json:"computation"`
	FailFast bool `json:"fail_fast"`
	Workers  int  `json:"workers"`
}

// LoadSlideJob reads a CUE slide job file and validates it against the
// job schema.
func LoadSlideJob(path string) (*SlideJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read slide job: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(slideJobSchema)
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("slide job schema: %w", err)
	}

	val := ctx.CompileBytes(data, cue.Filename(path))
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("parse slide job %s: %w", path, err)
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid slide job %s: %w", path, err)
	}

	var job SlideJob
	if err := unified.Decode(&job); err != nil {
		return nil, fmt.Errorf("decode slide job %s: %w", path, err)
	}
	if len(job.RefPoints) == 0 {
		return nil, fmt.Errorf("invalid slide job %s: ref_points must not be empty", path)
	}
	return &job, nil
}

// builtinFor resolves a job's computation. Split out so validate can
// check jobs without running them.
func builtinFor(job *SlideJob) (slide.Computation, error) {
	return slide.Builtin(job.Computation.Name, job.Computation.Field)
}
