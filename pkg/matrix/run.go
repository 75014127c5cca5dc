package matrix

import (
	"context"
	"io"
	"maps"
	"strings"
	"time"

	"github.com/matzehuels/tav/pkg/proc"
	"github.com/matzehuels/tav/pkg/schedule"
)

const outputTail = 4 << 10

// Run is one iteration of a folder's matrix. It implements schedule.Run.
type Run struct {
	folder       *Folder
	it           iteration
	needsInstall bool

	step  int
	start time.Time
	out   *proc.Tail
}

var _ schedule.Run = (*Run)(nil)

// NeedsInstall reports whether the combination differs from what the
// folder last installed.
func (r *Run) NeedsInstall() bool { return r.needsInstall }

// Combo returns the package versions of this iteration.
func (r *Run) Combo() Combo { return r.it.combo }

// Continue advances the run: the first call installs, the second runs the
// test commands. Later calls yield Errored.
func (r *Run) Continue(ctx context.Context) <-chan schedule.Outcome {
	ch := make(chan schedule.Outcome, 1)
	step := r.step
	r.step++
	go func() {
		switch step {
		case 0:
			ch <- r.install(ctx)
		case 1:
			ch <- r.test(ctx)
		default:
			ch <- schedule.Errored
		}
	}()
	return ch
}

func (r *Run) runner(extra map[string]string) proc.Runner {
	env := maps.Clone(r.folder.opts.Env)
	if env == nil {
		env = make(map[string]string)
	}
	maps.Copy(env, extra)

	var w io.Writer = r.out
	if o := r.folder.opts.Output; o != nil {
		w = io.MultiWriter(r.out, o)
	}
	return proc.Runner{Dir: r.folder.dir, Env: env, Stdout: w, Stderr: w}
}

func (r *Run) install(ctx context.Context) schedule.Outcome {
	r.start = time.Now()
	r.out = proc.NewTail(outputTail)
	if !r.needsInstall {
		return schedule.Installed
	}

	opts := r.folder.opts
	argv := append([]string(nil), opts.Install...)
	for _, p := range r.it.combo {
		argv = append(argv, formatPin(opts.PinFormat, p))
	}
	opts.Logger.Debug("installing", "folder", r.folder.dir, "packages", r.it.combo.String())

	// A failed install leaves the folder in an unknown state.
	r.folder.setInstalled("")
	if err := r.runner(nil).Run(ctx, argv...); err != nil {
		r.finish(schedule.Errored, err)
		return schedule.Errored
	}
	r.folder.setInstalled(r.it.combo.String())
	return schedule.Installed
}

func (r *Run) test(ctx context.Context) schedule.Outcome {
	env := maps.Clone(r.it.test.Env)
	if env == nil {
		env = make(map[string]string)
	}
	env["TAV_TEST"] = r.it.test.Name
	env["TAV_PACKAGES"] = r.it.combo.String()
	runner := r.runner(env)

	for _, cmd := range r.it.test.Commands {
		r.folder.opts.Logger.Debug("running", "folder", r.folder.dir, "test", r.it.test.Name, "cmd", cmd)
		if err := runner.Shell(ctx, cmd); err != nil {
			outcome := schedule.Errored
			if proc.IsExit(err) {
				outcome = schedule.Failed
			}
			r.finish(outcome, err)
			return outcome
		}
	}
	r.finish(schedule.Passed, nil)
	return schedule.Passed
}

func (r *Run) finish(outcome schedule.Outcome, err error) {
	rec := Record{
		Folder:   r.folder.dir,
		Test:     r.it.test.Name,
		Packages: r.it.combo,
		Outcome:  outcome,
		Duration: time.Since(r.start),
	}
	if err != nil {
		rec.Err = err.Error()
		rec.Output = r.out.String()
	}
	r.folder.record(rec)
}

func formatPin(format string, p Pin) string {
	return strings.NewReplacer("{name}", p.Name, "{version}", p.Version).Replace(format)
}
