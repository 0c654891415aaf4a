package regress

import (
	"fmt"

	"github.com/openpdk/sg13/internal/cellcache"
	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/layout"
	"github.com/openpdk/sg13/internal/pcell"
	"github.com/openpdk/sg13/internal/tech"
	"github.com/openpdk/sg13/internal/verify"
)

// Outcome is the result for one cell in a run.
type Outcome struct {
	Name   string
	Key    string
	Status CellStatus
	Result *verify.Result // nil for missing and updated
}

// Runner drives a regression run: synthesize each spec through the
// cache, then check against or update the snapshot store. A Journal
// is optional; when set, every outcome is recorded.
type Runner struct {
	PDK     *tech.Tech
	Cache   *cellcache.Cache
	Store   *Store
	Journal *Journal
}

func (r *Runner) synth(spec *device.Spec) (*layout.Cell, error) {
	return r.Cache.Get(spec, func(s *device.Spec) (*layout.Cell, error) {
		return pcell.Synthesize(r.PDK, s)
	})
}

// Check synthesizes every spec and compares it to its snapshot. The
// run covers all specs even when early ones mismatch; only
// infrastructure failures (unreadable store, journal errors) abort.
func (r *Runner) Check(specs []*device.Spec) ([]Outcome, error) {
	runID, err := r.beginRun("check")
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(specs))
	for _, spec := range specs {
		cell, err := r.synth(spec)
		if err != nil {
			return outcomes, fmt.Errorf("synthesize %s: %w", spec.Key(), err)
		}

		out := Outcome{Name: cell.Name, Key: cell.Key}
		res, err := r.Store.Check(cell)
		switch {
		case err == nil && res.Equivalent:
			out.Status = StatusMatch
			out.Result = res
		case err == nil:
			out.Status = StatusMismatch
			out.Result = res
		default:
			if _, ok := IsMissingReference(err); !ok {
				return outcomes, err
			}
			out.Status = StatusMissing
		}

		if err := r.record(runID, out); err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

// Update synthesizes every spec and records it as the new reference,
// unconditionally overwriting existing snapshots.
func (r *Runner) Update(specs []*device.Spec) ([]Outcome, error) {
	runID, err := r.beginRun("update")
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, 0, len(specs))
	for _, spec := range specs {
		cell, err := r.synth(spec)
		if err != nil {
			return outcomes, fmt.Errorf("synthesize %s: %w", spec.Key(), err)
		}
		if err := r.Store.Update(cell); err != nil {
			return outcomes, err
		}
		out := Outcome{Name: cell.Name, Key: cell.Key, Status: StatusUpdated}
		if err := r.record(runID, out); err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func (r *Runner) beginRun(mode string) (string, error) {
	if r.Journal == nil {
		return "", nil
	}
	return r.Journal.BeginRun(mode)
}

func (r *Runner) record(runID string, out Outcome) error {
	if r.Journal == nil {
		return nil
	}
	var area float64
	if out.Result != nil {
		area = out.Result.TotalArea
	}
	return r.Journal.RecordCell(runID, out.Name, out.Key, out.Status, area)
}
