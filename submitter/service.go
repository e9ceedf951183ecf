package submitter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hoursync/aggregate"
	"hoursync/everhour"
	"hoursync/timeentry"
	"hoursync/toggl"
)

type Params struct {
	From      time.Time
	To        time.Time
	ProjectID int64
	TaskID    string
	DayOrder  aggregate.DayOrder
}

func (p Params) validate() error {
	if p.ProjectID <= 0 {
		return fmt.Errorf("project id must be > 0, got %d", p.ProjectID)
	}
	if p.From.After(p.To) {
		return fmt.Errorf("invalid range: from %s is after to %s", p.From.Format(time.RFC3339), p.To.Format(time.RFC3339))
	}
	return nil
}

// Prepared holds the intermediate stages of one run.
type Prepared struct {
	Entries   []timeentry.Entry
	Groups    aggregate.DayGroups
	Summaries []aggregate.DaySummary
}

// Prepare fetches and aggregates without delivering anything.
func Prepare(ctx context.Context, source toggl.Client, params Params) (Prepared, error) {
	if source == nil {
		return Prepared{}, errors.New("time entry source is required")
	}
	if err := params.validate(); err != nil {
		return Prepared{}, err
	}

	entries, err := toggl.FetchProjectEntries(ctx, source, params.From, params.To, params.ProjectID)
	if err != nil {
		return Prepared{}, fmt.Errorf("fetch time entries: %w", err)
	}

	groups := aggregate.GroupAndSort(entries, params.DayOrder)
	return Prepared{
		Entries:   entries,
		Groups:    groups,
		Summaries: aggregate.Summarize(groups),
	}, nil
}

// Run fetches, aggregates and delivers one day summary per day to the task.
func (d *Deliverer) Run(ctx context.Context, source toggl.Client, params Params) (Prepared, Result, error) {
	if !everhour.ValidTaskID(params.TaskID) {
		return Prepared{}, Result{}, fmt.Errorf("invalid everhour task id %q", params.TaskID)
	}

	prepared, err := Prepare(ctx, source, params)
	if err != nil {
		return Prepared{}, Result{}, err
	}
	d.observer.EntriesFetched(len(prepared.Entries))

	result, err := d.Deliver(ctx, prepared.Summaries, params.TaskID)
	return prepared, result, err
}
