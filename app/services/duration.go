package services

import (
	"context"
	"errors"
	"time"

	"tasktime/app/models"
	"tasktime/app/store"
)

// completedDuration sums completed entries over t and its descendants.
func completedDuration(ctx context.Context, tx store.Tx, t *models.Task) (int64, error) {
	ids, err := subtreeIDs(ctx, tx, t)
	if err != nil {
		return 0, err
	}
	return tx.SumCompletedDurations(ctx, ids)
}

// refreshDurations recomputes duration_seconds of the task and each of its
// ancestors from the raw entries. A task deleted in the same write is skipped.
func refreshDurations(ctx context.Context, tx store.Tx, taskID string, at time.Time) error {
	t, err := tx.GetTask(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	chain, err := ancestors(ctx, tx, t)
	if err != nil {
		return err
	}
	chain = append([]models.Task{*t}, chain...)
	for i := range chain {
		total, err := completedDuration(ctx, tx, &chain[i])
		if err != nil {
			return err
		}
		if err := tx.SetTaskDuration(ctx, chain[i].ID, total, at); err != nil {
			return err
		}
	}
	return nil
}

// currentDuration adds the elapsed time of running entries over t and its
// descendants to the completed total. The result depends on now.
func currentDuration(ctx context.Context, tx store.Tx, t *models.Task, now time.Time) (models.TaskDuration, error) {
	ids, err := subtreeIDs(ctx, tx, t)
	if err != nil {
		return models.TaskDuration{}, err
	}
	completed, err := tx.SumCompletedDurations(ctx, ids)
	if err != nil {
		return models.TaskDuration{}, err
	}
	running := true
	open, err := tx.ListTimeEntries(ctx, t.UserID, store.EntryFilter{TaskIDs: ids, Running: &running})
	if err != nil {
		return models.TaskDuration{}, err
	}
	out := models.TaskDuration{
		TaskID:           t.ID,
		CompletedSeconds: completed,
		CurrentSeconds:   completed,
		RunningEntries:   len(open),
	}
	for i := range open {
		out.CurrentSeconds += open[i].Elapsed(now)
	}
	return out, nil
}
