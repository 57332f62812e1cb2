package models

import (
	"context"
	"errors"
	"time"
)

// Registry is the part of a storage engine that Save and Delete drive.
type Registry interface {
	New(ctx context.Context, e Entity) error
	Save(ctx context.Context) error
	Delete(ctx context.Context, e Entity) error
}

// Save refreshes e's update time, registers e with r and flushes r. The flush
// covers everything registered with r, not only e. Errors from r are returned
// as is, and leave e's update time as it was.
func Save(ctx context.Context, r Registry, e Entity) error {
	return saveAt(ctx, r, e, time.Now())
}

func saveAt(ctx context.Context, r Registry, e Entity, now time.Time) error {
	b := e.Meta()
	previous := b.UpdatedAt
	b.touch(now)
	if err := r.New(ctx, e); err != nil {
		b.UpdatedAt = previous
		return err
	}
	if err := r.Save(ctx); err != nil {
		b.UpdatedAt = previous
		return err
	}
	return nil
}

// Delete removes e from r and flushes r. When the flush fails, e is
// registered again so that r keeps it.
func Delete(ctx context.Context, r Registry, e Entity) error {
	if err := r.Delete(ctx, e); err != nil {
		return err
	}
	if err := r.Save(ctx); err != nil {
		if rerr := r.New(ctx, e); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}
	return nil
}
