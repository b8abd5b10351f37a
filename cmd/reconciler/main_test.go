package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arleytruth/Magicwraptool-sub001/internal/pkg/lock"
)

type busyLocker struct {
	calls []string
}

func (l *busyLocker) Lock(ctx context.Context, name string) (func(), error) {
	l.calls = append(l.calls, name)
	return nil, fmt.Errorf("%w: %s", lock.ErrNotAcquired, name)
}

func TestRunOnceSkipsWhenAnotherInstanceHoldsLock(t *testing.T) {
	locker := &busyLocker{}

	// a nil reconciler would panic if the pass ran
	assert.NotPanics(t, func() { runOnce(context.Background(), nil, locker) })
	assert.Equal(t, []string{runLockKey}, locker.calls)
}
