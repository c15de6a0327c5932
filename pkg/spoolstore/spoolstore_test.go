// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package spoolstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spool.yaml")
	st := New(path)

	require.NoError(t, st.Save(812.5))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "wire_left: 812.5\n", string(data))

	feet, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, 812.5, feet)
}

func TestStore_LoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := New(filepath.Join(dir, "missing.yaml")).Load()
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("other: 1\n"), 0o644))
	_, err = New(empty).Load()
	assert.ErrorIs(t, err, ErrNoValue)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("wire_left: [1, 2\n"), 0o644))
	_, err = New(bad).Load()
	assert.Error(t, err)
}

func TestSaver_PeriodicAndFinal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spool.yaml")
	st := New(path)

	var value atomic.Int64
	value.Store(500)
	sv := &Saver{
		Store:    st,
		Interval: 5 * time.Millisecond,
		Source:   func() float64 { return float64(value.Load()) },
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sv.Run(ctx) }()

	require.Eventually(t, func() bool {
		feet, err := st.Load()
		return err == nil && feet == 500
	}, time.Second, time.Millisecond)

	value.Store(250)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	feet, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, 250.0, feet)
}

func TestSaver_WriteFailureIsFatal(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "no", "such", "dir", "spool.yaml"))

	var fatal string
	sv := &Saver{
		Store:    st,
		Interval: time.Millisecond,
		Source:   func() float64 { return 1 },
		Fatal:    func(format string, args ...interface{}) { fatal = fmt.Sprintf(format, args...) },
	}

	err := sv.Run(context.Background())
	assert.Error(t, err)
	assert.Contains(t, fatal, "spoolstore:")
}
