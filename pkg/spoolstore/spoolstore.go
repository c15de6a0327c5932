// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package spoolstore persists the remaining spool length across restarts.
// The file is a flat YAML mapping with one key per line:
//
//	wire_left: 812.5
package spoolstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"
	"gopkg.in/yaml.v3"
)

// ErrNoValue is returned by Load when the file has no wire_left key
var ErrNoValue = errors.New("no wire_left value")

type record struct {
	WireLeft *float64 `yaml:"wire_left"`
}

// Store reads and writes the spool file
type Store struct {
	path string
}

// New creates a store backed by path
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Load returns the saved wire length in feet
func (s *Store) Load() (float64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", s.path, err)
	}
	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return 0, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if rec.WireLeft == nil {
		return 0, fmt.Errorf("%s: %w", s.path, ErrNoValue)
	}
	return *rec.WireLeft, nil
}

// Save writes feet to the file, replacing it atomically
func (s *Store) Save(feet float64) error {
	data, err := yaml.Marshal(record{WireLeft: &feet})
	if err != nil {
		return fmt.Errorf("encoding spool record: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".spool-*")
	if err != nil {
		return fmt.Errorf("saving %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("saving %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("saving %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("saving %s: %w", s.path, err)
	}
	return nil
}

// Saver writes the current spool length every Interval
type Saver struct {
	Store    *Store
	Interval time.Duration
	// Source returns the value to save
	Source func() float64
	// Fatal handles a failed periodic save. Defaults to glog.Fatalf.
	Fatal func(format string, args ...interface{})
}

// Run saves on every tick until ctx is done, then saves once more
func (sv *Saver) Run(ctx context.Context) error {
	fatal := sv.Fatal
	if fatal == nil {
		fatal = glog.Fatalf
	}

	ticker := time.NewTicker(sv.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := sv.Store.Save(sv.Source()); err != nil {
				glog.Errorf("spoolstore: final save: %v", err)
			}
			return ctx.Err()
		case <-ticker.C:
			feet := sv.Source()
			if err := sv.Store.Save(feet); err != nil {
				fatal("spoolstore: %v", err)
				return err
			}
			glog.V(2).Infof("spoolstore: saved %.1f ft", feet)
		}
	}
}
