// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Config defines practice settings.
type Config struct {
	Words        int
	Duration     int
	WordListPath string
	Seed         int64
}

// Status is the lifecycle state of a trial.
type Status int

// Trial statuses. Transitions only move forward: Idle, Running, Finished.
const (
	StatusIdle Status = iota
	StatusRunning
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status as its name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = StatusIdle
	case "running":
		*s = StatusRunning
	case "finished":
		*s = StatusFinished
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// Metrics holds the live speed and accuracy of a trial.
type Metrics struct {
	WPM      int `json:"wpm"`
	Accuracy int `json:"accuracy"`
}

// InitialMetrics is the value shown before any input.
var InitialMetrics = Metrics{WPM: 0, Accuracy: 100}

// Mistake records a typed word that differs from its target word.
type Mistake struct {
	WordIndex int    `json:"wordIndex"`
	Expected  string `json:"expected"`
	Typed     string `json:"typed"`
}

// TrialResult captures a finished trial.
type TrialResult struct {
	ID             string    `json:"id"`
	WPM            int       `json:"wpm"`
	Accuracy       int       `json:"accuracy"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
	Timestamp      time.Time `json:"timestamp"`
}

// Series is a chart-friendly projection of trial history.
type Series struct {
	WPM      []int    `json:"wpm"`
	Accuracy []int    `json:"accuracy"`
	Labels   []string `json:"labels"`
}

// MistakeCount aggregates how often an expected word was mistyped.
type MistakeCount struct {
	Expected string
	Count    int
}
