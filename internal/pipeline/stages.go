package pipeline

import (
	"fmt"
	"log"
)

// Stage is one state of the per-upload pipeline machine.
type Stage string

const (
	StageIdle             Stage = "idle"
	StageUploading        Stage = "uploading"
	StageFramesExtracting Stage = "frames_extracting"
	StageAnalyzingRemote  Stage = "analyzing_remote"
	StageAggregating      Stage = "aggregating"
	StagePersisting       Stage = "persisting"
	StageComplete         Stage = "complete"
	StageFailed           Stage = "failed"
)

// forward lists the only legal non-failure successor of each stage.
var forward = map[Stage]Stage{
	StageIdle:             StageUploading,
	StageUploading:        StageFramesExtracting,
	StageFramesExtracting: StageAnalyzingRemote,
	StageAnalyzingRemote:  StageAggregating,
	StageAggregating:      StagePersisting,
	StagePersisting:       StageComplete,
}

// Machine tracks one upload attempt through the pipeline. Complete and
// Failed are terminal; a new attempt gets a fresh machine.
type Machine struct {
	stage      Stage
	failReason string
	onChange   func(stage Stage)
}

func NewMachine(onChange func(stage Stage)) *Machine {
	return &Machine{stage: StageIdle, onChange: onChange}
}

func (m *Machine) Stage() Stage { return m.stage }

// FailReason is the recorded cause when the machine is in Failed.
func (m *Machine) FailReason() string { return m.failReason }

func (m *Machine) Terminal() bool {
	return m.stage == StageComplete || m.stage == StageFailed
}

// Advance moves to the given stage; only the next forward stage is legal.
func (m *Machine) Advance(next Stage) error {
	if m.Terminal() {
		return fmt.Errorf("cannot advance from terminal stage %s", m.stage)
	}
	if forward[m.stage] != next {
		return fmt.Errorf("illegal transition %s -> %s", m.stage, next)
	}
	m.stage = next
	log.Printf("[PIPELINE] Stage -> %s", next)
	if m.onChange != nil {
		m.onChange(next)
	}
	return nil
}

// Fail moves to the terminal Failed state from any non-terminal stage.
func (m *Machine) Fail(reason string) {
	if m.Terminal() {
		return
	}
	m.stage = StageFailed
	m.failReason = reason
	log.Printf("[PIPELINE] Stage -> failed: %s", reason)
	if m.onChange != nil {
		m.onChange(StageFailed)
	}
}
