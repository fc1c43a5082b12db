package pipeline

import "testing"

func TestMachineHappyPath(t *testing.T) {
	var seen []Stage
	machine := NewMachine(func(stage Stage) { seen = append(seen, stage) })

	order := []Stage{StageUploading, StageFramesExtracting, StageAnalyzingRemote, StageAggregating, StagePersisting, StageComplete}
	for _, stage := range order {
		if err := machine.Advance(stage); err != nil {
			t.Fatalf("Failed to advance to %s: %v", stage, err)
		}
	}

	if !machine.Terminal() {
		t.Error("Expected Complete to be terminal")
	}
	if len(seen) != len(order) {
		t.Errorf("Expected %d stage notifications, got %d", len(order), len(seen))
	}
}

func TestMachineRejectsSkippedStage(t *testing.T) {
	machine := NewMachine(nil)

	if err := machine.Advance(StageAnalyzingRemote); err == nil {
		t.Error("Expected error advancing Idle -> AnalyzingRemote directly")
	}
	if machine.Stage() != StageIdle {
		t.Errorf("Expected machine still Idle, got %s", machine.Stage())
	}
}

func TestMachineFailIsTerminal(t *testing.T) {
	machine := NewMachine(nil)

	if err := machine.Advance(StageUploading); err != nil {
		t.Fatalf("Failed to advance: %v", err)
	}

	machine.Fail("upload failed: disk full")

	if !machine.Terminal() {
		t.Error("Expected Failed to be terminal")
	}
	if machine.FailReason() != "upload failed: disk full" {
		t.Errorf("Unexpected fail reason: %s", machine.FailReason())
	}
	if err := machine.Advance(StageFramesExtracting); err == nil {
		t.Error("Expected error advancing out of Failed")
	}

	// A second Fail must not overwrite the recorded reason.
	machine.Fail("other")
	if machine.FailReason() != "upload failed: disk full" {
		t.Errorf("Fail reason overwritten: %s", machine.FailReason())
	}
}

func TestMachineCompleteRejectsFurtherAdvance(t *testing.T) {
	machine := NewMachine(nil)
	for _, stage := range []Stage{StageUploading, StageFramesExtracting, StageAnalyzingRemote, StageAggregating, StagePersisting, StageComplete} {
		if err := machine.Advance(stage); err != nil {
			t.Fatalf("Failed to advance to %s: %v", stage, err)
		}
	}

	if err := machine.Advance(StageUploading); err == nil {
		t.Error("Expected error advancing out of Complete")
	}
}
