package domain

import (
	"time"
)

// RunStatus represents the overall status of a release run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// StepStatus represents the status of an individual step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepType identifies a step of the release sequence
type StepType string

const (
	StepTypePublish       StepType = "publish"
	StepTypeExtract       StepType = "extract_version"
	StepTypeTag           StepType = "create_tag"
	StepTypePush          StepType = "push_tag"
	StepTypeGithubRelease StepType = "github_release"
)

// RunState records one release run so a later invocation can inspect
// what happened and where it stopped.
type RunState struct {
	SessionID string       `json:"session_id"`
	StartedAt time.Time    `json:"started_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	CrateName string       `json:"crate_name,omitempty"`
	Version   string       `json:"version,omitempty"`
	TagName   string       `json:"tag_name,omitempty"`
	Steps     []StepRecord `json:"steps"`
	Status    RunStatus    `json:"status"`
	Error     string       `json:"error,omitempty"`
}

// StepRecord represents a single step in the run
type StepRecord struct {
	Type        StepType   `json:"type"`
	Status      StepStatus `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// NewRunState creates a new run state
func NewRunState(sessionID string) *RunState {
	now := time.Now()
	return &RunState{
		SessionID: sessionID,
		StartedAt: now,
		UpdatedAt: now,
		Steps:     []StepRecord{},
		Status:    RunStatusPending,
	}
}

// AddStep appends a pending step record
func (rs *RunState) AddStep(stepType StepType) {
	rs.Steps = append(rs.Steps, StepRecord{
		Type:      stepType,
		Status:    StepStatusPending,
		StartedAt: time.Now(),
	})
	rs.UpdatedAt = time.Now()
}

// MarkStepStarted marks a pending step as running
func (rs *RunState) MarkStepStarted(stepType StepType) {
	for i := range rs.Steps {
		if rs.Steps[i].Type == stepType && rs.Steps[i].Status == StepStatusPending {
			rs.Steps[i].Status = StepStatusRunning
			rs.Steps[i].StartedAt = time.Now()
			rs.UpdatedAt = time.Now()
			break
		}
	}
}

// MarkStepCompleted marks a running step as completed
func (rs *RunState) MarkStepCompleted(stepType StepType) {
	now := time.Now()
	for i := range rs.Steps {
		if rs.Steps[i].Type == stepType && rs.Steps[i].Status == StepStatusRunning {
			rs.Steps[i].Status = StepStatusCompleted
			rs.Steps[i].CompletedAt = &now
			rs.UpdatedAt = now
			break
		}
	}
}

// MarkStepFailed marks a running step as failed and fails the run.
// Steps that never started stay pending so the record shows they were
// skipped by the first failure.
func (rs *RunState) MarkStepFailed(stepType StepType, err error) {
	now := time.Now()
	for i := range rs.Steps {
		if rs.Steps[i].Type == stepType && rs.Steps[i].Status == StepStatusRunning {
			rs.Steps[i].Status = StepStatusFailed
			rs.Steps[i].CompletedAt = &now
			rs.Steps[i].Error = err.Error()
			rs.UpdatedAt = now
			break
		}
	}
	rs.Status = RunStatusFailed
	rs.Error = err.Error()
}

// MarkStepSkipped marks a pending step as skipped
func (rs *RunState) MarkStepSkipped(stepType StepType) {
	for i := range rs.Steps {
		if rs.Steps[i].Type == stepType && rs.Steps[i].Status == StepStatusPending {
			rs.Steps[i].Status = StepStatusSkipped
			rs.UpdatedAt = time.Now()
			break
		}
	}
}

// LastStep returns the most recent step record
func (rs *RunState) LastStep() *StepRecord {
	if len(rs.Steps) == 0 {
		return nil
	}
	return &rs.Steps[len(rs.Steps)-1]
}
