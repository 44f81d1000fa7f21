package saga

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status represents the current status of a saga
type Status string

const (
	StatusPending      Status = "pending"
	StatusRunning      Status = "running"
	StatusCompleted    Status = "completed"
	StatusCompensating Status = "compensating"
	StatusCompensated  Status = "compensated"
)

// StepStatus represents the status of a saga step
type StepStatus string

const (
	StepStatusCompleted          StepStatus = "completed"
	StepStatusFailed             StepStatus = "failed"
	StepStatusCompensated        StepStatus = "compensated"
	StepStatusCompensationFailed StepStatus = "compensation_failed"
)

// ExecuteFunc runs a step. Returned keys are merged into the saga data for later steps.
type ExecuteFunc func(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error)

// CompensateFunc undoes a completed step
type CompensateFunc func(ctx context.Context, data map[string]interface{}) error

// Step represents a single step in a saga
type Step struct {
	Name       string
	Execute    ExecuteFunc
	Compensate CompensateFunc // nil when the step has nothing to undo
	Timeout    time.Duration
	Retries    int
}

// StepResult records the outcome of one step
type StepResult struct {
	StepName   string
	Status     StepStatus
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Definition defines a saga with its steps
type Definition struct {
	Name    string
	Steps   []*Step
	Timeout time.Duration
}

// NewDefinition creates a new saga definition
func NewDefinition(name string) *Definition {
	return &Definition{
		Name:    name,
		Steps:   make([]*Step, 0),
		Timeout: time.Minute,
	}
}

// AddStep adds a step to the saga definition
func (d *Definition) AddStep(step *Step) *Definition {
	if step.Timeout == 0 {
		step.Timeout = 30 * time.Second
	}
	d.Steps = append(d.Steps, step)
	return d
}

// WithTimeout sets the overall saga timeout
func (d *Definition) WithTimeout(timeout time.Duration) *Definition {
	d.Timeout = timeout
	return d
}

// Instance is one execution of a Definition
type Instance struct {
	ID           string
	DefinitionID string
	Status       Status
	Data         map[string]interface{}
	StepResults  []*StepResult
	CreatedAt    time.Time
	UpdatedAt    time.Time

	mu sync.RWMutex
}

// NewInstance creates a new saga instance
func NewInstance(definitionID string, initialData map[string]interface{}) *Instance {
	now := time.Now()
	data := make(map[string]interface{}, len(initialData))
	for k, v := range initialData {
		data[k] = v
	}
	return &Instance{
		ID:           uuid.New().String(),
		DefinitionID: definitionID,
		Status:       StatusPending,
		Data:         data,
		StepResults:  make([]*StepResult, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SetStatus updates the saga status
func (i *Instance) SetStatus(status Status) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Status = status
	i.UpdatedAt = time.Now()
}

// GetStatus returns the current saga status
func (i *Instance) GetStatus() Status {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.Status
}

func (i *Instance) addStepResult(result *StepResult) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.StepResults = append(i.StepResults, result)
	i.UpdatedAt = time.Now()
}

// UpdateData merges new data into the saga data
func (i *Instance) UpdateData(data map[string]interface{}) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for k, v := range data {
		i.Data[k] = v
	}
	i.UpdatedAt = time.Now()
}

// GetData returns a copy of the saga data
func (i *Instance) GetData() map[string]interface{} {
	i.mu.RLock()
	defer i.mu.RUnlock()
	result := make(map[string]interface{}, len(i.Data))
	for k, v := range i.Data {
		result[k] = v
	}
	return result
}

// String reads a string value from saga data
func String(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

// Error is returned when a step fails. It unwraps to the step's own error,
// so callers keep classifying failures with errors.Is and errors.As.
type Error struct {
	SagaID             string
	Step               string
	Err                error
	CompensationErrors []error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("saga step %s failed: %v", e.Step, e.Err)
	if len(e.CompensationErrors) > 0 {
		parts := make([]string, len(e.CompensationErrors))
		for i, ce := range e.CompensationErrors {
			parts[i] = ce.Error()
		}
		msg += " (compensation errors: " + strings.Join(parts, "; ") + ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Compensated reports whether every compensation succeeded
func (e *Error) Compensated() bool {
	return len(e.CompensationErrors) == 0
}

// FailedStep returns the failing step name when err came from a saga
func FailedStep(err error) (string, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Step, true
	}
	return "", false
}
