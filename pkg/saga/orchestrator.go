package saga

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Orchestrator runs saga definitions and compensates completed steps on failure
type Orchestrator struct {
	definitions map[string]*Definition
	store       Store
	logger      Logger
	mu          sync.RWMutex
}

// OrchestratorConfig holds configuration for the orchestrator
type OrchestratorConfig struct {
	Store  Store
	Logger Logger
}

// NewOrchestrator creates a new saga orchestrator
func NewOrchestrator(cfg *OrchestratorConfig) *Orchestrator {
	if cfg == nil {
		cfg = &OrchestratorConfig{}
	}

	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = NoOpLogger{}
	}

	return &Orchestrator{
		definitions: make(map[string]*Definition),
		store:       store,
		logger:      logger,
	}
}

// RegisterDefinition registers a saga definition
func (o *Orchestrator) RegisterDefinition(def *Definition) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.definitions[def.Name]; exists {
		return fmt.Errorf("saga definition %s already registered", def.Name)
	}

	o.definitions[def.Name] = def
	return nil
}

// GetDefinition retrieves a saga definition by name
func (o *Orchestrator) GetDefinition(name string) (*Definition, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	def, exists := o.definitions[name]
	if !exists {
		return nil, fmt.Errorf("saga definition %s not found", name)
	}
	return def, nil
}

// Execute runs the named definition to completion.
// On failure it returns a *Error once compensation has finished.
func (o *Orchestrator) Execute(ctx context.Context, definitionName string, initialData map[string]interface{}) (*Instance, error) {
	def, err := o.GetDefinition(definitionName)
	if err != nil {
		return nil, err
	}

	instance := NewInstance(def.Name, initialData)
	if err := o.store.Save(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to save saga instance: %w", err)
	}
	defer func() {
		if err := o.store.Delete(context.WithoutCancel(ctx), instance.ID); err != nil {
			o.logger.Warn("Failed to release saga instance", "saga_id", instance.ID, "error", err)
		}
	}()

	sagaCtx, cancel := context.WithTimeout(ctx, def.Timeout)
	defer cancel()

	return o.run(sagaCtx, def, instance)
}

func (o *Orchestrator) run(ctx context.Context, def *Definition, instance *Instance) (*Instance, error) {
	instance.SetStatus(StatusRunning)

	for _, step := range def.Steps {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("Saga cancelled", "saga_id", instance.ID, "saga", def.Name, "step", step.Name)
			return instance, o.compensate(ctx, def, instance, step.Name, err)
		}

		result, data, err := o.executeStep(ctx, step, instance)
		instance.addStepResult(result)

		if err != nil {
			o.logger.Error("Saga step failed", "saga_id", instance.ID, "saga", def.Name, "step", step.Name, "error", err)
			return instance, o.compensate(ctx, def, instance, step.Name, err)
		}

		if data != nil {
			instance.UpdateData(data)
		}
	}

	instance.SetStatus(StatusCompleted)
	o.logger.Info("Saga completed", "saga_id", instance.ID, "saga", def.Name)
	return instance, nil
}

// executeStep runs one step with its timeout and retry budget
func (o *Orchestrator) executeStep(ctx context.Context, step *Step, instance *Instance) (*StepResult, map[string]interface{}, error) {
	result := &StepResult{
		StepName:  step.Name,
		StartedAt: time.Now(),
	}

	attempts := step.Retries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
retry:
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			o.logger.Info("Retrying saga step", "saga_id", instance.ID, "step", step.Name, "attempt", attempt+1)
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				break retry
			case <-time.After(time.Duration(attempt*100) * time.Millisecond):
			}
		}

		stepCtx, cancel := context.WithTimeout(ctx, step.Timeout)
		data, err := step.Execute(stepCtx, instance.GetData())
		cancel()

		if err == nil {
			result.Status = StepStatusCompleted
			result.FinishedAt = time.Now()
			return result, data, nil
		}
		lastErr = err
	}

	result.Status = StepStatusFailed
	result.Error = lastErr.Error()
	result.FinishedAt = time.Now()
	return result, nil, lastErr
}

// compensate undoes completed steps in reverse order. It runs detached from
// ctx cancellation so a disconnected caller cannot leave partial state behind.
func (o *Orchestrator) compensate(ctx context.Context, def *Definition, instance *Instance, failedStep string, cause error) error {
	instance.SetStatus(StatusCompensating)
	compCtx := context.WithoutCancel(ctx)

	sagaErr := &Error{SagaID: instance.ID, Step: failedStep, Err: cause}

	steps := make(map[string]*Step, len(def.Steps))
	for _, s := range def.Steps {
		steps[s.Name] = s
	}

	for i := len(instance.StepResults) - 1; i >= 0; i-- {
		res := instance.StepResults[i]
		if res.Status != StepStatusCompleted {
			continue
		}

		step := steps[res.StepName]
		if step == nil || step.Compensate == nil {
			continue
		}

		stepCtx, cancel := context.WithTimeout(compCtx, step.Timeout)
		err := step.Compensate(stepCtx, instance.GetData())
		cancel()

		if err != nil {
			res.Status = StepStatusCompensationFailed
			res.Error = err.Error()
			sagaErr.CompensationErrors = append(sagaErr.CompensationErrors, fmt.Errorf("%s: %w", step.Name, err))
			o.logger.Error("Saga compensation failed", "saga_id", instance.ID, "saga", def.Name, "step", step.Name, "error", err)
			continue
		}

		res.Status = StepStatusCompensated
		o.logger.Info("Saga step compensated", "saga_id", instance.ID, "saga", def.Name, "step", step.Name)
	}

	instance.SetStatus(StatusCompensated)
	return sagaErr
}
