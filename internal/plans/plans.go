// Package plans holds the run/walk training plans and the catalog that looks
// them up by key. Plans are immutable once the catalog is built.
package plans

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind tells the athlete what to do during a phase.
type Kind string

const (
	KindWalk Kind = "walk"
	KindRun  Kind = "run"
)

// Valid reports whether k is a known phase kind.
func (k Kind) Valid() bool {
	return k == KindWalk || k == KindRun
}

// Phase is a single named, timed segment of a plan.
type Phase struct {
	Name     string `yaml:"name"`
	Duration int    `yaml:"duration"` // seconds
	Kind     Kind   `yaml:"kind"`
}

// DurationTime returns the phase length as a time.Duration.
func (p Phase) DurationTime() time.Duration {
	return time.Duration(p.Duration) * time.Second
}

// Plan is an ordered, non-empty sequence of phases selected by Key.
type Plan struct {
	Key    string  `yaml:"key"`
	Name   string  `yaml:"name"`
	Phases []Phase `yaml:"phases"`
	Source string  `yaml:"-"` // file path or "builtin"
}

// TotalDuration sums every phase of the plan.
func (p Plan) TotalDuration() time.Duration {
	var total time.Duration
	for _, phase := range p.Phases {
		total += phase.DurationTime()
	}
	return total
}

// Phase returns the phase at index, or false when out of range.
func (p Plan) Phase(index int) (Phase, bool) {
	if index < 0 || index >= len(p.Phases) {
		return Phase{}, false
	}
	return p.Phases[index], true
}

// ErrUnknownPlan is matched by every UnknownPlanError.
var ErrUnknownPlan = errors.New("unknown plan")

// UnknownPlanError is returned when a plan key is not in the catalog.
type UnknownPlanError struct {
	Key string
}

func (e *UnknownPlanError) Error() string {
	return fmt.Sprintf("unknown plan %q", e.Key)
}

func (e *UnknownPlanError) Is(target error) bool {
	return target == ErrUnknownPlan
}

// Validate checks the plan against the catalog rules: a key, a name and at
// least one phase, each phase named, positive and of a known kind.
func (p Plan) Validate() error {
	if strings.TrimSpace(p.Key) == "" {
		return fmt.Errorf("plan key is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("plan %s: name is required", p.Key)
	}
	if len(p.Phases) == 0 {
		return fmt.Errorf("plan %s: phases are required", p.Key)
	}
	for i, phase := range p.Phases {
		if strings.TrimSpace(phase.Name) == "" {
			return fmt.Errorf("plan %s phase %d: name is required", p.Key, i+1)
		}
		if phase.Duration <= 0 {
			return fmt.Errorf("plan %s phase %d: duration must be greater than 0", p.Key, i+1)
		}
		if !phase.Kind.Valid() {
			return fmt.Errorf("plan %s phase %d: unknown kind %q", p.Key, i+1, phase.Kind)
		}
	}
	return nil
}

func clonePlan(p Plan) Plan {
	phases := make([]Phase, len(p.Phases))
	copy(phases, p.Phases)
	p.Phases = phases
	return p
}
