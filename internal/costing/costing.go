package costing

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput indicates the cost calculation received a value it cannot
// work with (non-positive required input or a division by zero).
var ErrInvalidInput = errors.New("invalid input")

// Derived holds the values computed from a packing-log row's raw fields.
type Derived struct {
	LabourHours          float64
	PunnetsPerLabourHour float64
	LabourCostPerPunnet  float64
}

// Compute derives labour hours, throughput and labour cost per punnet from
// the raw form values and the configured hourly rate. It has no side effects
// and never produces infinities: inputs that would make a ratio undefined are
// rejected with ErrInvalidInput.
func Compute(minutes float64, people int, finishedPunnets, hourlyRate float64) (Derived, error) {
	if minutes <= 0 {
		return Derived{}, fmt.Errorf("%w: minutes must be greater than zero", ErrInvalidInput)
	}
	if people < 1 {
		return Derived{}, fmt.Errorf("%w: people must be at least one", ErrInvalidInput)
	}
	if finishedPunnets <= 0 {
		return Derived{}, fmt.Errorf("%w: finished punnets must be greater than zero", ErrInvalidInput)
	}
	if hourlyRate <= 0 {
		return Derived{}, fmt.Errorf("%w: hourly rate must be greater than zero", ErrInvalidInput)
	}

	labourHours := minutes * float64(people) / 60
	if labourHours == 0 {
		// Unreachable with the checks above, kept so the division below can
		// never produce +Inf if the validation rules change.
		return Derived{}, fmt.Errorf("%w: labour hours must be greater than zero", ErrInvalidInput)
	}

	return Derived{
		LabourHours:          round4(labourHours),
		PunnetsPerLabourHour: round4(finishedPunnets / labourHours),
		LabourCostPerPunnet:  round4(labourHours * hourlyRate / finishedPunnets),
	}, nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
