package hornproto

import (
	"fmt"
	"strings"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
)

// HornMode selects how the horn service interprets the command list.
type HornMode int32

const (
	ModeUnspecified HornMode = 0
	// ModeContinuous sounds the horn until a DeactivateHornRequest arrives.
	ModeContinuous HornMode = 1
	// ModeSequenced plays the on/off cycles in listed order.
	ModeSequenced HornMode = 2
)

// String returns the schema name of the mode.
func (m HornMode) String() string {
	switch m {
	case ModeContinuous:
		return "HM_CONTINUOUS"
	case ModeSequenced:
		return "HM_SEQUENCED"
	case ModeUnspecified:
		return "HM_UNSPECIFIED"
	default:
		return fmt.Sprintf("HM_UNKNOWN(%d)", int32(m))
	}
}

// HornCycle is one on/off segment of a sequenced pattern, in milliseconds.
type HornCycle struct {
	OnTime  uint32 `cbor:"1,keyasint,omitempty" json:"on_time,omitempty"`
	OffTime uint32 `cbor:"2,keyasint,omitempty" json:"off_time,omitempty"`
}

func (c HornCycle) String() string {
	return fmt.Sprintf("on:%dms/off:%dms", c.OnTime, c.OffTime)
}

// HornSequence is an ordered list of cycles.
type HornSequence struct {
	HornCycles []HornCycle `cbor:"1,keyasint,omitempty" json:"horn_cycles,omitempty"`
}

// ActivateHornRequest is the payload of the ActivateHorn method.
type ActivateHornRequest struct {
	Mode    HornMode       `cbor:"1,keyasint,omitempty" json:"mode,omitempty"`
	Command []HornSequence `cbor:"2,keyasint,omitempty" json:"command,omitempty"`
}

// Cycles returns all cycles of all sequences in playback order.
func (r ActivateHornRequest) Cycles() []HornCycle {
	var cycles []HornCycle
	for _, seq := range r.Command {
		cycles = append(cycles, seq.HornCycles...)
	}
	return cycles
}

// Validate checks the mode/cycle invariants: a continuous request carries no
// cycles, a sequenced one at least one cycle with both durations set.
func (r ActivateHornRequest) Validate() error {
	cycles := r.Cycles()

	var err error
	switch r.Mode {
	case ModeContinuous:
		if len(cycles) > 0 {
			err = fmt.Errorf("%w: continuous mode with %d cycles", errors.ErrInvalidHornRequest, len(cycles))
		}
	case ModeSequenced:
		if len(cycles) == 0 {
			err = fmt.Errorf("%w: sequenced mode without cycles", errors.ErrInvalidHornRequest)
			break
		}
		for i, c := range cycles {
			if c.OnTime == 0 || c.OffTime == 0 {
				err = fmt.Errorf("%w: cycle %d (%s) has a zero duration", errors.ErrInvalidHornRequest, i, c)
				break
			}
		}
	default:
		err = fmt.Errorf("%w: mode %s", errors.ErrInvalidHornRequest, r.Mode)
	}

	return errors.WrapInvalid(err, "ActivateHornRequest", "Validate", "validate horn request")
}

func (r ActivateHornRequest) String() string {
	cycles := r.Cycles()
	parts := make([]string, 0, len(cycles))
	for _, c := range cycles {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("mode:%s cycles:[%s]", r.Mode, strings.Join(parts, " "))
}

// DeactivateHornRequest is the payload of the DeactivateHorn method. It carries no fields.
type DeactivateHornRequest struct{}

// Status reports the outcome of a horn service method.
type Status struct {
	Code    int32  `cbor:"1,keyasint,omitempty" json:"code,omitempty"`
	Message string `cbor:"2,keyasint,omitempty" json:"message,omitempty"`
}

// ActivateHornResponse is returned by the ActivateHorn method.
type ActivateHornResponse struct {
	Status Status `cbor:"1,keyasint" json:"status"`
}

func (r ActivateHornResponse) String() string {
	return fmt.Sprintf("status:{code:%d message:%q}", r.Status.Code, r.Status.Message)
}

// DeactivateHornResponse is returned by the DeactivateHorn method.
type DeactivateHornResponse struct {
	Status Status `cbor:"1,keyasint" json:"status"`
}

func (r DeactivateHornResponse) String() string {
	return fmt.Sprintf("status:{code:%d message:%q}", r.Status.Code, r.Status.Message)
}
