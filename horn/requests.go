package horn

import (
	"fmt"
	"strings"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/hornproto"
)

// PrebuiltRequest names one of the canonical activation patterns.
type PrebuiltRequest int

const (
	// Sequenced plays a fixed four-cycle pattern.
	Sequenced PrebuiltRequest = iota + 1
	// Continuous sounds until deactivated.
	Continuous
)

func (p PrebuiltRequest) String() string {
	switch p {
	case Sequenced:
		return "sequenced"
	case Continuous:
		return "continuous"
	default:
		return fmt.Sprintf("prebuilt(%d)", int(p))
	}
}

// ParsePrebuiltRequest reads the String form of a PrebuiltRequest.
func ParsePrebuiltRequest(s string) (PrebuiltRequest, error) {
	switch strings.ToLower(s) {
	case "sequenced":
		return Sequenced, nil
	case "continuous":
		return Continuous, nil
	default:
		return 0, fmt.Errorf("unknown horn pattern %q", s)
	}
}

func sequencedCycles() []hornproto.HornCycle {
	return []hornproto.HornCycle{
		{OnTime: 100, OffTime: 100},
		{OnTime: 200, OffTime: 300},
		{OnTime: 100, OffTime: 200},
		{OnTime: 10000, OffTime: 500},
	}
}

// BuildActivation returns a fresh copy of the canonical request for tag.
// Unknown tags yield an unspecified-mode request, which services reject.
func BuildActivation(tag PrebuiltRequest) hornproto.ActivateHornRequest {
	switch tag {
	case Sequenced:
		return hornproto.ActivateHornRequest{
			Mode:    hornproto.ModeSequenced,
			Command: []hornproto.HornSequence{{HornCycles: sequencedCycles()}},
		}
	case Continuous:
		return hornproto.ActivateHornRequest{
			Mode:    hornproto.ModeContinuous,
			Command: []hornproto.HornSequence{{}},
		}
	default:
		return hornproto.ActivateHornRequest{}
	}
}

// BuildDeactivation returns the empty deactivation request.
func BuildDeactivation() hornproto.DeactivateHornRequest {
	return hornproto.DeactivateHornRequest{}
}

// NewActivation builds a custom activation. Continuous mode takes no cycles;
// sequenced mode needs at least one cycle with non-zero durations.
func NewActivation(mode hornproto.HornMode, cycles ...hornproto.HornCycle) (hornproto.ActivateHornRequest, error) {
	seq := hornproto.HornSequence{}
	if len(cycles) > 0 {
		seq.HornCycles = append([]hornproto.HornCycle(nil), cycles...)
	}

	req := hornproto.ActivateHornRequest{
		Mode:    mode,
		Command: []hornproto.HornSequence{seq},
	}
	if err := req.Validate(); err != nil {
		return hornproto.ActivateHornRequest{}, err
	}
	return req, nil
}
