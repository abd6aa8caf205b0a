// Package uri resolves horn service resource identities into addressable URIs
// and the NATS subjects that carry their RPC traffic.
package uri

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
)

// ResourceID identifies a method or topic within a service entity.
type ResourceID uint16

// Identity is the (authority, entity, version) triple of a service.
type Identity struct {
	AuthorityName string
	EntityID      uint32
	MajorVersion  uint8
}

// Validate checks that the identity can be rendered into subjects.
func (id Identity) Validate() error {
	if id.AuthorityName == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Identity", "Validate", "check authority name")
	}
	if strings.ContainsAny(id.AuthorityName, " .*>/") {
		return errors.WrapInvalid(
			fmt.Errorf("%w: authority %q contains subject delimiters", errors.ErrInvalidConfig, id.AuthorityName),
			"Identity", "Validate", "check authority name")
	}
	if id.MajorVersion == 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: major version must be non-zero", errors.ErrInvalidConfig),
			"Identity", "Validate", "check major version")
	}
	return nil
}

// URI addresses one resource of one service entity.
type URI struct {
	Identity
	Resource ResourceID
}

// String renders the URI as up://authority/ENTITY/VERSION/RESOURCE with hex components.
func (u URI) String() string {
	return fmt.Sprintf("up://%s/%X/%X/%X", u.AuthorityName, u.EntityID, u.MajorVersion, uint16(u.Resource))
}

// Subject returns the NATS subject that requests to this resource are sent on.
func (u URI) Subject() string {
	return fmt.Sprintf("up.%s.%x.%x.%x", u.AuthorityName, u.EntityID, u.MajorVersion, uint16(u.Resource))
}

// Parse reads a URI produced by URI.String.
func Parse(s string) (URI, error) {
	rest, ok := strings.CutPrefix(s, "up://")
	if !ok {
		return URI{}, errors.WrapInvalid(fmt.Errorf("%w: missing up:// scheme in %q", errors.ErrParsingFailed, s), "uri", "Parse", "read scheme")
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 4 || parts[0] == "" {
		return URI{}, errors.WrapInvalid(fmt.Errorf("%w: expected 4 segments in %q", errors.ErrParsingFailed, s), "uri", "Parse", "split segments")
	}

	entity, err := strconv.ParseUint(parts[1], 16, 32)
	if err != nil {
		return URI{}, errors.WrapInvalid(err, "uri", "Parse", "read entity id")
	}
	version, err := strconv.ParseUint(parts[2], 16, 8)
	if err != nil {
		return URI{}, errors.WrapInvalid(err, "uri", "Parse", "read major version")
	}
	resource, err := strconv.ParseUint(parts[3], 16, 16)
	if err != nil {
		return URI{}, errors.WrapInvalid(err, "uri", "Parse", "read resource id")
	}

	return URI{
		Identity: Identity{AuthorityName: parts[0], EntityID: uint32(entity), MajorVersion: uint8(version)},
		Resource: ResourceID(resource),
	}, nil
}

// StaticProvider resolves resource ids against a fixed identity. It is never
// mutated after construction and may be shared freely.
type StaticProvider struct {
	identity Identity
}

// NewStaticProvider validates identity and returns a provider for it.
func NewStaticProvider(identity Identity) (*StaticProvider, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	return &StaticProvider{identity: identity}, nil
}

// Authority returns the authority name of the provider's identity.
func (p *StaticProvider) Authority() string {
	return p.identity.AuthorityName
}

// Identity returns the provider's identity.
func (p *StaticProvider) Identity() Identity {
	return p.identity
}

// ResourceURI returns the URI of the given resource.
func (p *StaticProvider) ResourceURI(id ResourceID) URI {
	return URI{Identity: p.identity, Resource: id}
}

// SourceURI returns the URI of the entity itself (resource 0), used as the
// source attribute of outgoing requests.
func (p *StaticProvider) SourceURI() URI {
	return URI{Identity: p.identity}
}
