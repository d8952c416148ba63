// Package media holds the domain types for display/media assets and their
// append-only version history.
package media

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// State is the operational state reported by the management source.
type State string

const (
	StateInstalling State = "installing"
	StateOperating  State = "operating"
	StateSuspended  State = "suspended"
	StateBroken     State = "broken"
	StateRetired    State = "retired"
)

// States lists every known state in display order.
var States = []State{StateInstalling, StateOperating, StateSuspended, StateBroken, StateRetired}

// ParseState normalises s and checks it against the known states.
func ParseState(s string) (State, error) {
	candidate := State(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range States {
		if st == candidate {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown state %q", ErrInvalid, s)
}

// ResolutionSpec is the value triple identifying a resolution in the pool.
type ResolutionSpec struct {
	Width  int64 `json:"width" yaml:"width"`
	Height int64 `json:"height" yaml:"height"`
	PPI    int64 `json:"ppi" yaml:"ppi"`
}

func (s ResolutionSpec) String() string {
	return fmt.Sprintf("%dx%d@%d", s.Width, s.Height, s.PPI)
}

// ParseResolutionSpec reads the WIDTHxHEIGHT@PPI form produced by String.
func ParseResolutionSpec(s string) (ResolutionSpec, error) {
	invalid := fmt.Errorf("%w: resolution %q is not WIDTHxHEIGHT@PPI", ErrInvalid, s)

	dims, ppi, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "@")
	if !ok {
		return ResolutionSpec{}, invalid
	}
	width, height, ok := strings.Cut(dims, "x")
	if !ok {
		return ResolutionSpec{}, invalid
	}

	var spec ResolutionSpec
	for _, f := range []struct {
		raw string
		dst *int64
	}{{width, &spec.Width}, {height, &spec.Height}, {ppi, &spec.PPI}} {
		v, err := strconv.ParseInt(f.raw, 10, 64)
		if err != nil || v <= 0 {
			return ResolutionSpec{}, invalid
		}
		*f.dst = v
	}
	return spec, nil
}

// Resolution is a pooled, immutable resolution row.
type Resolution struct {
	ID     int64 `json:"id" yaml:"id"`
	Width  int64 `json:"width" yaml:"width"`
	Height int64 `json:"height" yaml:"height"`
	PPI    int64 `json:"ppi" yaml:"ppi"`
}

// Spec returns the deduplication key of r.
func (r Resolution) Spec() ResolutionSpec {
	return ResolutionSpec{Width: r.Width, Height: r.Height, PPI: r.PPI}
}

// Attributes are the per-version fields of an asset.
type Attributes struct {
	Name                   string `json:"name" yaml:"name"`
	Owner                  string `json:"owner" yaml:"owner"`
	State                  State  `json:"state" yaml:"state"`
	Address                string `json:"address" yaml:"address"`
	Region                 string `json:"region" yaml:"region"`
	SubRegion              string `json:"subRegion" yaml:"subRegion"`
	Locality               string `json:"locality" yaml:"locality"`
	TotalMonitorCount      int64  `json:"totalMonitorCount" yaml:"totalMonitorCount"`
	WorkingMonitorCount    int64  `json:"workingMonitorCount" yaml:"workingMonitorCount"`
	ManagementMonitorCount int64  `json:"managementMonitorCount" yaml:"managementMonitorCount"`
	HouseholdCount         int64  `json:"householdCount" yaml:"householdCount"`
}

// Media is one immutable version of an asset. DeletedAt is the only part
// that changes after the row is written.
type Media struct {
	ID          int64        `json:"id" yaml:"id"`
	MdmID       int64        `json:"mdmId" yaml:"mdmId"`
	Version     int64        `json:"version" yaml:"version"`
	Attributes  `yaml:",inline"`
	CreatedAt   time.Time    `json:"createdAt" yaml:"createdAt"`
	DeletedAt   *time.Time   `json:"deletedAt,omitempty" yaml:"deletedAt,omitempty"`
	Resolutions []Resolution `json:"resolutions" yaml:"resolutions"`
}

// IsDeleted reports whether the version has been soft-deleted.
func (m Media) IsDeleted() bool {
	return m.DeletedAt != nil
}

// CreateInput is the payload of a get-or-create request.
type CreateInput struct {
	MdmID       int64            `json:"mdmId" yaml:"mdmId"`
	Attributes  `yaml:",inline"`
	Resolutions []ResolutionSpec `json:"resolutions" yaml:"resolutions"`
}

// UpdateInput carries an override for every field; nil means inherit from
// the current version. A non-nil Resolutions slice, even an empty one,
// replaces the link set.
type UpdateInput struct {
	MdmID                  *int64           `json:"mdmId,omitempty" yaml:"mdmId,omitempty"`
	Name                   *string          `json:"name,omitempty" yaml:"name,omitempty"`
	Owner                  *string          `json:"owner,omitempty" yaml:"owner,omitempty"`
	State                  *State           `json:"state,omitempty" yaml:"state,omitempty"`
	Address                *string          `json:"address,omitempty" yaml:"address,omitempty"`
	Region                 *string          `json:"region,omitempty" yaml:"region,omitempty"`
	SubRegion              *string          `json:"subRegion,omitempty" yaml:"subRegion,omitempty"`
	Locality               *string          `json:"locality,omitempty" yaml:"locality,omitempty"`
	TotalMonitorCount      *int64           `json:"totalMonitorCount,omitempty" yaml:"totalMonitorCount,omitempty"`
	WorkingMonitorCount    *int64           `json:"workingMonitorCount,omitempty" yaml:"workingMonitorCount,omitempty"`
	ManagementMonitorCount *int64           `json:"managementMonitorCount,omitempty" yaml:"managementMonitorCount,omitempty"`
	HouseholdCount         *int64           `json:"householdCount,omitempty" yaml:"householdCount,omitempty"`
	Resolutions            []ResolutionSpec `json:"resolutions,omitempty" yaml:"resolutions,omitempty"`
}

// Merge applies the overrides in in onto base and returns the result.
// base is not modified.
func (in UpdateInput) Merge(base Attributes) Attributes {
	out := base
	if in.Name != nil {
		out.Name = *in.Name
	}
	if in.Owner != nil {
		out.Owner = *in.Owner
	}
	if in.State != nil {
		out.State = *in.State
	}
	if in.Address != nil {
		out.Address = *in.Address
	}
	if in.Region != nil {
		out.Region = *in.Region
	}
	if in.SubRegion != nil {
		out.SubRegion = *in.SubRegion
	}
	if in.Locality != nil {
		out.Locality = *in.Locality
	}
	if in.TotalMonitorCount != nil {
		out.TotalMonitorCount = *in.TotalMonitorCount
	}
	if in.WorkingMonitorCount != nil {
		out.WorkingMonitorCount = *in.WorkingMonitorCount
	}
	if in.ManagementMonitorCount != nil {
		out.ManagementMonitorCount = *in.ManagementMonitorCount
	}
	if in.HouseholdCount != nil {
		out.HouseholdCount = *in.HouseholdCount
	}
	return out
}
