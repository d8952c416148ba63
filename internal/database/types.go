package database

import (
	"time"

	"github.com/choplin/medialedger/internal/media"
)

// MediaRecord is a row of the medias table together with the ids of the
// resolutions it links to. It mirrors storage and carries no resolved
// resolution rows.
type MediaRecord struct {
	ID            int64
	MdmID         int64
	Version       int64
	Attributes    media.Attributes
	CreatedAt     time.Time
	DeletedAt     *time.Time
	ResolutionIDs []int64
}

// IsActive reports whether the row has not been soft-deleted.
func (r MediaRecord) IsActive() bool {
	return r.DeletedAt == nil
}

// NewMediaRecord describes a version row to insert.
type NewMediaRecord struct {
	MdmID         int64
	Version       int64
	Attributes    media.Attributes
	ResolutionIDs []int64
}
