package database

import (
	"github.com/choplin/medialedger/internal/media"
	sqldb "github.com/choplin/medialedger/internal/database/sqlc"
)

// MediaRecordFromRow converts a medias row. Links are attached separately.
func MediaRecordFromRow(row sqldb.Media) MediaRecord {
	return MediaRecord{
		ID:      row.ID,
		MdmID:   row.MdmID,
		Version: row.Version,
		Attributes: media.Attributes{
			Name:                   row.Name,
			Owner:                  row.Owner,
			State:                  media.State(row.State),
			Address:                row.Address,
			Region:                 row.Region,
			SubRegion:              row.SubRegion,
			Locality:               row.Locality,
			TotalMonitorCount:      row.TotalMonitorCount,
			WorkingMonitorCount:    row.WorkingMonitorCount,
			ManagementMonitorCount: row.ManagementMonitorCount,
			HouseholdCount:         row.HouseholdCount,
		},
		CreatedAt: optionalTime(row.CreatedAt),
		DeletedAt: nullableTime(row.DeletedAt),
	}
}

// MediaInsertParams builds the insert parameters for a new version row.
func MediaInsertParams(rec NewMediaRecord) sqldb.InsertMediaParams {
	attrs := rec.Attributes
	return sqldb.InsertMediaParams{
		MdmID:                  rec.MdmID,
		Version:                rec.Version,
		Name:                   attrs.Name,
		Owner:                  attrs.Owner,
		State:                  string(attrs.State),
		Address:                attrs.Address,
		Region:                 attrs.Region,
		SubRegion:              attrs.SubRegion,
		Locality:               attrs.Locality,
		TotalMonitorCount:      attrs.TotalMonitorCount,
		WorkingMonitorCount:    attrs.WorkingMonitorCount,
		ManagementMonitorCount: attrs.ManagementMonitorCount,
		HouseholdCount:         attrs.HouseholdCount,
	}
}

// ResolutionFromRow converts a resolutions row.
func ResolutionFromRow(row sqldb.Resolution) media.Resolution {
	return media.Resolution{
		ID:     row.ID,
		Width:  row.Width,
		Height: row.Height,
		PPI:    row.Ppi,
	}
}

// ToMedia combines a record with its resolved resolutions.
func (r MediaRecord) ToMedia(resolutions []media.Resolution) media.Media {
	if resolutions == nil {
		resolutions = []media.Resolution{}
	}
	return media.Media{
		ID:          r.ID,
		MdmID:       r.MdmID,
		Version:     r.Version,
		Attributes:  r.Attributes,
		CreatedAt:   r.CreatedAt,
		DeletedAt:   r.DeletedAt,
		Resolutions: resolutions,
	}
}
