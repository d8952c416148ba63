package sqldb

import "database/sql"

type Resolution struct {
	ID        int64
	Width     int64
	Height    int64
	Ppi       int64
	CreatedAt sql.NullTime
}

type Media struct {
	ID                     int64
	MdmID                  int64
	Version                int64
	Name                   string
	Owner                  string
	State                  string
	Address                string
	Region                 string
	SubRegion              string
	Locality               string
	TotalMonitorCount      int64
	WorkingMonitorCount    int64
	ManagementMonitorCount int64
	HouseholdCount         int64
	CreatedAt              sql.NullTime
	DeletedAt              sql.NullTime
}

type MediaResolution struct {
	MediaID      int64
	ResolutionID int64
}
