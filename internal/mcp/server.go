package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/choplin/medialedger/internal/config"
	"github.com/choplin/medialedger/internal/database"
	"github.com/choplin/medialedger/internal/media"
	"github.com/choplin/medialedger/internal/usecase"
)

// Server wraps the MCP server with media ledger tools
type Server struct {
	server *mcp.Server
	dbCtx  *database.Context
	media  *usecase.Media
}

// NewServer opens the database configured in cfg and registers the tools.
func NewServer(cfg config.Config) (*Server, error) {
	dbCtx, err := database.CreateDatabase(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	return newServer(dbCtx, cfg.Retry), nil
}

func newServer(dbCtx *database.Context, retry config.RetryConfig) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "medialedger",
		Version: "0.1.0",
	}, nil)

	s := &Server{
		server: mcpServer,
		dbCtx:  dbCtx,
		media:  usecase.NewMedia(dbCtx, retry),
	}

	s.registerTools()

	return s
}

// Run starts the MCP server with stdio transport
func (s *Server) Run(ctx context.Context) error {
	defer database.CloseDatabase(s.dbCtx)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "media_create",
		Description: "Return the current version of an asset, creating version 1 (or the next version after a removal) if it has none",
	}, s.handleCreate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "media_update",
		Description: "Store a new version of an asset; omitted fields are inherited from the current version",
	}, s.handleUpdate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "media_list",
		Description: "List the current version of every asset",
	}, s.handleList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "media_get",
		Description: "Get a non-deleted version row by its row id",
	}, s.handleGet)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "media_remove",
		Description: "Soft-delete a version row by row id, or the current version of an asset by mdmId",
	}, s.handleRemove)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "media_history",
		Description: "List every version of an asset, removed ones included",
	}, s.handleHistory)
}

// Input/Output types for each tool

type Resolution struct {
	Width  int64 `json:"width" jsonschema:"horizontal pixels"`
	Height int64 `json:"height" jsonschema:"vertical pixels"`
	PPI    int64 `json:"ppi" jsonschema:"pixel density"`
}

type CreateInput struct {
	MdmID                  int64        `json:"mdmId" jsonschema:"external id of the asset in the management source"`
	Name                   string       `json:"name"`
	Owner                  string       `json:"owner,omitempty"`
	State                  string       `json:"state,omitempty" jsonschema:"one of installing, operating, suspended, broken, retired"`
	Address                string       `json:"address,omitempty"`
	Region                 string       `json:"region,omitempty"`
	SubRegion              string       `json:"subRegion,omitempty"`
	Locality               string       `json:"locality,omitempty"`
	TotalMonitorCount      int64        `json:"totalMonitorCount,omitempty"`
	WorkingMonitorCount    int64        `json:"workingMonitorCount,omitempty"`
	ManagementMonitorCount int64        `json:"managementMonitorCount,omitempty"`
	HouseholdCount         int64        `json:"householdCount,omitempty"`
	Resolutions            []Resolution `json:"resolutions,omitempty"`
}

type UpdateInput struct {
	MdmID                  int64        `json:"mdmId" jsonschema:"external id of the asset to update"`
	Name                   *string      `json:"name,omitempty"`
	Owner                  *string      `json:"owner,omitempty"`
	State                  *string      `json:"state,omitempty" jsonschema:"one of installing, operating, suspended, broken, retired"`
	Address                *string      `json:"address,omitempty"`
	Region                 *string      `json:"region,omitempty"`
	SubRegion              *string      `json:"subRegion,omitempty"`
	Locality               *string      `json:"locality,omitempty"`
	TotalMonitorCount      *int64       `json:"totalMonitorCount,omitempty"`
	WorkingMonitorCount    *int64       `json:"workingMonitorCount,omitempty"`
	ManagementMonitorCount *int64       `json:"managementMonitorCount,omitempty"`
	HouseholdCount         *int64       `json:"householdCount,omitempty"`
	Resolutions            []Resolution `json:"resolutions,omitempty" jsonschema:"replaces the resolution set when given"`
}

type ListInput struct{}

type GetInput struct {
	ID int64 `json:"id" jsonschema:"row id of the version"`
}

type RemoveInput struct {
	ID    *int64 `json:"id,omitempty" jsonschema:"row id of the version to remove"`
	MdmID *int64 `json:"mdmId,omitempty" jsonschema:"remove the current version of this asset instead"`
}

type HistoryInput struct {
	MdmID int64 `json:"mdmId" jsonschema:"external id of the asset"`
}

type MediaOutput struct {
	ID                     int64        `json:"id"`
	MdmID                  int64        `json:"mdmId"`
	Version                int64        `json:"version"`
	Name                   string       `json:"name"`
	Owner                  string       `json:"owner"`
	State                  string       `json:"state"`
	Address                string       `json:"address"`
	Region                 string       `json:"region"`
	SubRegion              string       `json:"subRegion"`
	Locality               string       `json:"locality"`
	TotalMonitorCount      int64        `json:"totalMonitorCount"`
	WorkingMonitorCount    int64        `json:"workingMonitorCount"`
	ManagementMonitorCount int64        `json:"managementMonitorCount"`
	HouseholdCount         int64        `json:"householdCount"`
	Resolutions            []Resolution `json:"resolutions"`
	CreatedAt              string       `json:"createdAt"`
	DeletedAt              string       `json:"deletedAt,omitempty"`
}

type ListOutput struct {
	Medias []MediaOutput `json:"medias"`
}

type RemoveOutput struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

func toOutput(m media.Media) MediaOutput {
	out := MediaOutput{
		ID:                     m.ID,
		MdmID:                  m.MdmID,
		Version:                m.Version,
		Name:                   m.Name,
		Owner:                  m.Owner,
		State:                  string(m.State),
		Address:                m.Address,
		Region:                 m.Region,
		SubRegion:              m.SubRegion,
		Locality:               m.Locality,
		TotalMonitorCount:      m.TotalMonitorCount,
		WorkingMonitorCount:    m.WorkingMonitorCount,
		ManagementMonitorCount: m.ManagementMonitorCount,
		HouseholdCount:         m.HouseholdCount,
		Resolutions:            make([]Resolution, 0, len(m.Resolutions)),
		CreatedAt:              m.CreatedAt.Format(time.RFC3339),
	}
	if m.DeletedAt != nil {
		out.DeletedAt = m.DeletedAt.Format(time.RFC3339)
	}
	for _, r := range m.Resolutions {
		out.Resolutions = append(out.Resolutions, Resolution{Width: r.Width, Height: r.Height, PPI: r.PPI})
	}
	return out
}

func toOutputs(medias []media.Media) []MediaOutput {
	out := make([]MediaOutput, 0, len(medias))
	for _, m := range medias {
		out = append(out, toOutput(m))
	}
	return out
}

func toSpecs(in []Resolution) []media.ResolutionSpec {
	if in == nil {
		return nil
	}
	specs := make([]media.ResolutionSpec, 0, len(in))
	for _, r := range in {
		specs = append(specs, media.ResolutionSpec{Width: r.Width, Height: r.Height, PPI: r.PPI})
	}
	return specs
}

func parseOptionalState(s *string) (*media.State, error) {
	if s == nil {
		return nil, nil
	}
	st, err := media.ParseState(*s)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Tool handlers

func (s *Server) handleCreate(ctx context.Context, req *mcp.CallToolRequest, input CreateInput) (*mcp.CallToolResult, MediaOutput, error) {
	var state media.State
	if input.State != "" {
		st, err := media.ParseState(input.State)
		if err != nil {
			return nil, MediaOutput{}, err
		}
		state = st
	}

	in := media.CreateInput{
		MdmID: input.MdmID,
		Attributes: media.Attributes{
			Name:                   input.Name,
			Owner:                  input.Owner,
			State:                  state,
			Address:                input.Address,
			Region:                 input.Region,
			SubRegion:              input.SubRegion,
			Locality:               input.Locality,
			TotalMonitorCount:      input.TotalMonitorCount,
			WorkingMonitorCount:    input.WorkingMonitorCount,
			ManagementMonitorCount: input.ManagementMonitorCount,
			HouseholdCount:         input.HouseholdCount,
		},
		Resolutions: toSpecs(input.Resolutions),
	}

	m, err := s.media.Create(ctx, in)
	if err != nil {
		return nil, MediaOutput{}, fmt.Errorf("failed to create media: %w", err)
	}
	return nil, toOutput(m), nil
}

func (s *Server) handleUpdate(ctx context.Context, req *mcp.CallToolRequest, input UpdateInput) (*mcp.CallToolResult, MediaOutput, error) {
	state, err := parseOptionalState(input.State)
	if err != nil {
		return nil, MediaOutput{}, err
	}

	mdmID := input.MdmID
	m, err := s.media.Update(ctx, media.UpdateInput{
		MdmID:                  &mdmID,
		Name:                   input.Name,
		Owner:                  input.Owner,
		State:                  state,
		Address:                input.Address,
		Region:                 input.Region,
		SubRegion:              input.SubRegion,
		Locality:               input.Locality,
		TotalMonitorCount:      input.TotalMonitorCount,
		WorkingMonitorCount:    input.WorkingMonitorCount,
		ManagementMonitorCount: input.ManagementMonitorCount,
		HouseholdCount:         input.HouseholdCount,
		Resolutions:            toSpecs(input.Resolutions),
	})
	if err != nil {
		return nil, MediaOutput{}, fmt.Errorf("failed to update media: %w", err)
	}
	return nil, toOutput(m), nil
}

func (s *Server) handleList(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	medias, err := s.media.List(ctx)
	if err != nil {
		return nil, ListOutput{}, fmt.Errorf("failed to list medias: %w", err)
	}
	return nil, ListOutput{Medias: toOutputs(medias)}, nil
}

func (s *Server) handleGet(ctx context.Context, req *mcp.CallToolRequest, input GetInput) (*mcp.CallToolResult, MediaOutput, error) {
	m, err := s.media.Get(ctx, input.ID)
	if err != nil {
		return nil, MediaOutput{}, fmt.Errorf("failed to get media: %w", err)
	}
	return nil, toOutput(m), nil
}

func (s *Server) handleRemove(ctx context.Context, req *mcp.CallToolRequest, input RemoveInput) (*mcp.CallToolResult, RemoveOutput, error) {
	switch {
	case input.ID != nil && input.MdmID != nil:
		return nil, RemoveOutput{}, fmt.Errorf("%w: pass either id or mdmId, not both", media.ErrInvalid)
	case input.ID != nil:
		if err := s.media.Remove(ctx, *input.ID); err != nil {
			return nil, RemoveOutput{}, fmt.Errorf("failed to remove media: %w", err)
		}
		return nil, RemoveOutput{
			Message: fmt.Sprintf("Removed media %d", *input.ID),
			ID:      *input.ID,
		}, nil
	case input.MdmID != nil:
		removed, err := s.media.RemoveCurrent(ctx, *input.MdmID)
		if err != nil {
			return nil, RemoveOutput{}, fmt.Errorf("failed to remove media: %w", err)
		}
		return nil, RemoveOutput{
			Message: fmt.Sprintf("Removed version %d of mdm id %d", removed.Version, removed.MdmID),
			ID:      removed.ID,
		}, nil
	default:
		return nil, RemoveOutput{}, fmt.Errorf("%w: id or mdmId is required", media.ErrInvalid)
	}
}

func (s *Server) handleHistory(ctx context.Context, req *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, ListOutput, error) {
	versions, err := s.media.History(ctx, input.MdmID)
	if err != nil {
		return nil, ListOutput{}, fmt.Errorf("failed to get media history: %w", err)
	}
	return nil, ListOutput{Medias: toOutputs(versions)}, nil
}
