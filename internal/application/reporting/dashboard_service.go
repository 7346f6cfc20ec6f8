package reporting

import (
	"context"
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/domain/identity"
	"github.com/datascientist-hue/live-dashboard/internal/domain/sales"
	"github.com/datascientist-hue/live-dashboard/internal/domain/shared"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/cache"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/fetch"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/ingest"
	"go.uber.org/zap"
)

// DashboardService runs the ingest-filter-aggregate cycle behind the
// dashboard endpoints. The snapshot is cached per source; a cycle reads one
// immutable dataset throughout.
type DashboardService struct {
	fetcher        fetch.Fetcher
	mappingFetcher fetch.Fetcher // nil when no category mapping is configured
	normalizer     *ingest.Normalizer
	snapshots      *cache.SnapshotCache
	logger         *zap.Logger
}

// NewDashboardService creates the dashboard service. mappingFetcher may be
// nil when no category mapping source is configured.
func NewDashboardService(
	fetcher fetch.Fetcher,
	mappingFetcher fetch.Fetcher,
	normalizer *ingest.Normalizer,
	snapshots *cache.SnapshotCache,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		fetcher:        fetcher,
		mappingFetcher: mappingFetcher,
		normalizer:     normalizer,
		snapshots:      snapshots,
		logger:         logger,
	}
}

// Snapshot returns the current dataset, refreshing it when the cached copy
// has expired. When a refresh fails but an older snapshot exists, the older
// snapshot keeps serving and the failure is logged; with nothing to fall
// back on, the failure surfaces.
func (s *DashboardService) Snapshot(ctx context.Context) (*sales.Dataset, error) {
	source := s.fetcher.Source()
	if ds, ok := s.snapshots.Get(source); ok {
		return ds, nil
	}

	ds, err := s.build(ctx)
	if err != nil {
		if stale, ok := s.snapshots.GetStale(source); ok {
			s.logger.Warn("Snapshot refresh failed, serving previous snapshot",
				zap.String("source", source),
				zap.Time("loaded_at", stale.LoadedAt),
				zap.Error(err))
			return stale, nil
		}
		return nil, err
	}

	s.snapshots.Put(source, ds)
	return ds, nil
}

// Refresh rebuilds the snapshot unconditionally. Used by the background
// scheduler and the explicit refresh endpoint.
func (s *DashboardService) Refresh(ctx context.Context) error {
	ds, err := s.build(ctx)
	if err != nil {
		return err
	}
	s.snapshots.Put(s.fetcher.Source(), ds)
	return nil
}

// build fetches and normalizes a complete new dataset.
func (s *DashboardService) build(ctx context.Context) (*sales.Dataset, error) {
	raw, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	table, err := ingest.ReadTableBytes(raw)
	if err != nil {
		return nil, shared.NewIntegrityError("Dataset could not be parsed: " + err.Error())
	}

	records, err := s.normalizer.Normalize(table)
	if err != nil {
		return nil, err
	}

	if s.mappingFetcher != nil {
		mapped, err := s.applyMapping(ctx, table, records)
		if err != nil {
			return nil, err
		}
		records = mapped
	}

	s.logger.Info("Snapshot built",
		zap.String("source", s.fetcher.Source()),
		zap.Int("records", len(records)))

	return &sales.Dataset{
		Records:  records,
		Source:   s.fetcher.Source(),
		LoadedAt: time.Now(),
	}, nil
}

func (s *DashboardService) applyMapping(ctx context.Context, primary *ingest.Table, records []sales.Record) ([]sales.Record, error) {
	raw, err := s.mappingFetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	table, err := ingest.ReadTableBytes(raw)
	if err != nil {
		return nil, shared.NewMergeError("Category mapping could not be parsed: " + err.Error())
	}
	mapping, err := ingest.LoadCategoryMapping(table, primary)
	if err != nil {
		return nil, err
	}
	mapping.Apply(records)
	return records, nil
}

// Overview is the dashboard landing payload: headline metrics, trailing
// comparative windows, the role's filter options and permitted views, and
// the snapshot's date bounds for the range picker.
type Overview struct {
	Summary     Summary              `json:"summary"`
	Comparative Comparative          `json:"comparative"`
	Filters     []FilterOption       `json:"filters"`
	Views       []identity.GroupView `json:"views"`
	MinDate     time.Time            `json:"min_date"`
	MaxDate     time.Time            `json:"max_date"`
	Display     OverviewDisplay      `json:"display"`
}

// OverviewDisplay carries the pre-formatted strings for the headline tiles.
// Derived from the same aggregate as the raw values.
type OverviewDisplay struct {
	TotalValue  string `json:"total_value"`
	TotalTons   string `json:"total_tons"`
	DayTons     string `json:"day_tons"`
	PrevDayTons string `json:"prev_day_tons"`
	WeekTons    string `json:"week_tons"`
}

// Session is the slice of the authenticated session the reporting layer
// needs: the role and its hierarchy scope.
type Session struct {
	Role  identity.Role
	Scope []string
}

// visible resolves the capability and scope-restricts the snapshot for one
// session. An empty scoped result is the no-data condition, not an error in
// the transport sense.
func (s *DashboardService) visible(ctx context.Context, session Session) (identity.Capability, []sales.Record, error) {
	cap, err := identity.CapabilityFor(session.Role)
	if err != nil {
		return identity.Capability{}, nil, err
	}

	ds, err := s.Snapshot(ctx)
	if err != nil {
		return identity.Capability{}, nil, err
	}

	scoped := cap.ApplyScope(ds.Records, session.Scope)
	if len(scoped) == 0 {
		return cap, nil, shared.ErrNoData
	}
	return cap, scoped, nil
}

// Overview computes the landing payload for one session and selection.
func (s *DashboardService) Overview(ctx context.Context, session Session, sel Selection) (*Overview, error) {
	cap, scoped, err := s.visible(ctx, session)
	if err != nil {
		return nil, err
	}

	filtered := ApplyFilters(scoped, cap, sel)
	if len(filtered) == 0 {
		return nil, shared.ErrNoData
	}

	// Comparative windows are computed over the scope-restricted set,
	// anchored at the end of the selected range. Cascading filters and the
	// date cut are deliberately excluded: only scope and the anchor may move
	// the trend tiles.
	anchor := sel.EndDate
	if anchor.IsZero() {
		_, max, _ := (&sales.Dataset{Records: scoped}).DateBounds()
		anchor = max
	}
	comparative := ComparativeVolumes(scoped, anchor)

	dated := ApplyDateRange(filtered, sel.StartDate, sel.EndDate)
	if len(dated) == 0 {
		return nil, shared.ErrNoData
	}

	summary := Summarize(dated)
	min, max, _ := (&sales.Dataset{Records: scoped}).DateBounds()

	return &Overview{
		Summary:     summary,
		Comparative: comparative,
		Filters:     FilterOptions(scoped, cap, sel),
		Views:       cap.Groupings,
		MinDate:     min,
		MaxDate:     max,
		Display: OverviewDisplay{
			TotalValue:  FormatCurrency(summary.TotalValue),
			TotalTons:   FormatTons(summary.TotalTons),
			DayTons:     FormatTons(comparative.DayTons),
			PrevDayTons: FormatTons(comparative.PrevDayTons),
			WeekTons:    FormatTons(comparative.WeekTons),
		},
	}, nil
}

// Table computes one grouped performance view for a session and selection.
// A view the role does not permit is forbidden.
func (s *DashboardService) Table(ctx context.Context, session Session, sel Selection, view identity.GroupView) (*GroupedTable, error) {
	cap, scoped, err := s.visible(ctx, session)
	if err != nil {
		return nil, err
	}
	if !cap.AllowsGrouping(view) {
		return nil, shared.ErrForbidden
	}

	dated := ApplyDateRange(ApplyFilters(scoped, cap, sel), sel.StartDate, sel.EndDate)
	if len(dated) == 0 {
		return nil, shared.ErrNoData
	}
	return GroupBy(dated, view)
}

// ExportTableCSV renders the selected grouped table as raw CSV.
func (s *DashboardService) ExportTableCSV(ctx context.Context, session Session, sel Selection, view identity.GroupView) ([]byte, error) {
	table, err := s.Table(ctx, session, sel, view)
	if err != nil {
		return nil, err
	}
	return ExportCSV(table)
}

// ShareTableText renders the selected grouped table as formatted text.
func (s *DashboardService) ShareTableText(ctx context.Context, session Session, sel Selection, view identity.GroupView) (string, error) {
	table, err := s.Table(ctx, session, sel, view)
	if err != nil {
		return "", err
	}
	return FormatText(table), nil
}
