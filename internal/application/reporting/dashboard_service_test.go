package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/domain/identity"
	"github.com/datascientist-hue/live-dashboard/internal/domain/sales"
	"github.com/datascientist-hue/live-dashboard/internal/domain/shared"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/cache"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/ingest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const datasetHeader = "Inv Date,Inv No,Qty in Ltrs/Kgs,Net Value,RGM,DSM,ASM,SO,Prod Ctg,Cust Name,Cust Code,CustomerClass,JCPeriod,Warehouse"

const datasetCSV = datasetHeader + "\n" +
	"10-Jan-24,INV1,500,1000,North,D1,A1,Ravi,LUB,Acme,C1,Retail,JC1,W1\n" +
	"10-Jan-24,INV2,1500,2000,South,D2,A2,Meena,LUB,Zen,C2,Retail,JC1,W1\n" +
	"not-a-date,INV3,100,500,North,D1,A1,Ravi,LUB,Acme,C1,Retail,JC1,W1\n" +
	"09-Jan-24,INV4,2000,3000,North,D1,A1,Ravi,GRS,Acme,C1,Retail,JC1,W1\n"

type bytesFetcher struct {
	data   []byte
	err    error
	source string
	calls  int
}

func (f *bytesFetcher) Fetch(ctx context.Context) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func (f *bytesFetcher) Source() string { return f.source }

func newService(fetcher *bytesFetcher, mapping *bytesFetcher) *DashboardService {
	if mapping == nil {
		return NewDashboardService(fetcher, nil, ingest.NewNormalizer(nil), cache.NewSnapshotCache(time.Minute), nil)
	}
	return NewDashboardService(fetcher, mapping, ingest.NewNormalizer(nil), cache.NewSnapshotCache(time.Minute), nil)
}

func adminSession() Session {
	return Session{Role: identity.RoleAdmin}
}

func TestDashboardServiceSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("builds once and serves from cache", func(t *testing.T) {
		fetcher := &bytesFetcher{data: []byte(datasetCSV), source: "stub://primary"}
		svc := newService(fetcher, nil)

		ds, err := svc.Snapshot(ctx)
		require.NoError(t, err)
		assert.Len(t, ds.Records, 3) // the bad-date row is dropped

		_, err = svc.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, fetcher.calls)
	})

	t.Run("fetch failure with no previous snapshot surfaces", func(t *testing.T) {
		fetcher := &bytesFetcher{err: errors.New("connection refused"), source: "stub://primary"}
		svc := newService(fetcher, nil)

		_, err := svc.Snapshot(ctx)
		assert.Error(t, err)
	})

	t.Run("failed refresh keeps serving the previous snapshot", func(t *testing.T) {
		fetcher := &bytesFetcher{err: errors.New("connection refused"), source: "stub://primary"}
		previous := &sales.Dataset{Source: fetcher.Source(), LoadedAt: time.Now().Add(-time.Hour)}
		svc := NewDashboardService(fetcher, nil, ingest.NewNormalizer(nil), expiredCache(previous, fetcher.Source()), nil)

		ds, err := svc.Snapshot(ctx)
		require.NoError(t, err)
		assert.Same(t, previous, ds)
	})

	t.Run("refresh rebuilds unconditionally", func(t *testing.T) {
		fetcher := &bytesFetcher{data: []byte(datasetCSV), source: "stub://primary"}
		svc := newService(fetcher, nil)

		require.NoError(t, svc.Refresh(ctx))
		require.NoError(t, svc.Refresh(ctx))
		assert.Equal(t, 2, fetcher.calls)
	})

	t.Run("category mapping overrides non-destructively", func(t *testing.T) {
		fetcher := &bytesFetcher{data: []byte(datasetCSV), source: "stub://primary"}
		mapping := &bytesFetcher{
			data:   []byte("Prod Ctg,New Ctg\nLUB,Lubricants\n"),
			source: "stub://mapping",
		}
		svc := newService(fetcher, mapping)

		ds, err := svc.Snapshot(ctx)
		require.NoError(t, err)

		categories := sales.Distinct(ds.Records, sales.DimCategory)
		assert.Equal(t, []string{"GRS", "Lubricants"}, categories)
	})
}

// expiredCache returns a cache whose only entry is already stale.
func expiredCache(ds *sales.Dataset, source string) *cache.SnapshotCache {
	c := cache.NewSnapshotCache(time.Nanosecond)
	c.Put(source, ds)
	time.Sleep(time.Millisecond)
	return c
}

func TestDashboardServiceOverview(t *testing.T) {
	ctx := context.Background()

	newOverviewService := func() *DashboardService {
		return newService(&bytesFetcher{data: []byte(datasetCSV), source: "stub://primary"}, nil)
	}

	t.Run("region scope restricts the summary", func(t *testing.T) {
		svc := newOverviewService()
		overview, err := svc.Overview(ctx, Session{Role: identity.RoleRGM, Scope: []string{"North"}}, Selection{
			StartDate: day(2024, 1, 10),
			EndDate:   day(2024, 1, 10),
		})
		require.NoError(t, err)
		assert.True(t, overview.Summary.TotalValue.Equal(decimal.NewFromInt(1000)))
		assert.True(t, overview.Summary.TotalTons.Equal(decimal.RequireFromString("0.5")))
	})

	t.Run("comparative windows ignore the start date", func(t *testing.T) {
		svc := newOverviewService()
		session := adminSession()

		wide, err := svc.Overview(ctx, session, Selection{
			StartDate: day(2024, 1, 1), EndDate: day(2024, 1, 10),
		})
		require.NoError(t, err)

		narrow, err := svc.Overview(ctx, session, Selection{
			StartDate: day(2024, 1, 10), EndDate: day(2024, 1, 10),
		})
		require.NoError(t, err)

		assert.True(t, narrow.Comparative.DayTons.Equal(wide.Comparative.DayTons))
		assert.True(t, narrow.Comparative.PrevDayTons.Equal(wide.Comparative.PrevDayTons))
		assert.True(t, narrow.Comparative.WeekTons.Equal(wide.Comparative.WeekTons))
		assert.False(t, narrow.Summary.TotalTons.Equal(wide.Summary.TotalTons))
	})

	t.Run("comparative windows ignore cascading filters", func(t *testing.T) {
		svc := newOverviewService()
		session := adminSession()
		sel := Selection{EndDate: day(2024, 1, 10)}

		unfiltered, err := svc.Overview(ctx, session, sel)
		require.NoError(t, err)

		sel.Filters = map[sales.Dimension][]string{sales.DimRegion: {"North"}}
		filtered, err := svc.Overview(ctx, session, sel)
		require.NoError(t, err)

		assert.True(t, filtered.Comparative.WeekTons.Equal(unfiltered.Comparative.WeekTons))
		assert.True(t, filtered.Comparative.DayTons.Equal(unfiltered.Comparative.DayTons))
		assert.True(t, filtered.Comparative.PrevDayTons.Equal(unfiltered.Comparative.PrevDayTons))
		assert.True(t, unfiltered.Comparative.WeekTons.Equal(decimal.NewFromInt(4)))
		assert.False(t, filtered.Summary.TotalTons.Equal(unfiltered.Summary.TotalTons))
	})

	t.Run("scope matching nothing is no data, not an error class", func(t *testing.T) {
		svc := newOverviewService()
		_, err := svc.Overview(ctx, Session{Role: identity.RoleDSM, Scope: []string{"D9"}}, Selection{})
		assert.ErrorIs(t, err, shared.ErrNoData)
	})

	t.Run("unknown role is denied", func(t *testing.T) {
		svc := newOverviewService()
		_, err := svc.Overview(ctx, Session{Role: identity.Role("INTERN")}, Selection{})
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "UNKNOWN_ROLE", de.Code)
	})

	t.Run("filters narrowing to nothing is no data", func(t *testing.T) {
		svc := newOverviewService()
		_, err := svc.Overview(ctx, adminSession(), Selection{
			Filters: map[sales.Dimension][]string{sales.DimRegion: {"East"}},
		})
		assert.ErrorIs(t, err, shared.ErrNoData)
	})

	t.Run("display strings derive from the same aggregate", func(t *testing.T) {
		svc := newOverviewService()
		overview, err := svc.Overview(ctx, adminSession(), Selection{})
		require.NoError(t, err)
		assert.Equal(t, FormatTons(overview.Summary.TotalTons), overview.Display.TotalTons)
		assert.Equal(t, FormatCurrency(overview.Summary.TotalValue), overview.Display.TotalValue)
	})
}

func TestDashboardServiceTable(t *testing.T) {
	ctx := context.Background()

	newTableService := func() *DashboardService {
		return newService(&bytesFetcher{data: []byte(datasetCSV), source: "stub://primary"}, nil)
	}

	t.Run("grouped view over the scoped set", func(t *testing.T) {
		svc := newTableService()
		table, err := svc.Table(ctx, Session{Role: identity.RoleRGM, Scope: []string{"North"}}, Selection{}, identity.ViewCategory)
		require.NoError(t, err)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "GRS", table.Rows[0].Key)
	})

	t.Run("a view the role does not permit is forbidden", func(t *testing.T) {
		svc := newTableService()
		_, err := svc.Table(ctx, Session{Role: identity.RoleSO, Scope: []string{"Ravi"}}, Selection{}, identity.ViewOfficer)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("csv export and text share derive from one aggregate", func(t *testing.T) {
		svc := newTableService()
		session := adminSession()

		data, err := svc.ExportTableCSV(ctx, session, Selection{}, identity.ViewCategory)
		require.NoError(t, err)
		assert.Contains(t, string(data), "GRS,2,3000")

		text, err := svc.ShareTableText(ctx, session, Selection{}, identity.ViewCategory)
		require.NoError(t, err)
		assert.Contains(t, text, "2.00 MT")
		assert.Contains(t, text, "₹3.00 K")
	})
}
