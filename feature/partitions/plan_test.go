package partitions

import (
	"context"
	"testing"
	"time"

	"partition-manager/core/catalog"
	"partition-manager/core/catalog/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestReconciler(cat catalog.Client, store ObjectStore) *Reconciler {
	return NewReconciler(cat, store, zap.NewNop())
}

func stubTable(cat *mocks.Client, location string) {
	cat.On("GetTable", mock.Anything, "db", "events").
		Return(catalog.Table{Database: "db", Name: "events", Location: location}, nil)
}

func TestPlanCreate(t *testing.T) {
	t.Run("CreatesOnlyMissingPartitions", func(t *testing.T) {
		store := newFakeStore()
		store.addLeaf("2019/01/02/03")
		newer := store.addLeaf("2019/01/02/22")
		hive := store.addLeaf("year=2019/month=03/day=13/hour=15")

		cat := new(mocks.Client)
		stubTable(cat, "s3://lake/events")
		cat.On("ListPartitions", mock.Anything, "db", "events").Return([]catalog.Partition{
			{Values: []string{"2019", "01", "02", "03"}, Location: testRoot + "2019/01/02/03/"},
		}, nil)

		plan, err := newTestReconciler(cat, store).PlanCreate(context.Background(), "db", "events", Options{})

		require.NoError(t, err)
		assert.Equal(t, Summary{Discovered: 3, InCatalog: 1, Creates: 2}, plan.Summary)
		require.Len(t, plan.Actions, 2)
		assert.Equal(t, Action{Type: ActionCreate, Values: []string{"2019", "01", "02", "22"}, Location: newer}, plan.Actions[0])
		assert.Equal(t, Action{Type: ActionCreate, Values: []string{"2019", "03", "13", "15"}, Location: hive}, plan.Actions[1])
	})

	t.Run("MatchesValuesNumerically", func(t *testing.T) {
		store := newFakeStore()
		store.addLeaf("2019/01/02/03")

		cat := new(mocks.Client)
		stubTable(cat, "s3://lake/events")
		cat.On("ListPartitions", mock.Anything, "db", "events").Return([]catalog.Partition{
			{Values: []string{"2019", "1", "2", "3"}, Location: testRoot + "2019/01/02/03/"},
		}, nil)

		plan, err := newTestReconciler(cat, store).PlanCreate(context.Background(), "db", "events", Options{})

		require.NoError(t, err)
		assert.Empty(t, plan.Actions)
	})

	t.Run("RepeatedRunsProduceIdenticalPlans", func(t *testing.T) {
		store := newFakeStore()
		store.addLeaf("2019/01/02/03")
		store.addLeaf("2020/05/06/07")

		cat := new(mocks.Client)
		stubTable(cat, "s3://lake/events")
		cat.On("ListPartitions", mock.Anything, "db", "events").Return(nil, nil)
		r := newTestReconciler(cat, store)

		first, err := r.PlanCreate(context.Background(), "db", "events", Options{})
		require.NoError(t, err)
		second, err := r.PlanCreate(context.Background(), "db", "events", Options{})
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("LimitDaysSkipsOldPartitions", func(t *testing.T) {
		store := newFakeStore()
		store.addLeaf("2019/01/02/03")
		recent := store.addLeaf("2019/03/13/15")

		cat := new(mocks.Client)
		stubTable(cat, "s3://lake/events")
		cat.On("ListPartitions", mock.Anything, "db", "events").Return(nil, nil)

		r := newTestReconciler(cat, store)
		r.now = func() time.Time { return time.Date(2019, 3, 20, 10, 0, 0, 0, time.UTC) }

		plan, err := r.PlanCreate(context.Background(), "db", "events", Options{LimitDays: 10})

		require.NoError(t, err)
		assert.Equal(t, 2, plan.Summary.Discovered)
		require.Len(t, plan.Actions, 1)
		assert.Equal(t, recent, plan.Actions[0].Location)
	})

	t.Run("DuplicateCatalogValuesAbort", func(t *testing.T) {
		cat := new(mocks.Client)
		stubTable(cat, "s3://lake/events")
		cat.On("ListPartitions", mock.Anything, "db", "events").Return([]catalog.Partition{
			{Values: []string{"2019", "01", "02", "03"}, Location: testRoot + "2019/01/02/03/"},
			{Values: []string{"2019", "1", "2", "3"}, Location: testRoot + "other/"},
		}, nil)

		_, err := newTestReconciler(cat, newFakeStore()).PlanCreate(context.Background(), "db", "events", Options{})

		var dup *DuplicateValueError
		assert.ErrorAs(t, err, &dup)
	})

	t.Run("RejectsTablesNotBackedByS3", func(t *testing.T) {
		cat := new(mocks.Client)
		stubTable(cat, "hdfs://nn/events")

		_, err := newTestReconciler(cat, newFakeStore()).PlanCreate(context.Background(), "db", "events", Options{})

		assert.ErrorContains(t, err, "not backed by s3")
	})
}

func TestPlanUpdate(t *testing.T) {
	t.Run("PointsCatalogAtDiscoveredLocation", func(t *testing.T) {
		store := newFakeStore()
		moved := store.addLeaf("2019/01/02/03")
		store.addLeaf("2019/01/02/04")

		cat := new(mocks.Client)
		stubTable(cat, "s3://lake/events")
		cat.On("ListPartitions", mock.Anything, "db", "events").Return([]catalog.Partition{
			{Values: []string{"2019", "01", "02", "03"}, Location: "s3://lake/old/2019/01/02/03/"},
			{Values: []string{"2019", "01", "02", "04"}, Location: testRoot + "2019/01/02/04/"},
		}, nil)

		plan, err := newTestReconciler(cat, store).PlanUpdate(context.Background(), "db", "events")

		require.NoError(t, err)
		assert.Equal(t, Summary{Discovered: 2, InCatalog: 2, Updates: 1}, plan.Summary)
		require.Len(t, plan.Actions, 1)
		assert.Equal(t, Action{
			Type:        ActionUpdate,
			Values:      []string{"2019", "01", "02", "03"},
			Location:    "s3://lake/old/2019/01/02/03/",
			NewLocation: moved,
		}, plan.Actions[0])
	})

	t.Run("IgnoresPartitionsOnlyOnDisk", func(t *testing.T) {
		store := newFakeStore()
		store.addLeaf("2019/01/02/03")

		cat := new(mocks.Client)
		stubTable(cat, "s3://lake/events")
		cat.On("ListPartitions", mock.Anything, "db", "events").Return(nil, nil)

		plan, err := newTestReconciler(cat, store).PlanUpdate(context.Background(), "db", "events")

		require.NoError(t, err)
		assert.Empty(t, plan.Actions)
	})
}

func TestPlanDelete(t *testing.T) {
	mismatched := catalog.Partition{
		Values:   []string{"2019", "01", "02", "03"},
		Location: testRoot + "2018/01/01/01/",
	}
	empty := catalog.Partition{
		Values:   []string{"2020", "05", "06", "07"},
		Location: testRoot + "2020/05/06/07/",
	}
	healthy := catalog.Partition{
		Values:   []string{"2021", "01", "01", "00"},
		Location: testRoot + "2021/01/01/00/",
	}

	// storeFor holds data everywhere except the empty partition's location.
	storeFor := func() *fakeStore {
		store := newFakeStore()
		store.addLeaf("2018/01/01/01")
		store.addLeaf("2021/01/01/00")
		return store
	}

	t.Run("AllMarksEverythingOrphaned", func(t *testing.T) {
		store := storeFor()
		cat := new(mocks.Client)
		cat.On("ListPartitions", mock.Anything, "db", "events").
			Return([]catalog.Partition{mismatched, empty, healthy}, nil)

		plan, err := newTestReconciler(cat, store).PlanDelete(context.Background(), "db", "events", DeleteAll)

		require.NoError(t, err)
		require.Len(t, plan.Actions, 3)
		for _, a := range plan.Actions {
			assert.Equal(t, ActionDelete, a.Type)
			assert.Equal(t, ReasonOrphaned, a.Reason)
		}
		assert.Empty(t, store.probed)
	})

	t.Run("BadPrefersLocationMismatch", func(t *testing.T) {
		store := storeFor()
		cat := new(mocks.Client)
		cat.On("ListPartitions", mock.Anything, "db", "events").
			Return([]catalog.Partition{mismatched, empty, healthy}, nil)

		plan, err := newTestReconciler(cat, store).PlanDelete(context.Background(), "db", "events", DeleteBad)

		require.NoError(t, err)
		require.Len(t, plan.Actions, 2)
		assert.Equal(t, mismatched.Values, plan.Actions[0].Values)
		assert.Equal(t, ReasonLocationMismatch, plan.Actions[0].Reason)
		assert.Equal(t, empty.Values, plan.Actions[1].Values)
		assert.Equal(t, ReasonNoData, plan.Actions[1].Reason)

		// the mismatched partition is diagnosed without a storage probe
		assert.NotContains(t, store.probed, mismatched.Location)
	})

	t.Run("MissingKeepsMismatchedDatafulPartitions", func(t *testing.T) {
		store := storeFor()
		cat := new(mocks.Client)
		cat.On("ListPartitions", mock.Anything, "db", "events").
			Return([]catalog.Partition{mismatched, empty, healthy}, nil)

		plan, err := newTestReconciler(cat, store).PlanDelete(context.Background(), "db", "events", DeleteMissing)

		require.NoError(t, err)
		require.Len(t, plan.Actions, 1)
		assert.Equal(t, empty.Values, plan.Actions[0].Values)
		assert.Equal(t, ReasonNoData, plan.Actions[0].Reason)
	})

	t.Run("ProbeFailureAborts", func(t *testing.T) {
		store := storeFor()
		store.errAt = empty.Location
		cat := new(mocks.Client)
		cat.On("ListPartitions", mock.Anything, "db", "events").
			Return([]catalog.Partition{empty}, nil)

		_, err := newTestReconciler(cat, store).PlanDelete(context.Background(), "db", "events", DeleteMissing)

		assert.ErrorContains(t, err, "failed to probe")
	})
}

func TestLocationConsistent(t *testing.T) {
	tests := []struct {
		name      string
		partition catalog.Partition
		want      bool
	}{
		{
			name: "MatchingPositionalLocation",
			partition: catalog.Partition{
				Values:   []string{"2019", "01", "02", "03"},
				Location: "s3://lake/events/2019/01/02/03/",
			},
			want: true,
		},
		{
			name: "MatchingHiveLocation",
			partition: catalog.Partition{
				Values:   []string{"2019", "01", "02", "03"},
				Location: "s3://lake/events/year=2019/month=1/day=2/hour=3/",
			},
			want: true,
		},
		{
			name: "WrongValuesInLocation",
			partition: catalog.Partition{
				Values:   []string{"2019", "01", "02", "03"},
				Location: "s3://lake/events/2018/01/01/01/",
			},
			want: false,
		},
		{
			name: "UnparseableLocation",
			partition: catalog.Partition{
				Values:   []string{"2019", "01", "02", "03"},
				Location: "s3://lake/events/backup/",
			},
			want: false,
		},
		{
			name: "NonS3Location",
			partition: catalog.Partition{
				Values:   []string{"2019", "01", "02", "03"},
				Location: "hdfs://nn/events/2019/01/02/03/",
			},
			want: false,
		},
		{
			name: "MalformedDeclaredValues",
			partition: catalog.Partition{
				Values:   []string{"2019", "01"},
				Location: "s3://lake/events/2019/01/02/03/",
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, locationConsistent(tt.partition))
		})
	}
}
