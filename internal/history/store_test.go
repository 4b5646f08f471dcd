package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
)

func report(id string, start time.Time, rendered int, outcome build.Outcome) *build.Report {
	return &build.Report{
		BuildID:       id,
		Start:         start,
		End:           start.Add(420 * time.Millisecond),
		PagesRendered: rendered,
		Artifacts:     rendered + 4,
		Skipped:       map[build.SkipReason]int{build.SkipDraft: 1},
		Outcome:       outcome,
	}
}

func TestStore_AppendAndRecent(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, report("b-1", base, 10, build.OutcomeSuccess)))
	require.NoError(t, store.Append(ctx, report("b-2", base.Add(time.Hour), 11, build.OutcomeWarning)))
	require.NoError(t, store.Append(ctx, report("b-3", base.Add(2*time.Hour), 12, build.OutcomeSuccess)))

	records, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "b-3", records[0].BuildID)
	require.Equal(t, "b-2", records[1].BuildID)
	require.Equal(t, int64(420), records[0].DurationMS)
	require.Equal(t, 12, records[0].PagesRendered)
	require.Equal(t, 1, records[0].PagesSkipped)
	require.Equal(t, "success", records[0].Outcome)
	require.True(t, records[0].Start.Equal(base.Add(2*time.Hour)))
}

func TestStore_DuplicateBuildIDRejected(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	r := report("dup", time.Now(), 1, build.OutcomeSuccess)
	require.NoError(t, store.Append(ctx, r))
	require.Error(t, store.Append(ctx, r))
}

func TestStore_RecentOnEmptyStore(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	records, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, records)
}
