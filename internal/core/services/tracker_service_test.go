package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
	"github.com/comitanigiacomo/kanso-tracker/internal/core/services"
)

func newTracker(t *testing.T, store services.HabitStore, mode domain.HabitMode) *services.TrackerService {
	t.Helper()
	svc := services.NewTrackerService(store, services.NewStatsEngine(domain.AnchorToday), services.TrackerOptions{
		Mode:      mode,
		WeekStart: domain.WeekStartToday,
		Now:       clockAt(fixedNow),
	}, nil)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func TestTrackerService_Load(t *testing.T) {
	t.Run("Success: Absent snapshot seeds defaults", func(t *testing.T) {
		svc := newTracker(t, &habitStoreFake{}, domain.HabitModeFixed)

		state := svc.State()
		assert.Len(t, state.Habits, 12)
		assert.Equal(t, "2024-05-01", state.CurrentDate)
		assert.Equal(t, "2024-05-07", state.CurrentWeek[6])
	})

	t.Run("Success: Fixed mode merges stored history onto defaults", func(t *testing.T) {
		store := &habitStoreFake{doc: []byte(`{"habits":[{"id":"1","name":"Gym",
			"completedDates":{"2024-05-01":"COMPLETED","2024-04-30":true}}]}`)}

		svc := newTracker(t, store, domain.HabitModeFixed)

		gym, err := svc.Habit("1")
		require.NoError(t, err)
		assert.Equal(t, 2, gym.Streak)
		assert.Len(t, svc.State().Habits, 12)
	})

	t.Run("Success: Custom mode keeps habits as stored", func(t *testing.T) {
		store := &habitStoreFake{doc: []byte(`{"habits":[{"id":"x","name":"Sleep early"}]}`)}

		svc := newTracker(t, store, domain.HabitModeCustom)

		state := svc.State()
		require.Len(t, state.Habits, 1)
		assert.Equal(t, "Sleep early", state.Habits[0].Name)
	})

	t.Run("Edge Case: Load errors fall back to defaults", func(t *testing.T) {
		svc := newTracker(t, &habitStoreFake{loadErr: errors.New("disk gone")}, domain.HabitModeFixed)
		assert.Len(t, svc.State().Habits, 12)
	})

	t.Run("Edge Case: Corrupt stored snapshot falls back to defaults", func(t *testing.T) {
		svc := newTracker(t, &habitStoreFake{doc: []byte(`{"habits":`)}, domain.HabitModeFixed)
		assert.Len(t, svc.State().Habits, 12)
	})
}

func TestTrackerService_Toggle(t *testing.T) {
	t.Run("Success: Toggle updates streak and statistics", func(t *testing.T) {
		svc := newTracker(t, &habitStoreFake{}, domain.HabitModeFixed)

		_, err := svc.Toggle("1", "2024-04-30")
		require.NoError(t, err)
		h, err := svc.Toggle("1", "2024-05-01")
		require.NoError(t, err)

		assert.Equal(t, 2, h.Streak)
		assert.Equal(t, 2, h.BestStreak)
		stats := svc.Statistics()
		assert.Equal(t, 2, stats.LongestStreak)
		assert.Equal(t, "Gym", stats.BestHabit)
	})

	t.Run("Success: Double toggle restores status and streak", func(t *testing.T) {
		svc := newTracker(t, &habitStoreFake{}, domain.HabitModeFixed)
		before, _ := svc.Habit("3")

		_, err := svc.Toggle("3", "2024-05-01")
		require.NoError(t, err)
		after, err := svc.Toggle("3", "2024-05-01")
		require.NoError(t, err)

		assert.Equal(t, before.Status("2024-05-01"), after.Status("2024-05-01"))
		assert.Equal(t, before.Streak, after.Streak)
		assert.GreaterOrEqual(t, after.BestStreak, after.Streak)
	})

	t.Run("Success: Each mutation schedules a save", func(t *testing.T) {
		svc := newTracker(t, &habitStoreFake{}, domain.HabitModeFixed)
		sch := &countingScheduler{}
		svc.AttachScheduler(sch)

		_, _ = svc.Toggle("1", "2024-05-01")
		_, _ = svc.CycleStatus("2", "2024-05-01")
		_, _ = svc.SetStatus("3", "2024-05-01", domain.StatusFailed)

		assert.Equal(t, int32(3), sch.n.Load())
	})

	t.Run("Fail: Unknown habit", func(t *testing.T) {
		svc := newTracker(t, &habitStoreFake{}, domain.HabitModeFixed)
		sch := &countingScheduler{}
		svc.AttachScheduler(sch)

		_, err := svc.Toggle("nope", "2024-05-01")

		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
		assert.Equal(t, int32(0), sch.n.Load())
	})

	t.Run("Fail: Not loaded yet", func(t *testing.T) {
		svc := services.NewTrackerService(&habitStoreFake{}, services.NewStatsEngine(""), services.TrackerOptions{Now: clockAt(fixedNow)}, nil)

		_, err := svc.Toggle("1", "2024-05-01")

		assert.ErrorIs(t, err, services.ErrTrackerNotLoaded)
	})
}

func TestTrackerService_StatusAndQueries(t *testing.T) {
	svc := newTracker(t, &habitStoreFake{}, domain.HabitModeFixed)

	h, err := svc.CycleStatus("2", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, h.Status("2024-05-01"))

	h, err = svc.CycleStatus("2", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, h.Status("2024-05-01"))

	_, err = svc.SetStatus("2", "2024-04-29", domain.StatusCompleted)
	require.NoError(t, err)

	done, err := svc.IsCompletedOn("2", "2024-04-29")
	require.NoError(t, err)
	assert.True(t, done)

	done, err = svc.IsCompletedOn("2", "2024-05-01")
	require.NoError(t, err)
	assert.False(t, done)

	dates, err := svc.CompletedDates("2")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-04-29"}, dates)

	_, err = svc.IsCompletedOn("2", "not-a-date")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestTrackerService_UpdateHabit(t *testing.T) {
	svc := newTracker(t, &habitStoreFake{}, domain.HabitModeFixed)
	goal := 3
	notes := "morning"

	h, err := svc.UpdateHabit("1", domain.HabitPatch{Goal: &goal, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, 3, h.Goal)
	assert.Equal(t, "morning", h.Notes)

	bad := 0
	_, err = svc.UpdateHabit("1", domain.HabitPatch{Goal: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidGoal)

	stored, _ := svc.Habit("1")
	assert.Equal(t, 3, stored.Goal)

	t.Run("Fail: Fixed mode refuses rename and recategorize", func(t *testing.T) {
		name := "Gym (evening)"
		_, err := svc.UpdateHabit("1", domain.HabitPatch{Name: &name, Goal: &goal})
		assert.ErrorIs(t, err, domain.ErrFixedHabits)

		category := domain.CategoryStudy
		_, err = svc.UpdateHabit("1", domain.HabitPatch{Category: &category})
		assert.ErrorIs(t, err, domain.ErrFixedHabits)

		gym, _ := svc.Habit("1")
		assert.Equal(t, "Gym", gym.Name)
		assert.Equal(t, domain.CategoryGym, gym.Category)
	})

	t.Run("Success: Fixed mode accepts the current name", func(t *testing.T) {
		name := " Gym "
		category := domain.CategoryGym
		_, err := svc.UpdateHabit("1", domain.HabitPatch{Name: &name, Category: &category})
		assert.NoError(t, err)
	})
}

func TestTrackerService_DatesAreNormalized(t *testing.T) {
	svc := newTracker(t, &habitStoreFake{}, domain.HabitModeFixed)

	h, err := svc.Toggle("1", " 2024-05-01 ")
	require.NoError(t, err)

	assert.Equal(t, map[string]domain.CompletionStatus{"2024-05-01": domain.StatusCompleted}, h.CompletedDates)
	assert.Equal(t, 1, h.Streak)
	done, err := svc.IsCompletedOn("1", "2024-05-01")
	require.NoError(t, err)
	assert.True(t, done)

	h, err = svc.Toggle("1", "2024-05-01\n")
	require.NoError(t, err)
	assert.Empty(t, h.CompletedDates)
}

func TestTrackerService_AddRemove(t *testing.T) {
	t.Run("Fail: Fixed mode rejects add and remove", func(t *testing.T) {
		svc := newTracker(t, &habitStoreFake{}, domain.HabitModeFixed)

		_, err := svc.AddHabit("Sleep", domain.CategoryOther, domain.HabitSettings{})
		assert.ErrorIs(t, err, domain.ErrFixedHabits)
		assert.ErrorIs(t, svc.RemoveHabit("1"), domain.ErrFixedHabits)
	})

	t.Run("Success: Custom mode", func(t *testing.T) {
		svc := newTracker(t, &habitStoreFake{doc: []byte(`{"habits":[]}`)}, domain.HabitModeCustom)

		h, err := svc.AddHabit("Sleep", domain.CategoryOther, domain.HabitSettings{Goal: 5})
		require.NoError(t, err)
		assert.Len(t, svc.State().Habits, 1)

		require.NoError(t, svc.RemoveHabit(h.ID))
		assert.Empty(t, svc.State().Habits)
		assert.ErrorIs(t, svc.RemoveHabit(h.ID), domain.ErrHabitNotFound)
	})
}

func TestTrackerService_ExportImport(t *testing.T) {
	t.Run("Success: Export then import reproduces the state", func(t *testing.T) {
		svc := newTracker(t, &habitStoreFake{}, domain.HabitModeFixed)
		_, _ = svc.Toggle("1", "2024-05-01")
		_, _ = svc.SetStatus("4", "2024-04-28", domain.StatusFailed)
		before := svc.State()

		data, filename, err := svc.Export()
		require.NoError(t, err)
		assert.Equal(t, "habit_tracker_export_2024-05-01.json", filename)

		other := newTracker(t, &habitStoreFake{}, domain.HabitModeFixed)
		require.NoError(t, other.Import(data))

		if diff := cmp.Diff(before, other.State()); diff != "" {
			t.Errorf("import mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Fail: Malformed import leaves state untouched", func(t *testing.T) {
		svc := newTracker(t, &habitStoreFake{}, domain.HabitModeFixed)
		_, _ = svc.Toggle("1", "2024-05-01")
		sch := &countingScheduler{}
		svc.AttachScheduler(sch)
		before := svc.State()

		err := svc.Import([]byte(`{"habits":[{"id":"1","name":"Gym"`))

		assert.ErrorIs(t, err, domain.ErrInvalidSnapshot)
		assert.Equal(t, before, svc.State())
		assert.Equal(t, int32(0), sch.n.Load())
	})

	t.Run("Success: Edited settings survive a round trip in fixed mode", func(t *testing.T) {
		svc := newTracker(t, &habitStoreFake{}, domain.HabitModeFixed)
		goal, color := 2, "#123456"
		_, err := svc.UpdateHabit("1", domain.HabitPatch{Goal: &goal, Color: &color})
		require.NoError(t, err)
		before := svc.State()

		data, _, err := svc.Export()
		require.NoError(t, err)
		other := newTracker(t, &habitStoreFake{}, domain.HabitModeFixed)
		require.NoError(t, other.Import(data))

		if diff := cmp.Diff(before.Habits, other.State().Habits); diff != "" {
			t.Errorf("import mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Success: Renamed custom habit survives a round trip", func(t *testing.T) {
		svc := newTracker(t, &habitStoreFake{}, domain.HabitModeCustom)
		name, category := "Gym (evening)", domain.CategoryStudy
		_, err := svc.UpdateHabit("1", domain.HabitPatch{Name: &name, Category: &category})
		require.NoError(t, err)

		data, _, err := svc.Export()
		require.NoError(t, err)
		other := newTracker(t, &habitStoreFake{}, domain.HabitModeCustom)
		require.NoError(t, other.Import(data))

		gym, err := other.Habit("1")
		require.NoError(t, err)
		assert.Equal(t, "Gym (evening)", gym.Name)
		assert.Equal(t, domain.CategoryStudy, gym.Category)
	})

	t.Run("Success: Legacy import is migrated", func(t *testing.T) {
		svc := newTracker(t, &habitStoreFake{}, domain.HabitModeFixed)

		err := svc.Import([]byte(`{"habits":[{"id":"1","name":"Gym","completed":[true,false,false,false,false,false,false]}]}`))

		require.NoError(t, err)
		done, _ := svc.IsCompletedOn("1", "2024-05-01")
		assert.True(t, done)
	})
}

func TestTrackerService_SaveAndReset(t *testing.T) {
	ctx := context.Background()

	t.Run("Success: Save writes the snapshot", func(t *testing.T) {
		store := &habitStoreFake{}
		svc := newTracker(t, store, domain.HabitModeFixed)
		_, _ = svc.Toggle("1", "2024-05-01")

		require.NoError(t, svc.Save(ctx))

		habits, err := domain.DecodeSnapshot(store.doc, nil)
		require.NoError(t, err)
		assert.True(t, habits[0].IsCompleted("2024-05-01"))
	})

	t.Run("Edge Case: Save before load is a no-op", func(t *testing.T) {
		store := &habitStoreFake{}
		svc := services.NewTrackerService(store, services.NewStatsEngine(""), services.TrackerOptions{Now: clockAt(fixedNow)}, nil)

		require.NoError(t, svc.Save(ctx))
		assert.Equal(t, 0, store.saves)
	})

	t.Run("Fail: Remote failure surfaces but local write stands", func(t *testing.T) {
		store := &habitStoreFake{saveErr: domain.ErrRemoteSync}
		svc := newTracker(t, store, domain.HabitModeFixed)

		err := svc.Save(ctx)

		assert.ErrorIs(t, err, domain.ErrRemoteSync)
		assert.NotNil(t, store.doc)
	})

	t.Run("Success: Reset drops history and persists", func(t *testing.T) {
		store := &habitStoreFake{}
		svc := newTracker(t, store, domain.HabitModeFixed)
		_, _ = svc.Toggle("1", "2024-05-01")

		require.NoError(t, svc.ResetToDefaults(ctx))

		gym, _ := svc.Habit("1")
		assert.Empty(t, gym.CompletedDates)
		assert.Equal(t, 1, store.saves)
	})
}

func TestTrackerService_DayRollover(t *testing.T) {
	now := fixedNow
	svc := services.NewTrackerService(&habitStoreFake{}, services.NewStatsEngine(domain.AnchorToday), services.TrackerOptions{
		Now: func() time.Time { return now },
	}, nil)
	require.NoError(t, svc.Load(context.Background()))
	_, _ = svc.Toggle("1", "2024-05-01")

	now = fixedNow.AddDate(0, 0, 2)
	state := svc.State()

	assert.Equal(t, "2024-05-03", state.CurrentDate)
	assert.Equal(t, "2024-05-03", state.CurrentWeek[0])
	assert.Equal(t, 0, state.Habits[0].Streak)
	assert.Equal(t, 1, state.Habits[0].BestStreak)
}
