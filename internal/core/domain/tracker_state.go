package domain

// Statistics is fully derived from the habit collection and the current week.
type Statistics struct {
	TotalCompletionRate  int    `json:"totalCompletionRate"`
	WeeklyCompletionRate int    `json:"weeklyCompletionRate"`
	BestHabit            string `json:"bestHabit"`
	WorstHabit           string `json:"worstHabit"`
	LongestStreak        int    `json:"longestStreak"`
}

// HabitProgress is the per-habit weekly figure shown next to each habit.
type HabitProgress struct {
	HabitID   string `json:"habitId"`
	HabitName string `json:"habitName"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`
	Goal      int    `json:"goal"`
	Percent   int    `json:"percent"`
}

type TrackerState struct {
	Habits      []*Habit   `json:"habits"`
	CurrentDate string     `json:"currentDate"`
	CurrentWeek []string   `json:"currentWeek"`
	Statistics  Statistics `json:"statistics"`
}

func (s *TrackerState) FindHabit(id string) (*Habit, int) {
	for i, h := range s.Habits {
		if h.ID == id {
			return h, i
		}
	}
	return nil, -1
}

func (s *TrackerState) Clone() *TrackerState {
	c := &TrackerState{
		Habits:      make([]*Habit, 0, len(s.Habits)),
		CurrentDate: s.CurrentDate,
		CurrentWeek: append([]string(nil), s.CurrentWeek...),
		Statistics:  s.Statistics,
	}
	for _, h := range s.Habits {
		c.Habits = append(c.Habits, h.Clone())
	}
	return c
}
