package domain

// defaultHabitSeed keeps stable ids so stored snapshots can be merged back
// onto the list.
var defaultHabitSeed = []Habit{
	{ID: "1", Name: "Gym", Category: CategoryGym, Priority: PriorityHigh, Goal: 4, Color: "#dc2626", Icon: "💪"},
	{ID: "2", Name: "Duolingo", Category: CategoryLanguage, Priority: PriorityMedium, Goal: 7, Color: "#65a30d", Icon: "🗣️"},
	{ID: "3", Name: "Read", Category: CategoryReading, Priority: PriorityHigh, Goal: 5, Color: "#0891b2", Icon: "📚"},
	{ID: "4", Name: "Write", Category: CategoryWriting, Priority: PriorityMedium, Goal: 3, Color: "#4f46e5", Icon: "✏️"},
	{ID: "5", Name: "Work 8hrs", Category: CategoryWork, Priority: PriorityMedium, Goal: 5, Color: "#4338ca", Icon: "💼"},
	{ID: "6", Name: "No Social Media", Category: CategorySelfControl, Priority: PriorityMedium, Goal: 7, Color: "#f97316", Icon: "🧘"},
	{ID: "7", Name: "No Sugar", Category: CategorySelfControl, Priority: PriorityLow, Goal: 7, Color: "#8b5cf6", Icon: "🛑"},
	{ID: "8", Name: "Meditate", Category: CategoryMindfulness, Priority: PriorityLow, Goal: 7, Color: "#6366f1", Icon: "🧠"},
	{ID: "9", Name: "Water", Category: CategoryWater, Priority: PriorityHigh, Goal: 7, Color: "#0ea5e9", Icon: "💧"},
	{ID: "10", Name: "Study", Category: CategoryStudy, Priority: PriorityHigh, Goal: 5, Color: "#059669", Icon: "📖"},
	{ID: "11", Name: "Home Care", Category: CategoryHome, Priority: PriorityMedium, Goal: 4, Color: "#7c3aed", Icon: "🏠"},
	{ID: "12", Name: "Relax", Category: CategoryContent, Priority: PriorityMedium, Goal: 6, Color: "#ea580c", Icon: "🧘‍♂️"},
}

// DefaultHabits returns a fresh copy of the seed list.
func DefaultHabits() []*Habit {
	habits := make([]*Habit, 0, len(defaultHabitSeed))
	for i := range defaultHabitSeed {
		h := defaultHabitSeed[i]
		h.CompletedDates = make(map[string]CompletionStatus)
		habits = append(habits, &h)
	}
	return habits
}

// MergeWithDefaults lays loaded habits over the default list, matching by id
// or name. Defaults own identity (id, name, category); loaded habits keep
// their history and any valid user-editable settings. Loaded habits that match
// no default are dropped.
func MergeWithDefaults(loaded []*Habit) []*Habit {
	defaults := DefaultHabits()
	merged := make([]*Habit, 0, len(defaults))

	for _, def := range defaults {
		var match *Habit
		for _, h := range loaded {
			if h.ID == def.ID || h.Name == def.Name {
				match = h
				break
			}
		}
		if match == nil {
			merged = append(merged, def)
			continue
		}

		m := def.Clone()
		for k, v := range match.CompletedDates {
			m.CompletedDates[k] = v
		}
		m.Streak = match.Streak
		m.BestStreak = match.BestStreak
		m.Notes = match.Notes
		m.Description = match.Description
		if _, err := ParsePriority(string(match.Priority)); err == nil {
			m.Priority = match.Priority
		}
		if match.Goal >= MinGoal && match.Goal <= MaxGoal {
			m.Goal = match.Goal
		}
		if match.Color != "" && colorRegex.MatchString(match.Color) {
			m.Color = match.Color
		}
		if match.Icon != "" {
			m.Icon = match.Icon
		}
		merged = append(merged, m)
	}
	return merged
}
