package gamification

// Achievement is one catalog entry.
type Achievement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Points      int    `json:"points"`
}

// Snapshot is the state achievements are evaluated against.
type Snapshot struct {
	*Progress
	QuizAttempts   int
	CommentsPosted int
	Unlocked       map[string]bool
}

type rule struct {
	Achievement
	met func(s *Snapshot) bool
}

var catalog = []rule{
	{
		Achievement: Achievement{Name: "First Steps", Description: "Completed your first quiz", Icon: "🎓", Points: 25},
		met:         func(s *Snapshot) bool { return s.QuizAttempts >= 1 },
	},
	{
		Achievement: Achievement{Name: "Week Warrior", Description: "7-day learning streak", Icon: "🔥", Points: 50},
		met:         func(s *Snapshot) bool { return s.Streak == 7 },
	},
	{
		Achievement: Achievement{Name: "Month Master", Description: "30-day learning streak", Icon: "🏆", Points: 150},
		met:         func(s *Snapshot) bool { return s.Streak == 30 },
	},
	{
		Achievement: Achievement{Name: "Rising Star", Description: "Earned 500 points", Icon: "⭐", Points: 100},
		met:         func(s *Snapshot) bool { return s.Points >= 500 },
	},
	{
		Achievement: Achievement{Name: "Legal Expert", Description: "Earned 1000 points", Icon: "👨‍⚖️", Points: 200},
		met:         func(s *Snapshot) bool { return s.Points >= 1000 },
	},
	{
		Achievement: Achievement{Name: "Commentator", Description: "Posted 50 comments", Icon: "💬", Points: 40},
		met:         func(s *Snapshot) bool { return s.CommentsPosted >= 50 },
	},
}

// Catalog lists every achievement in evaluation order.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	for i, r := range catalog {
		out[i] = r.Achievement
	}
	return out
}

// LookupAchievement finds a catalog entry by name.
func LookupAchievement(name string) (Achievement, bool) {
	for _, r := range catalog {
		if r.Name == name {
			return r.Achievement, true
		}
	}
	return Achievement{}, false
}

// CheckAchievements grants every achievement whose condition holds and that
// is not yet in s.Unlocked. Each grant adds its points to s.Progress before
// the next rule is evaluated, and is recorded in s.Unlocked.
func CheckAchievements(s *Snapshot) []Achievement {
	if s.Unlocked == nil {
		s.Unlocked = make(map[string]bool)
	}
	var granted []Achievement
	for _, r := range catalog {
		if s.Unlocked[r.Name] || !r.met(s) {
			continue
		}
		s.Unlocked[r.Name] = true
		s.Award(r.Points)
		granted = append(granted, r.Achievement)
	}
	return granted
}

// PointsOf sums the points of the given achievements.
func PointsOf(list []Achievement) int {
	total := 0
	for _, a := range list {
		total += a.Points
	}
	return total
}
