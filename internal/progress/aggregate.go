// Package progress derives module and product progress from lesson progress.
package progress

import (
	"math"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
)

// Update is one lesson progress change reported by a member.
type Update struct {
	LessonID  string
	Progress  int
	Completed bool
}

// Normalize clamps progress to [0,100]; a completed lesson is always at 100.
func (u Update) Normalize() Update {
	if u.Completed {
		u.Progress = 100
		return u
	}
	u.Progress = clamp(u.Progress)
	return u
}

// Apply returns a copy of m with the addressed lesson updated and derived fields recomputed.
// Unknown lesson ids leave the lessons untouched.
func Apply(m content.Module, u Update) content.Module {
	out := m.Clone()
	u = u.Normalize()

	if idx := out.LessonIndex(u.LessonID); idx >= 0 {
		out.Lessons[idx].Progress = u.Progress
		out.Lessons[idx].Completed = u.Completed
	}

	return Recompute(out)
}

// Recompute refreshes LessonsCount, TotalLessons, CompletedLessons and Progress.
// Progress is the rounded mean of lesson progress, 0 for an empty module.
func Recompute(m content.Module) content.Module {
	m = m.Clone()
	total := len(m.Lessons)
	completed := 0
	sum := 0

	for i := range m.Lessons {
		l := &m.Lessons[i]
		if l.Completed {
			l.Progress = 100
		}
		l.Progress = clamp(l.Progress)
		if l.Completed {
			completed++
		}
		sum += l.Progress
	}

	m.LessonsCount = total
	m.TotalLessons = total
	m.CompletedLessons = completed
	m.Progress = mean(sum, total)

	return m
}

// Summary aggregates progress across every module of a product.
type Summary struct {
	Modules          int `json:"modules"`
	TotalLessons     int `json:"totalLessons"`
	CompletedLessons int `json:"completedLessons"`
	Progress         int `json:"progress"`
}

// Summarize computes product-level progress as the mean over all lessons.
func Summarize(modules []content.Module) Summary {
	s := Summary{Modules: len(modules)}
	sum := 0

	for _, m := range modules {
		for _, l := range m.Lessons {
			s.TotalLessons++
			if l.Completed {
				s.CompletedLessons++
				sum += 100
				continue
			}
			sum += clamp(l.Progress)
		}
	}

	s.Progress = mean(sum, s.TotalLessons)
	return s
}

func mean(sum, n int) int {
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
