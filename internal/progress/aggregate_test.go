package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
)

func lessons(progress ...int) []content.Lesson {
	out := make([]content.Lesson, len(progress))
	for i, p := range progress {
		out[i] = content.Lesson{ID: string(rune('a' + i)), Progress: p, Completed: p == 100}
	}
	return out
}

func TestRecomputeMeanAndCompleted(t *testing.T) {
	m := Recompute(content.Module{ID: "M1", Lessons: []content.Lesson{
		{ID: "l1", Progress: 0},
		{ID: "l2", Progress: 50},
		{ID: "l3", Progress: 100, Completed: true},
	}})

	assert.Equal(t, 50, m.Progress)
	assert.Equal(t, 1, m.CompletedLessons)
	assert.Equal(t, 3, m.TotalLessons)
	assert.Equal(t, 3, m.LessonsCount)
}

func TestRecomputeEmptyModule(t *testing.T) {
	m := Recompute(content.Module{ID: "M1", Progress: 70, CompletedLessons: 2})

	assert.Equal(t, 0, m.Progress)
	assert.Equal(t, 0, m.CompletedLessons)
	assert.Equal(t, 0, m.LessonsCount)
}

func TestRecomputeRoundsToNearest(t *testing.T) {
	cases := []struct {
		name     string
		progress []int
		want     int
	}{
		{"one third", []int{0, 0, 100}, 33},
		{"two thirds", []int{0, 100, 100}, 67},
		{"half up", []int{0, 1}, 1},
		{"single", []int{42}, 42},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := Recompute(content.Module{Lessons: lessons(tc.progress...)})
			assert.Equal(t, tc.want, m.Progress)
		})
	}
}

func TestApplyMarksCompletedAtHundred(t *testing.T) {
	m := content.Module{ID: "M1", Lessons: []content.Lesson{{ID: "l1"}, {ID: "l2", Progress: 20}}}

	got := Apply(m, Update{LessonID: "l1", Progress: 30, Completed: true})

	assert.Equal(t, 100, got.Lessons[0].Progress)
	assert.True(t, got.Lessons[0].Completed)
	assert.Equal(t, 60, got.Progress)
	assert.Equal(t, 1, got.CompletedLessons)
	assert.Equal(t, 0, m.Lessons[0].Progress, "input must not be mutated")
}

func TestApplyClampsAndIgnoresUnknownLesson(t *testing.T) {
	m := content.Module{Lessons: []content.Lesson{{ID: "l1", Progress: 10}}}

	assert.Equal(t, 100, Apply(m, Update{LessonID: "l1", Progress: 250}).Lessons[0].Progress)
	assert.Equal(t, 0, Apply(m, Update{LessonID: "l1", Progress: -5}).Lessons[0].Progress)
	assert.Equal(t, 10, Apply(m, Update{LessonID: "nope", Progress: 90}).Progress)
}

func TestCompletedImpliesHundredForAllInputs(t *testing.T) {
	for p := -10; p <= 110; p += 7 {
		m := Recompute(content.Module{Lessons: []content.Lesson{{ID: "x", Progress: p, Completed: true}}})
		assert.Equal(t, 100, m.Lessons[0].Progress)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]content.Module{
		{Lessons: lessons(100, 0)},
		{Lessons: lessons(50)},
		{},
	})

	assert.Equal(t, 3, s.Modules)
	assert.Equal(t, 3, s.TotalLessons)
	assert.Equal(t, 1, s.CompletedLessons)
	assert.Equal(t, 50, s.Progress)
}
