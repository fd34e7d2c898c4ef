// Package hierarchy holds the Product → Module → Lesson tree of one product
// together with the module and lesson currently open in the detail views.
package hierarchy

import (
	"fmt"
	"sync"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/progress"
)

// Selection points at the module and lesson shown in the detail views.
type Selection struct {
	ModuleID string `json:"moduleId,omitempty"`
	LessonID string `json:"lessonId,omitempty"`
}

// Store is an in-memory module tree for a single product.
// Lessons only ever live nested inside their parent module.
type Store struct {
	mu        sync.RWMutex
	productID string
	modules   []content.Module
	selection Selection
	version   uint64
}

// NewStore creates an empty store for productID.
func NewStore(productID string) *Store {
	return &Store{productID: productID}
}

// ProductID returns the product the store belongs to.
func (s *Store) ProductID() string {
	return s.productID
}

// Version increases on every mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Modules returns a deep copy of the tree in insertion order.
func (s *Store) Modules() []content.Module {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]content.Module, len(s.modules))
	for i := range s.modules {
		out[i] = s.modules[i].Clone()
	}
	return out
}

// Module returns a copy of the module with id.
func (s *Store) Module(id string) (content.Module, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return content.Module{}, false
	}
	return s.modules[idx].Clone(), true
}

// Lesson returns a copy of the lesson lessonID inside moduleID.
func (s *Store) Lesson(moduleID, lessonID string) (content.Lesson, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(moduleID)
	if idx < 0 {
		return content.Lesson{}, false
	}
	li := s.modules[idx].LessonIndex(lessonID)
	if li < 0 {
		return content.Lesson{}, false
	}
	return s.modules[idx].Lessons[li], true
}

// FindLesson looks lessonID up across all modules.
func (s *Store) FindLesson(lessonID string) (content.Lesson, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.modules {
		if li := m.LessonIndex(lessonID); li >= 0 {
			return m.Lessons[li], true
		}
	}
	return content.Lesson{}, false
}

// Selection returns the current detail-view pointers.
func (s *Store) Selection() Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Load replaces the whole tree. Selection pointers that no longer resolve are cleared.
func (s *Store) Load(modules []content.Module) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.modules = make([]content.Module, 0, len(modules))
	for _, m := range modules {
		s.modules = append(s.modules, s.normalize(m))
	}
	s.repairSelection()
	s.version++
}

// ReplaceModule inserts m, or replaces the module with the same id in place.
func (s *Store) ReplaceModule(m content.Module) error {
	if m.ID == "" {
		return fmt.Errorf("replace module: empty id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m = s.normalize(m)
	if idx := s.indexOf(m.ID); idx >= 0 {
		s.modules[idx] = m
	} else {
		s.modules = append(s.modules, m)
	}
	s.repairSelection()
	s.version++
	return nil
}

// RemoveModule drops a module together with all of its lessons.
// Removing the selected module clears both pointers.
func (s *Store) RemoveModule(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return content.ErrModuleNotFound
	}

	s.modules = append(s.modules[:idx], s.modules[idx+1:]...)
	if s.selection.ModuleID == id {
		s.selection = Selection{}
	}
	s.version++
	return nil
}

// ReplaceLesson inserts l into its parent module, or replaces it in place.
// The parent must already be present.
func (s *Store) ReplaceLesson(l content.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(l.ModuleID)
	if idx < 0 {
		return content.ErrModuleNotFound
	}

	m := s.modules[idx].Clone()
	if li := m.LessonIndex(l.ID); li >= 0 {
		m.Lessons[li] = l
	} else {
		m.Lessons = append(m.Lessons, l)
	}
	s.modules[idx] = s.normalize(m)
	s.version++
	return nil
}

// RemoveLesson drops a lesson; the parent's lesson count goes down by exactly one.
func (s *Store) RemoveLesson(moduleID, lessonID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(moduleID)
	if idx < 0 {
		return content.ErrModuleNotFound
	}

	m := s.modules[idx].Clone()
	li := m.LessonIndex(lessonID)
	if li < 0 {
		return content.ErrLessonNotFound
	}

	m.Lessons = append(m.Lessons[:li], m.Lessons[li+1:]...)
	s.modules[idx] = s.normalize(m)
	if s.selection.LessonID == lessonID {
		s.selection.LessonID = ""
	}
	s.version++
	return nil
}

// PatchLessonProgress applies a member progress update and re-aggregates the module.
func (s *Store) PatchLessonProgress(moduleID string, u progress.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(moduleID)
	if idx < 0 {
		return content.ErrModuleNotFound
	}
	if s.modules[idx].LessonIndex(u.LessonID) < 0 {
		return content.ErrLessonNotFound
	}

	s.modules[idx] = progress.Apply(s.modules[idx], u)
	s.version++
	return nil
}

// SelectModule opens a module in the detail view and closes any open lesson.
func (s *Store) SelectModule(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return content.ErrModuleNotFound
	}
	s.selection = Selection{ModuleID: id}
	s.version++
	return nil
}

// SelectLesson opens a lesson, and its module, in the detail views.
func (s *Store) SelectLesson(moduleID, lessonID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(moduleID)
	if idx < 0 {
		return content.ErrModuleNotFound
	}
	if s.modules[idx].LessonIndex(lessonID) < 0 {
		return content.ErrLessonNotFound
	}
	s.selection = Selection{ModuleID: moduleID, LessonID: lessonID}
	s.version++
	return nil
}

// ClearSelection closes both detail views.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selection = Selection{}
	s.version++
}

func (s *Store) indexOf(id string) int {
	for i := range s.modules {
		if s.modules[i].ID == id {
			return i
		}
	}
	return -1
}

// normalize ties lessons to their parent and refreshes derived fields.
// Summaries from the product listing carry counts but no lessons; those keep
// the counts they arrived with.
func (s *Store) normalize(m content.Module) content.Module {
	m = m.Clone()
	if m.ProductID == "" {
		m.ProductID = s.productID
	}
	if m.Summary() {
		return m
	}
	for i := range m.Lessons {
		m.Lessons[i].ModuleID = m.ID
	}
	return progress.Recompute(m)
}

func (s *Store) repairSelection() {
	if s.selection.ModuleID == "" {
		return
	}
	idx := s.indexOf(s.selection.ModuleID)
	if idx < 0 {
		s.selection = Selection{}
		return
	}
	if s.selection.LessonID != "" && s.modules[idx].LessonIndex(s.selection.LessonID) < 0 {
		s.selection.LessonID = ""
	}
}
