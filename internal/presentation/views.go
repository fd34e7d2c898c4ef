package presentation

import (
	"fmt"
	"strings"
	"time"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/progress"
)

// LessonStatus summarizes a member's progress on a lesson.
type LessonStatus string

const (
	LessonNotStarted LessonStatus = "not_started"
	LessonInProgress LessonStatus = "in_progress"
	LessonCompleted  LessonStatus = "completed"
)

// Presenter maps content records into the shapes the views render.
type Presenter struct {
	Locale   string
	Location *time.Location
}

// New builds a presenter for locale in the process time zone.
func New(locale string) Presenter {
	return Presenter{Locale: locale, Location: time.Local}
}

// LessonView is the rendered shape of a lesson.
type LessonView struct {
	ID          string       `json:"id"`
	ModuleID    string       `json:"moduleId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Duration    string       `json:"duration,omitempty"`
	VideoURL    string       `json:"videoUrl,omitempty"`
	EmbedURL    string       `json:"embedUrl,omitempty"`
	External    bool         `json:"externalVideo"`
	MaterialURL string       `json:"materialUrl,omitempty"`
	Progress    int          `json:"progress"`
	Completed   bool         `json:"completed"`
	Status      LessonStatus `json:"status"`
}

// ModuleView is the rendered shape of a module and its lessons.
type ModuleView struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	Image            string       `json:"image,omitempty"`
	LessonsCount     int          `json:"lessonsCount"`
	Progress         int          `json:"progress"`
	CompletedLessons int          `json:"completedLessons"`
	TotalLessons     int          `json:"totalLessons"`
	ProgressLabel    string       `json:"progressLabel"`
	CreatedAt        string       `json:"createdAt,omitempty"`
	Lessons          []LessonView `json:"lessons"`
}

// ProductView is the rendered shape of a product card.
type ProductView struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	AccessType      string `json:"accessType"`
	Status          string `json:"status"`
	Price           string `json:"price"`
	EffectivePrice  string `json:"effectivePrice"`
	DiscountPercent int    `json:"discountPercent"`
	CreatedAt       string `json:"createdAt,omitempty"`
}

// PostView is the rendered shape of a community post.
type PostView struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Image      string `json:"image,omitempty"`
	AuthorName string `json:"authorName,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

// Lesson renders l.
func (p Presenter) Lesson(l content.Lesson) LessonView {
	return LessonView{
		ID:          l.ID,
		ModuleID:    l.ModuleID,
		Title:       l.Title,
		Description: l.Description,
		Duration:    l.Duration,
		VideoURL:    l.VideoURL,
		EmbedURL:    EmbedVideoURL(l.VideoURL),
		External:    IsExternalVideo(l.VideoURL),
		MaterialURL: l.MaterialURL,
		Progress:    l.Progress,
		Completed:   l.Completed,
		Status:      statusOf(l),
	}
}

// Module renders m with its lessons.
func (p Presenter) Module(m content.Module) ModuleView {
	lessons := make([]LessonView, 0, len(m.Lessons))
	for _, l := range m.Lessons {
		lessons = append(lessons, p.Lesson(l))
	}

	return ModuleView{
		ID:               m.ID,
		Title:            m.Title,
		Description:      m.Description,
		Image:            m.Image,
		LessonsCount:     m.LessonsCount,
		Progress:         m.Progress,
		CompletedLessons: m.CompletedLessons,
		TotalLessons:     m.TotalLessons,
		ProgressLabel:    fmt.Sprintf("%d/%d", m.CompletedLessons, m.TotalLessons),
		CreatedAt:        FormatTime(m.CreatedAt, p.Locale, p.Location),
		Lessons:          lessons,
	}
}

// Modules renders every module in order.
func (p Presenter) Modules(modules []content.Module) []ModuleView {
	out := make([]ModuleView, 0, len(modules))
	for _, m := range modules {
		out = append(out, p.Module(m))
	}
	return out
}

// Product renders a product card.
func (p Presenter) Product(pr content.Product) ProductView {
	return ProductView{
		ID:              pr.ID,
		Name:            pr.Name,
		Description:     pr.Description,
		Category:        pr.Category,
		AccessType:      string(pr.AccessType),
		Status:          string(pr.Status),
		Price:           FormatPrice(pr.Price, p.Locale),
		EffectivePrice:  FormatPrice(pr.EffectivePrice(), p.Locale),
		DiscountPercent: pr.DiscountPercent(),
		CreatedAt:       FormatTime(pr.CreatedAt, p.Locale, p.Location),
	}
}

// Products renders product cards in order.
func (p Presenter) Products(products []content.Product) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, pr := range products {
		out = append(out, p.Product(pr))
	}
	return out
}

// Post renders a community post.
func (p Presenter) Post(post content.Post) PostView {
	return PostView{
		ID:         post.ID,
		Title:      post.Title,
		Content:    post.Content,
		Image:      post.Image,
		AuthorName: post.AuthorName,
		CreatedAt:  FormatTime(post.CreatedAt, p.Locale, p.Location),
	}
}

// Posts renders posts in order.
func (p Presenter) Posts(posts []content.Post) []PostView {
	out := make([]PostView, 0, len(posts))
	for _, post := range posts {
		out = append(out, p.Post(post))
	}
	return out
}

// Summary renders product-level progress across modules.
func (p Presenter) Summary(modules []content.Module) progress.Summary {
	return progress.Summarize(modules)
}

// FilterProducts keeps products whose name, description or category contains query,
// ignoring case. An empty query keeps everything.
func FilterProducts(products []content.Product, query string) []content.Product {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return products
	}

	out := make([]content.Product, 0, len(products))
	for _, pr := range products {
		if containsFold(needle, pr.Name, pr.Description, pr.Category) {
			out = append(out, pr)
		}
	}
	return out
}

// FilterModules keeps modules whose title or description contains query, ignoring case.
func FilterModules(modules []content.Module, query string) []content.Module {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return modules
	}

	out := make([]content.Module, 0, len(modules))
	for _, m := range modules {
		if containsFold(needle, m.Title, m.Description) {
			out = append(out, m)
		}
	}
	return out
}

func containsFold(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func statusOf(l content.Lesson) LessonStatus {
	switch {
	case l.Completed:
		return LessonCompleted
	case l.Progress > 0:
		return LessonInProgress
	default:
		return LessonNotStarted
	}
}
