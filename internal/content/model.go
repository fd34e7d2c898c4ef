package content

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccessType says which kind of content a product sells.
type AccessType string

const (
	AccessCourse    AccessType = "COURSE"
	AccessCommunity AccessType = "COMMUNITY"
	AccessBoth      AccessType = "BOTH"
)

// ProductStatus marks whether a product is on sale.
type ProductStatus string

const (
	StatusActive   ProductStatus = "ACTIVE"
	StatusInactive ProductStatus = "INACTIVE"
)

// Role is the account role carried by a session.
type Role string

const (
	RoleProducer Role = "PRODUCER"
	RoleMember   Role = "MEMBER"
)

// GroupPlatform names the chat platform behind a private group.
type GroupPlatform string

const (
	PlatformWhatsApp GroupPlatform = "WHATSAPP"
	PlatformTelegram GroupPlatform = "TELEGRAM"
	PlatformDiscord  GroupPlatform = "DISCORD"
	PlatformOther    GroupPlatform = "OTHER"
)

// Product is a sellable unit combining course and/or community content.
type Product struct {
	ID            string           `json:"id" validate:"required"`
	Name          string           `json:"name" validate:"required"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Category      string           `json:"category"`
	AccessType    AccessType       `json:"accessType" validate:"omitempty,oneof=COURSE COMMUNITY BOTH"`
	Status        ProductStatus    `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	ProducerID    string           `json:"producerId"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// EffectivePrice is the discount price when one is set below the list price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice != nil && p.DiscountPrice.IsPositive() && p.DiscountPrice.LessThan(p.Price) {
		return *p.DiscountPrice
	}
	return p.Price
}

// DiscountPercent is the whole-number discount over the list price, 0 without a discount.
func (p Product) DiscountPercent() int {
	effective := p.EffectivePrice()
	if !p.Price.IsPositive() || effective.Equal(p.Price) {
		return 0
	}
	off := p.Price.Sub(effective).Div(p.Price).Mul(decimal.NewFromInt(100)).Round(0)
	return int(off.IntPart())
}

// HasCourse reports whether the product exposes modules and lessons.
func (p Product) HasCourse() bool {
	return p.AccessType == AccessCourse || p.AccessType == AccessBoth
}

// HasCommunity reports whether the product exposes posts and private groups.
func (p Product) HasCommunity() bool {
	return p.AccessType == AccessCommunity || p.AccessType == AccessBoth
}

// Module groups lessons within a product's course content.
// LessonsCount, Progress, CompletedLessons and TotalLessons are derived.
type Module struct {
	ID               string    `json:"id" validate:"required"`
	ProductID        string    `json:"productId"`
	Title            string    `json:"title" validate:"required"`
	Description      string    `json:"description"`
	Image            string    `json:"image,omitempty"`
	Lessons          []Lesson  `json:"lessons" validate:"dive"`
	LessonsCount     int       `json:"lessonsCount"`
	Progress         int       `json:"progress" validate:"min=0,max=100"`
	CompletedLessons int       `json:"completedLessons"`
	TotalLessons     int       `json:"totalLessons"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Clone returns a deep copy so callers can never alias store internals.
func (m Module) Clone() Module {
	out := m
	if m.Lessons != nil {
		out.Lessons = make([]Lesson, len(m.Lessons))
		copy(out.Lessons, m.Lessons)
	}
	return out
}

// Summary reports whether m came from a listing that carried counts but no
// lessons. Its lessons must be fetched before they can be addressed.
func (m Module) Summary() bool {
	return m.Lessons == nil && m.LessonsCount > 0
}

// LessonIndex returns the position of lessonID in m.Lessons or -1.
func (m Module) LessonIndex(lessonID string) int {
	for i := range m.Lessons {
		if m.Lessons[i].ID == lessonID {
			return i
		}
	}
	return -1
}

// Lesson is a single unit of course content.
type Lesson struct {
	ID          string `json:"id" validate:"required"`
	ModuleID    string `json:"moduleId"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Duration    string `json:"duration,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty"`
	MaterialURL string `json:"materialUrl,omitempty"`
	Progress    int    `json:"progress" validate:"min=0,max=100"`
	Completed   bool   `json:"completed"`
}

// Post is a community post attached to a product.
type Post struct {
	ID         string    `json:"id" validate:"required"`
	ProductID  string    `json:"productId"`
	Title      string    `json:"title" validate:"required"`
	Content    string    `json:"content"`
	Image      string    `json:"image,omitempty"`
	AuthorName string    `json:"authorName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PrivateGroup references an external chat channel tied to a product.
type PrivateGroup struct {
	ID          string        `json:"id" validate:"required"`
	ProductID   string        `json:"productId"`
	Name        string        `json:"name" validate:"required"`
	Platform    GroupPlatform `json:"platform"`
	InviteURL   string        `json:"inviteUrl" validate:"omitempty,url"`
	Description string        `json:"description,omitempty"`
}
