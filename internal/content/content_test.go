package content

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/apperrors"
)

func TestLessonFormBlocksMissingFields(t *testing.T) {
	form := LessonForm{ModuleID: "m1", LessonFields: LessonFields{Title: "Intro", Description: ""}}
	form.SetYouTubeURL("")

	err := form.Validate()
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, appErr.Code())
	assert.Equal(t, ErrRequiredFields.Error(), appErr.Message())
	assert.Contains(t, appErr.Fields(), "description")
	assert.Contains(t, appErr.Fields(), "video")
}

func TestLessonFormEditSkipsMediaRequirement(t *testing.T) {
	form := LessonFormFrom(Lesson{ID: "l1", ModuleID: "m1", Title: "Intro", Description: "Welcome"})

	assert.True(t, form.Editing())
	assert.NoError(t, form.Validate())
}

func TestLessonFormMediaLastWriteWins(t *testing.T) {
	form := LessonForm{}
	upload := &Upload{FileName: "intro.mp4", Reader: strings.NewReader("bytes")}

	form.SetYouTubeURL("https://youtu.be/abc123")
	form.SetVideoFile(upload)
	assert.Same(t, upload, form.VideoFile())
	assert.Empty(t, form.YouTubeURL())

	form.SetYouTubeURL(" https://youtu.be/xyz ")
	assert.Nil(t, form.VideoFile())
	assert.Equal(t, "https://youtu.be/xyz", form.YouTubeURL())
}

func TestModuleFormValidateAndReset(t *testing.T) {
	form := ModuleForm{ModuleFields: ModuleFields{Title: "Basics"}}
	assert.True(t, apperrors.Is(form.Validate(), apperrors.ErrValidation))

	form.Description = "First steps"
	assert.NoError(t, form.Validate())

	form.Reset()
	assert.Equal(t, ModuleForm{}, form)
}

func TestPrivateGroupFormValidation(t *testing.T) {
	form := PrivateGroupForm{Name: "VIP", Platform: PlatformWhatsApp, InviteURL: "not a url"}
	err := form.Validate()

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields(), "inviteUrl")

	form.InviteURL = "https://chat.whatsapp.com/abc"
	assert.NoError(t, form.Validate())
}

func TestProductPricing(t *testing.T) {
	discount := decimal.RequireFromString("75.00")
	p := Product{Price: decimal.RequireFromString("100.00"), DiscountPrice: &discount, AccessType: AccessBoth}

	assert.True(t, p.EffectivePrice().Equal(discount))
	assert.Equal(t, 25, p.DiscountPercent())
	assert.True(t, p.HasCourse())
	assert.True(t, p.HasCommunity())

	p.DiscountPrice = nil
	assert.Equal(t, 0, p.DiscountPercent())
}

func TestModuleCloneDoesNotAlias(t *testing.T) {
	m := Module{ID: "m1", Lessons: []Lesson{{ID: "l1", Title: "A"}}}
	c := m.Clone()
	c.Lessons[0].Title = "changed"

	assert.Equal(t, "A", m.Lessons[0].Title)
	assert.Equal(t, 0, m.LessonIndex("l1"))
	assert.Equal(t, -1, m.LessonIndex("missing"))
}
