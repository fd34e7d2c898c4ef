package gatewaytest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
)

func (b *Backend) listProducts(c *gin.Context) {
	b.mu.Lock()
	out := append([]content.Product{}, b.products...)
	b.mu.Unlock()
	c.JSON(http.StatusOK, envelope(out))
}

func (b *Backend) fetchProduct(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.products {
		if p.ID == c.Param("id") {
			c.JSON(http.StatusOK, envelope(p))
			return
		}
	}
	notFound(c, "product")
}

func (b *Backend) createModule(c *gin.Context) {
	b.recordForm(c)
	title := strings.TrimSpace(c.PostForm("title"))
	productID := strings.TrimSpace(c.PostForm("productId"))
	if title == "" || productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title and productId are required"})
		return
	}

	m := content.Module{
		ProductID:   productID,
		Title:       title,
		Description: c.PostForm("description"),
		Lessons:     []content.Lesson{},
		CreatedAt:   now(),
	}
	if fh, err := c.FormFile("image"); err == nil {
		m.Image = "/uploads/" + fh.Filename
	}

	b.mu.Lock()
	m.ID = b.nextID("mod")
	b.modules = append(b.modules, &m)
	out := serverView(m)
	b.mu.Unlock()

	c.JSON(http.StatusCreated, envelope(out))
}

func (b *Backend) fetchModule(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.findModule(c.Param("id"))
	if m == nil {
		notFound(c, "module")
		return
	}
	c.JSON(http.StatusOK, envelope(serverView(*m)))
}

func (b *Backend) listModules(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []content.Module{}
	for _, m := range b.modules {
		if m.ProductID != c.Param("productId") {
			continue
		}
		view := serverView(*m)
		if b.summaries {
			view.Lessons = nil
		}
		out = append(out, view)
	}
	c.JSON(http.StatusOK, envelope(out))
}

func (b *Backend) updateModule(c *gin.Context) {
	b.recordForm(c)

	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.findModule(c.Param("id"))
	if m == nil {
		notFound(c, "module")
		return
	}
	if v := strings.TrimSpace(c.PostForm("title")); v != "" {
		m.Title = v
	}
	if v, ok := c.GetPostForm("description"); ok {
		m.Description = v
	}
	if fh, err := c.FormFile("image"); err == nil {
		m.Image = "/uploads/" + fh.Filename
	} else if c.PostForm("removeImage") == "true" {
		m.Image = ""
	}
	m.UpdatedAt = now()
	c.JSON(http.StatusOK, envelope(serverView(*m)))
}

func (b *Backend) deleteModule(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, m := range b.modules {
		if m.ID == c.Param("id") {
			b.modules = append(b.modules[:i], b.modules[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "module deleted"})
			return
		}
	}
	notFound(c, "module")
}

func (b *Backend) createLesson(c *gin.Context) {
	b.recordForm(c)

	l := content.Lesson{
		Title:       strings.TrimSpace(c.PostForm("title")),
		Description: c.PostForm("description"),
		Duration:    c.PostForm("duration"),
		MaterialURL: c.PostForm("materialUrl"),
	}
	if fh, err := c.FormFile("video"); err == nil {
		l.VideoURL = "/uploads/" + fh.Filename
	} else if u := c.PostForm("youtubeUrl"); u != "" {
		l.VideoURL = u
	}
	if l.Title == "" || l.VideoURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title and video are required"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.findModule(c.PostForm("moduleId"))
	if m == nil {
		notFound(c, "module")
		return
	}
	l.ID = b.nextID("les")
	l.ModuleID = m.ID
	m.Lessons = append(m.Lessons, l)
	c.JSON(http.StatusCreated, envelope(l))
}

func (b *Backend) updateLesson(c *gin.Context) {
	b.recordForm(c)

	b.mu.Lock()
	defer b.mu.Unlock()
	m, idx := b.findLesson(c.Param("id"))
	if m == nil {
		notFound(c, "lesson")
		return
	}
	l := &m.Lessons[idx]
	if v := strings.TrimSpace(c.PostForm("title")); v != "" {
		l.Title = v
	}
	if v, ok := c.GetPostForm("description"); ok {
		l.Description = v
	}
	if v, ok := c.GetPostForm("duration"); ok {
		l.Duration = v
	}
	if v, ok := c.GetPostForm("materialUrl"); ok {
		l.MaterialURL = v
	}
	switch fh, err := c.FormFile("video"); {
	case err == nil:
		l.VideoURL = "/uploads/" + fh.Filename
	case c.PostForm("youtubeUrl") != "":
		l.VideoURL = c.PostForm("youtubeUrl")
	case c.PostForm("removeVideo") == "true":
		l.VideoURL = ""
	}
	c.JSON(http.StatusOK, envelope(*l))
}

func (b *Backend) deleteLesson(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, idx := b.findLesson(c.Param("id"))
	if m == nil {
		notFound(c, "lesson")
		return
	}
	m.Lessons = append(m.Lessons[:idx], m.Lessons[idx+1:]...)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "lesson deleted"})
}

func (b *Backend) updateProgress(c *gin.Context) {
	var body struct {
		Progress  *int `json:"progress" binding:"required"`
		Completed bool `json:"completed"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "progress is required"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	m, idx := b.findLesson(c.Param("id"))
	if m == nil {
		notFound(c, "lesson")
		return
	}
	m.Lessons[idx].Progress = *body.Progress
	m.Lessons[idx].Completed = body.Completed
	if body.Completed {
		m.Lessons[idx].Progress = 100
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (b *Backend) listPosts(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []content.Post{}
	for _, p := range b.posts {
		if p.ProductID == c.Param("productId") {
			out = append(out, p)
		}
	}
	c.JSON(http.StatusOK, envelope(out))
}

func (b *Backend) createPost(c *gin.Context) {
	b.recordForm(c)
	p := content.Post{
		ProductID: c.PostForm("productId"),
		Title:     strings.TrimSpace(c.PostForm("title")),
		Content:   c.PostForm("content"),
		CreatedAt: now(),
	}
	if p.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title is required"})
		return
	}
	if fh, err := c.FormFile("image"); err == nil {
		p.Image = "/uploads/" + fh.Filename
	}

	b.mu.Lock()
	p.ID = b.nextID("post")
	b.posts = append(b.posts, p)
	b.mu.Unlock()
	c.JSON(http.StatusCreated, envelope(p))
}

func (b *Backend) deletePost(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.posts {
		if p.ID == c.Param("id") {
			b.posts = append(b.posts[:i], b.posts[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}
	}
	notFound(c, "post")
}

func (b *Backend) listGroups(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []content.PrivateGroup{}
	for _, g := range b.groups {
		if g.ProductID == c.Param("productId") {
			out = append(out, g)
		}
	}
	c.JSON(http.StatusOK, envelope(out))
}

func (b *Backend) createGroup(c *gin.Context) {
	var g content.PrivateGroup
	if err := c.ShouldBindJSON(&g); err != nil || strings.TrimSpace(g.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name is required"})
		return
	}

	b.mu.Lock()
	g.ID = b.nextID("grp")
	b.groups = append(b.groups, g)
	b.mu.Unlock()
	c.JSON(http.StatusCreated, envelope(g))
}

func (b *Backend) deleteGroup(c *gin.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, g := range b.groups {
		if g.ID == c.Param("id") {
			b.groups = append(b.groups[:i], b.groups[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}
	}
	notFound(c, "group")
}
