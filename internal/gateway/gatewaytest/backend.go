// Package gatewaytest provides an in-process fake of the platform REST backend.
package gatewaytest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/internal/content"
)

// Backend is a gin server that mimics the backend routes the gateway calls.
// Route keys have the form "METHOD /path/:param", e.g. "POST /lessons/:id/progress".
type Backend struct {
	URL    string
	server *httptest.Server

	mu       sync.Mutex
	seq      int
	products []content.Product
	modules  []*content.Module
	posts    []content.Post
	groups   []content.PrivateGroup
	calls    map[string]int
	failures map[string]failure
	holds    map[string]chan struct{}
	headers  map[string]http.Header
	forms    map[string]map[string]string
	files    map[string]map[string]string

	summaries bool
}

type failure struct {
	status int
	body   string
}

// New starts a backend that is closed when t finishes.
func New(t testing.TB) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{
		calls:    make(map[string]int),
		failures: make(map[string]failure),
		holds:    make(map[string]chan struct{}),
		headers:  make(map[string]http.Header),
		forms:    make(map[string]map[string]string),
		files:    make(map[string]map[string]string),
	}

	r := gin.New()
	r.Use(b.intercept)

	r.GET("/health-check", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	r.GET("/products", b.listProducts)
	r.GET("/products/:id", b.fetchProduct)

	r.POST("/modules", b.createModule)
	r.GET("/modules/:id", b.fetchModule)
	r.PUT("/modules/:id", b.updateModule)
	r.DELETE("/modules/:id", b.deleteModule)
	r.GET("/modules/product/:productId", b.listModules)

	r.POST("/lessons", b.createLesson)
	r.PUT("/lessons/:id", b.updateLesson)
	r.DELETE("/lessons/:id", b.deleteLesson)
	r.POST("/lessons/:id/progress", b.updateProgress)

	r.GET("/posts/product/:productId", b.listPosts)
	r.POST("/posts", b.createPost)
	r.DELETE("/posts/:id", b.deletePost)

	r.GET("/private-groups/product/:productId", b.listGroups)
	r.POST("/private-groups", b.createGroup)
	r.DELETE("/private-groups/:id", b.deleteGroup)

	b.server = httptest.NewServer(r)
	b.URL = b.server.URL
	t.Cleanup(b.Close)
	return b
}

// Close stops the server and releases any held requests.
func (b *Backend) Close() {
	b.mu.Lock()
	for key, ch := range b.holds {
		close(ch)
		delete(b.holds, key)
	}
	b.mu.Unlock()
	b.server.Close()
}

// Calls reports how many requests reached route key.
func (b *Backend) Calls(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

// TotalCalls reports how many requests reached any route.
func (b *Backend) TotalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.calls {
		total += n
	}
	return total
}

// Header returns the headers of the last request to route key.
func (b *Backend) Header(key string) http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.headers[key]
}

// Form returns the multipart values of the last request to route key.
func (b *Backend) Form(key string) map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.forms[key]
}

// File returns the uploaded file name for field in the last request to route key.
func (b *Backend) File(key, field string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.files[key][field]
}

// FailNext makes the next request to route key answer status with body.
func (b *Backend) FailNext(key string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[key] = failure{status: status, body: body}
}

// Hold blocks requests to route key until the returned release func runs.
func (b *Backend) Hold(key string) (release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan struct{})
	b.holds[key] = ch
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			if b.holds[key] == ch {
				delete(b.holds, key)
				close(ch)
			}
			b.mu.Unlock()
		})
	}
}

// ListSummaries makes the product module listing return counts without
// lessons, leaving GET /modules/:id as the only way to read them.
func (b *Backend) ListSummaries() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.summaries = true
}

// SeedProduct stores p, assigning an id when empty.
func (b *Backend) SeedProduct(p content.Product) content.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == "" {
		p.ID = b.nextID("prod")
	}
	b.products = append(b.products, p)
	return p
}

// SeedModule stores m under productID, assigning ids when empty.
func (b *Backend) SeedModule(productID string, m content.Module) content.Module {
	b.mu.Lock()
	defer b.mu.Unlock()

	m = m.Clone()
	if m.ID == "" {
		m.ID = b.nextID("mod")
	}
	m.ProductID = productID
	if m.Lessons == nil {
		m.Lessons = []content.Lesson{}
	}
	for i := range m.Lessons {
		if m.Lessons[i].ID == "" {
			m.Lessons[i].ID = b.nextID("les")
		}
		m.Lessons[i].ModuleID = m.ID
	}
	b.modules = append(b.modules, &m)
	return serverView(m)
}

// SeedPost stores p under productID.
func (b *Backend) SeedPost(productID string, p content.Post) content.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p.ID == "" {
		p.ID = b.nextID("post")
	}
	p.ProductID = productID
	b.posts = append(b.posts, p)
	return p
}

// SeedGroup stores g under productID.
func (b *Backend) SeedGroup(productID string, g content.PrivateGroup) content.PrivateGroup {
	b.mu.Lock()
	defer b.mu.Unlock()
	if g.ID == "" {
		g.ID = b.nextID("grp")
	}
	g.ProductID = productID
	b.groups = append(b.groups, g)
	return g
}

// Module returns the backend's copy of a module.
func (b *Backend) Module(id string) (content.Module, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.findModule(id)
	if m == nil {
		return content.Module{}, false
	}
	return serverView(*m), true
}

func (b *Backend) intercept(c *gin.Context) {
	key := c.Request.Method + " " + c.FullPath()

	b.mu.Lock()
	b.calls[key]++
	b.headers[key] = c.Request.Header.Clone()
	f, failing := b.failures[key]
	delete(b.failures, key)
	hold := b.holds[key]
	b.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-c.Request.Context().Done():
			c.Abort()
			return
		}
	}

	if key != "GET /health-check" && !strings.HasPrefix(c.GetHeader("Authorization"), "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing token"})
		return
	}

	if failing {
		c.Data(f.status, "application/json", []byte(f.body))
		c.Abort()
		return
	}

	c.Next()
}

func (b *Backend) recordForm(c *gin.Context) {
	key := c.Request.Method + " " + c.FullPath()
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		return
	}

	values := map[string]string{}
	files := map[string]string{}
	for name, v := range c.Request.MultipartForm.Value {
		if len(v) > 0 {
			values[name] = v[0]
		}
	}
	for name, fh := range c.Request.MultipartForm.File {
		if len(fh) > 0 {
			files[name] = fh[0].Filename
		}
	}

	b.mu.Lock()
	b.forms[key] = values
	b.files[key] = files
	b.mu.Unlock()
}

func (b *Backend) nextID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s-%d", prefix, b.seq)
}

func (b *Backend) findModule(id string) *content.Module {
	for _, m := range b.modules {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (b *Backend) findLesson(id string) (*content.Module, int) {
	for _, m := range b.modules {
		if idx := m.LessonIndex(id); idx >= 0 {
			return m, idx
		}
	}
	return nil, -1
}

// serverView fills the counters the backend reports. Its progress figure is
// completed/total, which differs from the console's lesson mean.
func serverView(m content.Module) content.Module {
	m = m.Clone()
	m.LessonsCount = len(m.Lessons)
	m.TotalLessons = len(m.Lessons)
	m.CompletedLessons = 0
	for _, l := range m.Lessons {
		if l.Completed {
			m.CompletedLessons++
		}
	}
	m.Progress = 0
	if m.TotalLessons > 0 {
		m.Progress = m.CompletedLessons * 100 / m.TotalLessons
	}
	return m
}

func envelope(data interface{}) gin.H {
	return gin.H{"success": true, "data": data}
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": what + " not found"})
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
