package main

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/quickcart/internal/httpx"
	"github.com/MikeMC777/quickcart/internal/media"
	"github.com/MikeMC777/quickcart/internal/session"
	"github.com/MikeMC777/quickcart/web"
)

func loadTemplates(m *media.Resolver) (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"imageURL": m.URL,
		"money":    func(d decimal.Decimal) string { return d.StringFixed(2) },
		"date":     func(t time.Time) string { return t.UTC().Format("Jan 2, 2006 15:04") },
	}).ParseFS(web.Templates, "templates/*.html")
}

// render fills in what every page's layout needs and writes the page.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	var user *session.Identity
	if id, ok := httpx.CurrentUser(c); ok {
		user = &id
	}
	data["user"] = user
	data["flashes"] = httpx.Flashes(c)
	if _, ok := data["query"]; !ok {
		data["query"] = ""
	}
	c.HTML(status, name, data)
}

func notFound(c *gin.Context) {
	render(c, http.StatusNotFound, "not_found.html", gin.H{"title": "Not found"})
	c.Abort()
}

func serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	httpx.Log(c).Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	render(c, http.StatusInternalServerError, "error.html", gin.H{"title": "Error"})
	c.Abort()
}

func redirect(c *gin.Context, to string) {
	c.Redirect(http.StatusFound, to)
}

// pathID reads a positive integer path parameter. Anything else is a 404,
// as the URL simply does not exist.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		notFound(c)
		return 0, false
	}
	return id, true
}

func currentUserID(c *gin.Context) int64 {
	id, _ := httpx.CurrentUser(c)
	return id.UserID
}
