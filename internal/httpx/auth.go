package httpx

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/quickcart/internal/session"
)

const identityKey = "identity"

// Authenticate resolves the session cookie for this request only. A missing
// or invalid cookie leaves the request anonymous.
func Authenticate(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, err := m.Read(c); err == nil {
			c.Set(identityKey, *id)
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (session.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return session.Identity{}, false
	}
	id, ok := v.(session.Identity)
	return id, ok
}

// RequireLogin sends anonymous requests to the login page, remembering where
// they were headed.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			to := "/login/"
			if next := resumePath(c.Request); next != "" {
				to += "?next=" + url.QueryEscape(next)
			}
			c.Redirect(http.StatusFound, to)
			c.Abort()
			return
		}
		c.Next()
	}
}

// resumePath is where login should send the user back to. The login redirect
// is followed with a GET, so a form post resumes at the page it was sent from.
func resumePath(r *http.Request) string {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return r.URL.RequestURI()
	}
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host {
		return ""
	}
	return SafeNext(ref.RequestURI(), "")
}

// SafeNext returns next when it is a local absolute path, fallback otherwise.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, `/\`) {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
