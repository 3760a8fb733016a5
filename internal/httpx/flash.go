package httpx

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	flashCookie  = "messages"
	formPrefix   = "form_"
	flashOutKey  = "flash.out"
	flashMaxSize = 3000
)

type Level string

const (
	Success Level = "success"
	Error   Level = "error"
	Info    Level = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level Level  `json:"l"`
	Text  string `json:"t"`
}

// AddFlash queues a message for the next page the client loads.
func AddFlash(c *gin.Context, level Level, text string) {
	var pending []Flash
	if v, ok := c.Get(flashOutKey); ok {
		pending = v.([]Flash)
	}
	pending = append(pending, Flash{Level: level, Text: text})
	c.Set(flashOutKey, pending)

	raw, err := encode(pending)
	if err != nil || len(raw) > flashMaxSize {
		return
	}
	dropSetCookie(c, flashCookie)
	setCookie(c, flashCookie, raw, 0)
}

// Flashes returns and consumes the messages carried by the request.
func Flashes(c *gin.Context) []Flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	if _, queued := c.Get(flashOutKey); !queued {
		setCookie(c, flashCookie, "", -1)
	}
	var out []Flash
	if err := decode(raw, &out); err != nil {
		return nil
	}
	return out
}

// SaveForm keeps submitted form values across a redirect so the page can be
// refilled after a failed submit.
func SaveForm(c *gin.Context, name string, v any) {
	raw, err := encode(v)
	if err != nil || len(raw) > flashMaxSize {
		return
	}
	setCookie(c, formPrefix+name, raw, 0)
}

// LoadForm fills dst from a form saved by SaveForm and forgets it.
func LoadForm(c *gin.Context, name string, dst any) bool {
	raw, err := c.Cookie(formPrefix + name)
	if err != nil || raw == "" {
		return false
	}
	setCookie(c, formPrefix+name, "", -1)
	return decode(raw, dst) == nil
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func decode(raw string, dst any) error {
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", false, true)
}

// dropSetCookie removes a Set-Cookie for name already queued on the response.
func dropSetCookie(c *gin.Context, name string) {
	h := c.Writer.Header()
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, name+"=") {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
}
