// Package views holds the site's HTML templates, embedded in the binary.
package views

import (
	"embed"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"articlehub/models"
)

//go:embed *.html
var files embed.FS

// Load parses every template. Pages are addressed by file name
// ("articles.html"), shared blocks live in partials.html.
func Load(domain string) (*template.Template, error) {
	return template.New("").Funcs(FuncMap(domain)).ParseFS(files, "*.html")
}

func FuncMap(domain string) template.FuncMap {
	return template.FuncMap{
		"now": func() time.Time {
			return time.Now()
		},
		"domain": func() string {
			return strings.TrimSuffix(domain, "/")
		},
		"excerpt": excerpt,
		"canModify": func(user *models.User, article models.Article) bool {
			return user.CanModify(&article)
		},
		"can": func(user *models.User, capability string) bool {
			return user.Can(models.Capability(capability))
		},
	}
}

// excerpt cuts s to at most n runes on a word boundary.
func excerpt(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
