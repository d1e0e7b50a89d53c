package site

import (
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"articlehub/common"
	"articlehub/store"
)

const (
	recentArticles = 6

	MsgContactSent   = "Thank you for your message, we will get back to you soon!"
	MsgContactFailed = "Sorry, your message could not be sent. Please try again later."
)

// Mailer delivers contact-form messages.
type Mailer interface {
	SendContactMessage(name, replyTo, message string) error
}

type SiteModule struct {
	store  store.Store
	mailer Mailer
	domain string
	logger *zap.Logger
}

func NewSiteModule(st store.Store, mailer Mailer, domain string, logger *zap.Logger) *SiteModule {
	return &SiteModule{
		store:  st,
		mailer: mailer,
		domain: strings.TrimSuffix(domain, "/"),
		logger: logger,
	}
}

func (s *SiteModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/", s.index)
	router.GET("/index", s.index)
	router.GET("/contact", s.contactPage)
	router.POST("/contact", s.contactPost)
	router.GET("/sitemap.xml", s.sitemap)
}

func (s *SiteModule) index(c *gin.Context) {
	articles, err := s.store.RecentArticles(c.Request.Context(), recentArticles)
	if err != nil {
		common.RenderStoreError(c, s.logger, err, "Articles")
		return
	}

	common.Render(c, http.StatusOK, "index.html", gin.H{
		"title":    "Home",
		"articles": articles,
	})
}

type contactForm struct {
	Name    string `form:"name" binding:"required,max=100"`
	Email   string `form:"email" binding:"required,email"`
	Message string `form:"message" binding:"required,max=5000"`
}

func (s *SiteModule) renderContact(c *gin.Context, status int, form contactForm, errs []string) {
	common.Render(c, status, "contact.html", gin.H{
		"title":   "Contact",
		"name":    form.Name,
		"email":   form.Email,
		"message": form.Message,
		"errors":  errs,
	})
}

func (s *SiteModule) contactPage(c *gin.Context) {
	s.renderContact(c, http.StatusOK, contactForm{}, nil)
}

func (s *SiteModule) contactPost(c *gin.Context) {
	var form contactForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderContact(c, http.StatusBadRequest, form, common.ValidationMessages(err))
		return
	}

	if err := s.mailer.SendContactMessage(form.Name, form.Email, form.Message); err != nil {
		s.logger.Error("sending contact message",
			zap.String("reply_to", form.Email),
			zap.Error(err),
		)
		common.RedirectWithFlash(c, "/contact", MsgContactFailed)
		return
	}

	s.logger.Info("contact message sent", zap.String("reply_to", form.Email))
	common.RedirectWithFlash(c, "/contact", MsgContactSent)
}

func (s *SiteModule) sitemap(c *gin.Context) {
	ctx := c.Request.Context()

	articles, err := s.store.ListArticles(ctx)
	if err != nil {
		s.logger.Error("building sitemap", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	topics, err := s.store.ListTopics(ctx)
	if err != nil {
		s.logger.Error("building sitemap", zap.Error(err))
		c.Status(http.StatusInternalServerError)
		return
	}

	var sitemap strings.Builder
	sitemap.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sitemap.WriteString("\n")
	sitemap.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	sitemap.WriteString("\n")

	writeURL := func(path, lastmod, changefreq, priority string) {
		sitemap.WriteString("  <url>\n")
		sitemap.WriteString("    <loc>" + html.EscapeString(s.domain+path) + "</loc>\n")
		if lastmod != "" {
			sitemap.WriteString("    <lastmod>" + lastmod + "</lastmod>\n")
		}
		sitemap.WriteString("    <changefreq>" + changefreq + "</changefreq>\n")
		sitemap.WriteString("    <priority>" + priority + "</priority>\n")
		sitemap.WriteString("  </url>\n")
	}

	writeURL("/", "", "daily", "1.0")
	writeURL("/articles", "", "daily", "0.8")
	writeURL("/further_reading", "", "weekly", "0.6")

	for _, topic := range topics {
		writeURL("/filter/topic/"+topic.ID, "", "weekly", "0.5")
	}
	for _, article := range articles {
		writeURL("/article/"+article.ID, article.CreatedAt.Format(time.RFC3339), "monthly", "0.7")
	}

	sitemap.WriteString("</urlset>\n")

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, sitemap.String())
}
