package articles

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"

	"articlehub/cache"
	"articlehub/common"
	"articlehub/models"
	"articlehub/store"
)

const (
	cacheNamespace = "articles"

	MsgAdded         = "Article contribution successful!"
	MsgUpdated       = "Article update successful!"
	MsgDeleted       = "Article successfully deleted."
	MsgNotAuthorized = common.MsgCannotEdit
)

// Article bodies come from visitors, so raw HTML is not passed through.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
	),
)

type ArticleModule struct {
	store  store.Store
	cache  *cache.PageCache
	logger *zap.Logger
}

func NewArticleModule(st store.Store, pageCache *cache.PageCache, logger *zap.Logger) *ArticleModule {
	return &ArticleModule{store: st, cache: pageCache, logger: logger}
}

func (a *ArticleModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/articles", a.list)
	router.GET("/search", a.search)
	router.POST("/search", a.searchPost)
	router.GET("/filter/topic/:id", a.filterByTopic)

	detail := []gin.HandlerFunc{}
	if a.cache != nil {
		detail = append(detail, a.cache.Middleware(cacheNamespace, "id", isLoggedIn))
	}
	router.GET("/article/:id", append(detail, a.show)...)

	authed := router.Group("/")
	authed.Use(common.RequireLogin)
	{
		authed.GET("/add_article", a.newArticle)
		authed.POST("/add_article", a.createArticle)
		authed.GET("/edit_article/:id", a.loadEditableArticle, a.editArticle)
		authed.POST("/edit_article/:id", a.loadEditableArticle, a.updateArticle)
		authed.GET("/delete_article/:id", a.loadEditableArticle, a.deleteArticle)
	}
}

func isLoggedIn(c *gin.Context) bool {
	return common.CurrentUser(c) != nil
}

type articleForm struct {
	TopicName      string `form:"topic_name" binding:"required"`
	ArticleName    string `form:"article_name" binding:"required,max=120"`
	ImageURL       string `form:"image_url" binding:"omitempty,url"`
	ArticleArticle string `form:"article_article" binding:"required"`
	LocationName   string `form:"location_name"`
	DateAdded      string `form:"date_added"`
}

func (f *articleForm) apply(article *models.Article) {
	article.TopicName = strings.TrimSpace(f.TopicName)
	article.ArticleName = strings.TrimSpace(f.ArticleName)
	article.ImageURL = strings.TrimSpace(f.ImageURL)
	article.ArticleArticle = f.ArticleArticle
	article.LocationName = strings.TrimSpace(f.LocationName)
	article.DateAdded = strings.TrimSpace(f.DateAdded)
	if article.DateAdded == "" {
		article.DateAdded = time.Now().Format("2006-01-02")
	}
}

// ClearCache drops every cached article page.
func (a *ArticleModule) ClearCache() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.ClearNamespace(cacheNamespace)
}

func (a *ArticleModule) clearCache(id string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Clear(cacheNamespace, id); err != nil {
		a.logger.Warn("clearing article cache", zap.String("article_id", id), zap.Error(err))
	}
}

// renderList renders the shared listing template for one page of articles.
func (a *ArticleModule) renderList(c *gin.Context, title string, articles []models.Article, extra gin.H) {
	topics, err := a.store.ListTopics(c.Request.Context())
	if err != nil {
		common.RenderStoreError(c, a.logger, err, "Topics")
		return
	}

	page, pagination := common.PaginateRequest(c, articles)
	data := gin.H{
		"title":      title,
		"page_title": title,
		"articles":   page,
		"pagination": pagination,
		"topics":     topics,
	}
	for k, v := range extra {
		data[k] = v
	}
	common.Render(c, http.StatusOK, "articles.html", data)
}

func (a *ArticleModule) list(c *gin.Context) {
	articles, err := a.store.ListArticles(c.Request.Context())
	if err != nil {
		common.RenderStoreError(c, a.logger, err, "Articles")
		return
	}
	a.renderList(c, "Articles", articles, nil)
}

func (a *ArticleModule) searchPost(c *gin.Context) {
	query := strings.TrimSpace(c.PostForm("query"))
	if query == "" {
		c.Redirect(http.StatusFound, "/articles")
		return
	}
	c.Redirect(http.StatusFound, "/search?query="+url.QueryEscape(query))
}

func (a *ArticleModule) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.Redirect(http.StatusFound, "/articles")
		return
	}

	articles, err := a.store.SearchArticles(c.Request.Context(), query)
	if err != nil {
		common.RenderStoreError(c, a.logger, err, "Articles")
		return
	}
	a.renderList(c, "Article Results", articles, gin.H{"query": query})
}

// filterByTopic lists articles whose copied topic name equals the topic's
// current name.
func (a *ArticleModule) filterByTopic(c *gin.Context) {
	ctx := c.Request.Context()

	topic, err := a.store.GetTopic(ctx, c.Param("id"))
	if err != nil {
		common.RenderStoreError(c, a.logger, err, "Topic")
		return
	}

	articles, err := a.store.ListArticlesByTopic(ctx, topic.TopicName)
	if err != nil {
		common.RenderStoreError(c, a.logger, err, "Articles")
		return
	}
	a.renderList(c, topic.TopicName, articles, gin.H{"topic": topic})
}

func (a *ArticleModule) show(c *gin.Context) {
	article, err := a.store.GetArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RenderStoreError(c, a.logger, err, "Article")
		return
	}

	common.Render(c, http.StatusOK, "article.html", gin.H{
		"title":    article.ArticleName,
		"article":  article,
		"bodyHTML": template.HTML(renderMarkdown(article.ArticleArticle)),
	})
}

func (a *ArticleModule) renderForm(c *gin.Context, status int, name string, article *models.Article, errs []string) {
	topics, err := a.store.ListTopics(c.Request.Context())
	if err != nil {
		common.RenderStoreError(c, a.logger, err, "Topics")
		return
	}
	common.Render(c, status, name, gin.H{
		"title":   "Article",
		"article": article,
		"topics":  topics,
		"errors":  errs,
	})
}

func (a *ArticleModule) newArticle(c *gin.Context) {
	a.renderForm(c, http.StatusOK, "add_article.html", &models.Article{}, nil)
}

func (a *ArticleModule) createArticle(c *gin.Context) {
	user := common.CurrentUser(c)

	var form articleForm
	article := &models.Article{CreatedBy: user.Username}
	if err := c.ShouldBind(&form); err != nil {
		form.apply(article)
		a.renderForm(c, http.StatusBadRequest, "add_article.html", article, common.ValidationMessages(err))
		return
	}
	form.apply(article)

	if err := a.store.CreateArticle(c.Request.Context(), article); err != nil {
		common.RenderStoreError(c, a.logger, err, "Article")
		return
	}

	a.logger.Info("article created",
		zap.String("article_id", article.ID),
		zap.String("created_by", article.CreatedBy),
	)
	common.RedirectWithFlash(c, "/articles", MsgAdded)
}

// loadEditableArticle loads :id and stops anyone who is neither its creator
// nor allowed to moderate articles.
func (a *ArticleModule) loadEditableArticle(c *gin.Context) {
	article, err := a.store.GetArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RenderStoreError(c, a.logger, err, "Article")
		c.Abort()
		return
	}

	if !common.CurrentUser(c).CanModify(article) {
		common.RedirectWithFlash(c, "/articles", MsgNotAuthorized)
		c.Abort()
		return
	}

	c.Set("article", article)
	c.Next()
}

func editableArticle(c *gin.Context) *models.Article {
	return c.MustGet("article").(*models.Article)
}

func (a *ArticleModule) editArticle(c *gin.Context) {
	a.renderForm(c, http.StatusOK, "edit_article.html", editableArticle(c), nil)
}

func (a *ArticleModule) updateArticle(c *gin.Context) {
	article := editableArticle(c)

	var form articleForm
	if err := c.ShouldBind(&form); err != nil {
		form.apply(article)
		a.renderForm(c, http.StatusBadRequest, "edit_article.html", article, common.ValidationMessages(err))
		return
	}
	form.apply(article)

	if err := a.store.UpdateArticle(c.Request.Context(), article); err != nil {
		common.RenderStoreError(c, a.logger, err, "Article")
		return
	}
	a.clearCache(article.ID)

	common.RedirectWithFlash(c, "/articles", MsgUpdated)
}

func (a *ArticleModule) deleteArticle(c *gin.Context) {
	article := editableArticle(c)

	if err := a.store.DeleteArticle(c.Request.Context(), article.ID); err != nil {
		common.RenderStoreError(c, a.logger, err, "Article")
		return
	}
	a.clearCache(article.ID)

	a.logger.Info("article deleted",
		zap.String("article_id", article.ID),
		zap.String("deleted_by", common.CurrentUser(c).Username),
	)
	common.RedirectWithFlash(c, "/articles", MsgDeleted)
}

func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return template.HTMLEscapeString(content)
	}
	return buf.String()
}
