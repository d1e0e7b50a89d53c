package topics

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"articlehub/common"
	"articlehub/models"
)

type readingForm struct {
	TopicName     string `form:"topic_name" binding:"required"`
	BookTitle     string `form:"book_title"`
	Website       string `form:"website" binding:"omitempty,url"`
	ArticleTitle  string `form:"article_title"`
	Author        string `form:"author"`
	DatePublished string `form:"date_published"`
	Publisher     string `form:"publisher"`
}

func (f *readingForm) apply(reading *models.FurtherReading) {
	reading.TopicName = strings.TrimSpace(f.TopicName)
	reading.BookTitle = strings.TrimSpace(f.BookTitle)
	reading.Website = strings.TrimSpace(f.Website)
	reading.ArticleTitle = strings.TrimSpace(f.ArticleTitle)
	reading.Author = strings.TrimSpace(f.Author)
	reading.DatePublished = strings.TrimSpace(f.DatePublished)
	reading.Publisher = strings.TrimSpace(f.Publisher)
}

func (m *TopicModule) renderReadingList(c *gin.Context, topic *models.Topic, readings []models.FurtherReading) {
	topics, err := m.store.ListTopics(c.Request.Context())
	if err != nil {
		common.RenderStoreError(c, m.logger, err, "Topics")
		return
	}
	common.Render(c, http.StatusOK, "further_reading.html", gin.H{
		"title":           "Further Reading",
		"page_title":      "Further Reading",
		"topic":           topic,
		"topics":          topics,
		"further_reading": readings,
	})
}

func (m *TopicModule) listReading(c *gin.Context) {
	readings, err := m.store.ListFurtherReading(c.Request.Context())
	if err != nil {
		common.RenderStoreError(c, m.logger, err, "Further reading")
		return
	}
	m.renderReadingList(c, nil, readings)
}

func (m *TopicModule) filterReading(c *gin.Context) {
	ctx := c.Request.Context()

	topic, err := m.store.GetTopic(ctx, c.Param("id"))
	if err != nil {
		common.RenderStoreError(c, m.logger, err, "Topic")
		return
	}

	readings, err := m.store.ListFurtherReadingByTopic(ctx, topic.TopicName)
	if err != nil {
		common.RenderStoreError(c, m.logger, err, "Further reading")
		return
	}
	m.renderReadingList(c, topic, readings)
}

func (m *TopicModule) renderReadingForm(c *gin.Context, status int, name string, reading *models.FurtherReading, errs []string) {
	topics, err := m.store.ListTopics(c.Request.Context())
	if err != nil {
		common.RenderStoreError(c, m.logger, err, "Topics")
		return
	}
	common.Render(c, status, name, gin.H{
		"title":   "Further Reading",
		"reading": reading,
		"topics":  topics,
		"errors":  errs,
	})
}

func (m *TopicModule) newReading(c *gin.Context) {
	m.renderReadingForm(c, http.StatusOK, "add_further_reading.html", &models.FurtherReading{}, nil)
}

func (m *TopicModule) createReading(c *gin.Context) {
	var form readingForm
	reading := &models.FurtherReading{}
	if err := c.ShouldBind(&form); err != nil {
		form.apply(reading)
		m.renderReadingForm(c, http.StatusBadRequest, "add_further_reading.html", reading, common.ValidationMessages(err))
		return
	}
	form.apply(reading)

	if err := m.store.CreateFurtherReading(c.Request.Context(), reading); err != nil {
		common.RenderStoreError(c, m.logger, err, "Further reading")
		return
	}

	m.logger.Info("further reading created", zap.String("reading_id", reading.ID))
	common.RedirectWithFlash(c, "/topics", MsgReadingAdded)
}

func (m *TopicModule) loadReading(c *gin.Context) {
	reading, err := m.store.GetFurtherReading(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RenderStoreError(c, m.logger, err, "Further reading")
		c.Abort()
		return
	}
	c.Set("reading", reading)
	c.Next()
}

func loadedReading(c *gin.Context) *models.FurtherReading {
	return c.MustGet("reading").(*models.FurtherReading)
}

func (m *TopicModule) editReading(c *gin.Context) {
	m.renderReadingForm(c, http.StatusOK, "edit_further_reading.html", loadedReading(c), nil)
}

func (m *TopicModule) updateReading(c *gin.Context) {
	reading := loadedReading(c)

	var form readingForm
	if err := c.ShouldBind(&form); err != nil {
		form.apply(reading)
		m.renderReadingForm(c, http.StatusBadRequest, "edit_further_reading.html", reading, common.ValidationMessages(err))
		return
	}
	form.apply(reading)

	if err := m.store.UpdateFurtherReading(c.Request.Context(), reading); err != nil {
		common.RenderStoreError(c, m.logger, err, "Further reading")
		return
	}
	common.RedirectWithFlash(c, "/topics", MsgReadingUpdated)
}

func (m *TopicModule) deleteReading(c *gin.Context) {
	reading := loadedReading(c)

	if err := m.store.DeleteFurtherReading(c.Request.Context(), reading.ID); err != nil {
		common.RenderStoreError(c, m.logger, err, "Further reading")
		return
	}
	common.RedirectWithFlash(c, "/topics", MsgReadingDeleted)
}
