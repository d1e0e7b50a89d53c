package topics

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"articlehub/common"
	"articlehub/models"
	"articlehub/store"
)

const (
	MsgTopicAdded   = "Topic contribution successful!"
	MsgTopicUpdated = "Topic update successful!"
	MsgTopicDeleted = "Topic successfully deleted."

	MsgReadingAdded   = "Further Reading contribution successful!"
	MsgReadingUpdated = "Material update successful!"
	MsgReadingDeleted = "Material successfully deleted."
)

type TopicModule struct {
	store  store.Store
	logger *zap.Logger
}

func NewTopicModule(st store.Store, logger *zap.Logger) *TopicModule {
	return &TopicModule{store: st, logger: logger}
}

func (m *TopicModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/topics", common.RequireLogin, m.list)

	canManageTopics := common.RequireCapability(models.CapManageTopics, "/topics", common.MsgNotAuthorized)
	canEditTopics := common.RequireCapability(models.CapManageTopics, "/topics", common.MsgCannotEdit)
	router.GET("/add_topic", canManageTopics, m.newTopic)
	router.POST("/add_topic", canManageTopics, m.createTopic)
	router.GET("/edit_topic/:id", canEditTopics, m.loadTopic, m.editTopic)
	router.POST("/edit_topic/:id", canEditTopics, m.loadTopic, m.updateTopic)
	router.GET("/delete_topic/:id", canEditTopics, m.loadTopic, m.deleteTopic)

	router.GET("/further_reading", m.listReading)
	router.GET("/filter_reading/further_reading/:id", m.filterReading)

	manageReading := router.Group("/")
	manageReading.Use(common.RequireCapability(models.CapManageReading, "/topics", common.MsgNotAuthorized))
	{
		manageReading.GET("/add_further_reading", m.newReading)
		manageReading.POST("/add_further_reading", m.createReading)
		manageReading.GET("/edit_further_reading/:id", m.loadReading, m.editReading)
		manageReading.POST("/edit_further_reading/:id", m.loadReading, m.updateReading)
		manageReading.GET("/delete_further_reading/:id", m.loadReading, m.deleteReading)
	}
}

// TopicSummary is a topic together with the number of articles filed under
// its current name.
type TopicSummary struct {
	Topic        models.Topic
	ArticleCount int
}

func summarize(topics []models.Topic, articles []models.Article) []TopicSummary {
	counts := make(map[string]int, len(topics))
	for _, article := range articles {
		counts[article.TopicName]++
	}

	summaries := make([]TopicSummary, 0, len(topics))
	for _, topic := range topics {
		summaries = append(summaries, TopicSummary{Topic: topic, ArticleCount: counts[topic.TopicName]})
	}
	return summaries
}

func (m *TopicModule) list(c *gin.Context) {
	ctx := c.Request.Context()

	topics, err := m.store.ListTopics(ctx)
	if err != nil {
		common.RenderStoreError(c, m.logger, err, "Topics")
		return
	}
	articles, err := m.store.ListArticles(ctx)
	if err != nil {
		common.RenderStoreError(c, m.logger, err, "Articles")
		return
	}

	common.Render(c, http.StatusOK, "topics.html", gin.H{
		"title":  "Topics",
		"topics": summarize(topics, articles),
	})
}

type topicForm struct {
	TopicName string `form:"topic_name" binding:"required,max=60"`
}

func (m *TopicModule) renderAddTopic(c *gin.Context, status int, name string, errs []string) {
	topics, err := m.store.ListTopics(c.Request.Context())
	if err != nil {
		common.RenderStoreError(c, m.logger, err, "Topics")
		return
	}
	common.Render(c, status, "add_topic.html", gin.H{
		"title":      "Add Topic",
		"topic_name": name,
		"topics":     topics,
		"errors":     errs,
	})
}

func (m *TopicModule) newTopic(c *gin.Context) {
	m.renderAddTopic(c, http.StatusOK, "", nil)
}

func (m *TopicModule) createTopic(c *gin.Context) {
	var form topicForm
	if err := c.ShouldBind(&form); err != nil {
		m.renderAddTopic(c, http.StatusBadRequest, form.TopicName, common.ValidationMessages(err))
		return
	}

	topic := &models.Topic{TopicName: strings.TrimSpace(form.TopicName)}
	if err := m.store.CreateTopic(c.Request.Context(), topic); err != nil {
		common.RenderStoreError(c, m.logger, err, "Topic")
		return
	}

	m.logger.Info("topic created", zap.String("topic_id", topic.ID), zap.String("topic_name", topic.TopicName))
	common.RedirectWithFlash(c, "/topics", MsgTopicAdded)
}

func (m *TopicModule) loadTopic(c *gin.Context) {
	topic, err := m.store.GetTopic(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.RenderStoreError(c, m.logger, err, "Topic")
		c.Abort()
		return
	}
	c.Set("topic", topic)
	c.Next()
}

func loadedTopic(c *gin.Context) *models.Topic {
	return c.MustGet("topic").(*models.Topic)
}

func (m *TopicModule) editTopic(c *gin.Context) {
	common.Render(c, http.StatusOK, "edit_topic.html", gin.H{
		"title": "Edit Topic",
		"topic": loadedTopic(c),
	})
}

// updateTopic renames the topic only. Articles keep the name they were
// filed under.
func (m *TopicModule) updateTopic(c *gin.Context) {
	topic := loadedTopic(c)

	var form topicForm
	if err := c.ShouldBind(&form); err != nil {
		common.Render(c, http.StatusBadRequest, "edit_topic.html", gin.H{
			"title":  "Edit Topic",
			"topic":  topic,
			"errors": common.ValidationMessages(err),
		})
		return
	}

	topic.TopicName = strings.TrimSpace(form.TopicName)
	if err := m.store.UpdateTopic(c.Request.Context(), topic); err != nil {
		common.RenderStoreError(c, m.logger, err, "Topic")
		return
	}
	common.RedirectWithFlash(c, "/topics", MsgTopicUpdated)
}

func (m *TopicModule) deleteTopic(c *gin.Context) {
	topic := loadedTopic(c)

	if err := m.store.DeleteTopic(c.Request.Context(), topic.ID); err != nil {
		common.RenderStoreError(c, m.logger, err, "Topic")
		return
	}

	m.logger.Info("topic deleted", zap.String("topic_id", topic.ID), zap.String("topic_name", topic.TopicName))
	common.RedirectWithFlash(c, "/topics", MsgTopicDeleted)
}
