package topics

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"articlehub/apptest"
	"articlehub/models"
	"articlehub/store"
)

func setup(t *testing.T) (*store.GormStore, *apptest.Client) {
	st := apptest.NewStore(t)
	router := apptest.NewRouter(t, st, NewTopicModule(st, zap.NewNop()).RegisterRoutes)
	return st, apptest.NewClient(t, router)
}

func createTopic(t *testing.T, st store.Store, name string) *models.Topic {
	topic := &models.Topic{TopicName: name}
	require.NoError(t, st.CreateTopic(context.Background(), topic))
	return topic
}

func TestSummarize(t *testing.T) {
	topics := []models.Topic{{TopicName: "Geology"}, {TopicName: "History"}}
	articles := []models.Article{
		{TopicName: "History"},
		{TopicName: "History"},
		{TopicName: "Cooking"},
	}

	summaries := summarize(topics, articles)
	require.Len(t, summaries, 2)
	assert.Equal(t, 0, summaries[0].ArticleCount)
	assert.Equal(t, 2, summaries[1].ArticleCount)
}

func TestTopics_RequiresLogin(t *testing.T) {
	_, client := setup(t)

	w := client.Get("/topics")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestTopics_List(t *testing.T) {
	st, client := setup(t)
	user := apptest.CreateUser(t, st, "alice", "secret", models.RoleUser)
	createTopic(t, st, "History")
	createTopic(t, st, "Astronomy")
	require.NoError(t, st.CreateArticle(context.Background(), &models.Article{ArticleName: "Roman Roads", TopicName: "History"}))
	client.LoginAs(user)

	w := client.Get("/topics")
	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "History</a> (1)")
	assert.Contains(t, body, "Astronomy</a> (0)")
	assert.NotContains(t, body, "/add_topic")
}

func TestAddTopic_NonAdminRedirected(t *testing.T) {
	st, client := setup(t)
	user := apptest.CreateUser(t, st, "alice", "secret", models.RoleUser)
	client.LoginAs(user)

	for _, path := range []string{"/add_topic", "/add_further_reading"} {
		w := client.Get(path)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/topics", w.Header().Get("Location"), path)
		assert.Contains(t, client.Follow(w).Body.String(), "You are not authorized to view this page", path)
	}

	w := client.PostForm("/add_topic", url.Values{"topic_name": {"Forbidden"}})
	assert.Equal(t, http.StatusFound, w.Code)

	topics, err := st.ListTopics(context.Background())
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestEditDeleteTopic_NonAdminRedirected(t *testing.T) {
	st, client := setup(t)
	user := apptest.CreateUser(t, st, "alice", "secret", models.RoleUser)
	topic := createTopic(t, st, "History")
	client.LoginAs(user)

	for _, path := range []string{"/edit_topic/" + topic.ID, "/delete_topic/" + topic.ID} {
		w := client.Get(path)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/topics", w.Header().Get("Location"), path)
		assert.Contains(t, client.Follow(w).Body.String(), "You are not authorized to edit this material", path)
	}

	_, err := st.GetTopic(context.Background(), topic.ID)
	assert.NoError(t, err)
}

func TestAddTopic_Anonymous(t *testing.T) {
	_, client := setup(t)

	w := client.Get("/add_topic")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestTopicCRUD_Admin(t *testing.T) {
	st, client := setup(t)
	ctx := context.Background()
	admin := apptest.CreateUser(t, st, "editor", "secret", models.RoleAdmin)
	client.LoginAs(admin)

	w := client.Get("/add_topic")
	assert.Equal(t, http.StatusOK, w.Code)

	w = client.PostForm("/add_topic", url.Values{"topic_name": {" History "}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/topics", w.Header().Get("Location"))
	assert.Contains(t, client.Follow(w).Body.String(), MsgTopicAdded)

	topics, err := st.ListTopics(ctx)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, "History", topics[0].TopicName)
	id := topics[0].ID

	w = client.Get("/edit_topic/" + id)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="History"`)

	w = client.PostForm("/edit_topic/"+id, url.Values{"topic_name": {"World History"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, client.Follow(w).Body.String(), MsgTopicUpdated)

	topic, err := st.GetTopic(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "World History", topic.TopicName)

	w = client.Get("/delete_topic/" + id)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, client.Follow(w).Body.String(), MsgTopicDeleted)

	_, err = st.GetTopic(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAddTopic_Invalid(t *testing.T) {
	st, client := setup(t)
	admin := apptest.CreateUser(t, st, "editor", "secret", models.RoleAdmin)
	client.LoginAs(admin)

	w := client.PostForm("/add_topic", url.Values{"topic_name": {""}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Topic is required")
}

func TestDeleteTopic_DoesNotCascade(t *testing.T) {
	st, client := setup(t)
	ctx := context.Background()
	admin := apptest.CreateUser(t, st, "editor", "secret", models.RoleAdmin)
	topic := createTopic(t, st, "History")
	article := &models.Article{ArticleName: "Roman Roads", TopicName: "History"}
	require.NoError(t, st.CreateArticle(ctx, article))
	reading := &models.FurtherReading{TopicName: "History", BookTitle: "SPQR"}
	require.NoError(t, st.CreateFurtherReading(ctx, reading))
	client.LoginAs(admin)

	w := client.Get("/delete_topic/" + topic.ID)
	require.Equal(t, http.StatusFound, w.Code)

	kept, err := st.GetArticle(ctx, article.ID)
	require.NoError(t, err)
	assert.Equal(t, "History", kept.TopicName)

	_, err = st.GetFurtherReading(ctx, reading.ID)
	assert.NoError(t, err)
}

func TestEditTopic_Missing(t *testing.T) {
	st, client := setup(t)
	admin := apptest.CreateUser(t, st, "editor", "secret", models.RoleAdmin)
	client.LoginAs(admin)

	w := client.Get("/edit_topic/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Topic not found")
}

func TestFurtherReading_PublicList(t *testing.T) {
	st, client := setup(t)
	require.NoError(t, st.CreateFurtherReading(context.Background(), &models.FurtherReading{
		TopicName: "History",
		BookTitle: "SPQR",
		Author:    "Mary Beard",
	}))

	w := client.Get("/further_reading")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SPQR")
	assert.Contains(t, w.Body.String(), "by Mary Beard")
	assert.NotContains(t, w.Body.String(), "/edit_further_reading/")
}

func TestFurtherReading_FilterByTopic(t *testing.T) {
	st, client := setup(t)
	ctx := context.Background()
	history := createTopic(t, st, "History")
	empty := createTopic(t, st, "Astronomy")
	require.NoError(t, st.CreateFurtherReading(ctx, &models.FurtherReading{TopicName: "History", BookTitle: "SPQR"}))
	require.NoError(t, st.CreateFurtherReading(ctx, &models.FurtherReading{TopicName: "Geology", BookTitle: "Deep Time"}))

	w := client.Get("/filter_reading/further_reading/" + history.ID)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SPQR")
	assert.NotContains(t, w.Body.String(), "Deep Time")

	w = client.Get("/filter_reading/further_reading/" + empty.ID)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No further reading yet.")

	w = client.Get("/filter_reading/further_reading/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFurtherReadingCRUD_Admin(t *testing.T) {
	st, client := setup(t)
	ctx := context.Background()
	admin := apptest.CreateUser(t, st, "editor", "secret", models.RoleAdmin)
	createTopic(t, st, "History")
	client.LoginAs(admin)

	w := client.Get("/add_further_reading")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<option value="History"`)

	w = client.PostForm("/add_further_reading", url.Values{
		"topic_name": {"History"},
		"book_title": {"SPQR"},
		"author":     {"Mary Beard"},
		"website":    {"https://example.com/spqr"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/topics", w.Header().Get("Location"))
	assert.Contains(t, client.Follow(w).Body.String(), MsgReadingAdded)

	readings, err := st.ListFurtherReading(ctx)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	id := readings[0].ID
	assert.Equal(t, "Mary Beard", readings[0].Author)

	w = client.PostForm("/edit_further_reading/"+id, url.Values{
		"topic_name": {"History"},
		"book_title": {"SPQR: A History of Ancient Rome"},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, client.Follow(w).Body.String(), MsgReadingUpdated)

	updated, err := st.GetFurtherReading(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "SPQR: A History of Ancient Rome", updated.BookTitle)
	assert.Empty(t, updated.Author)

	w = client.Get("/delete_further_reading/" + id)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, client.Follow(w).Body.String(), MsgReadingDeleted)

	_, err = st.GetFurtherReading(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFurtherReading_InvalidWebsite(t *testing.T) {
	st, client := setup(t)
	admin := apptest.CreateUser(t, st, "editor", "secret", models.RoleAdmin)
	client.LoginAs(admin)

	w := client.PostForm("/add_further_reading", url.Values{
		"topic_name": {"History"},
		"website":    {"not a url"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Website must be a valid URL")
}
