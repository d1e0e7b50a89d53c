package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"articlehub/models"
)

const (
	usersCollection          = "users"
	articlesCollection       = "articles"
	topicsCollection         = "topics"
	furtherReadingCollection = "further_reading"
)

// MongoStore keeps the collections in a MongoDB database.
type MongoStore struct {
	client   *mongo.Client
	users    *mongo.Collection
	articles *mongo.Collection
	topics   *mongo.Collection
	readings *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		client:   db.Client(),
		users:    db.Collection(usersCollection),
		articles: db.Collection(articlesCollection),
		topics:   db.Collection(topicsCollection),
		readings: db.Collection(furtherReadingCollection),
	}
}

// EnsureIndexes creates the unique username index and the text index that
// SearchArticles relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo users index: %w", err)
	}

	_, err = s.articles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "article_name", Value: "text"},
			{Key: "article_article", Value: "text"},
			{Key: "topic_name", Value: "text"},
		},
	})
	if err != nil {
		return fmt.Errorf("mongo articles text index: %w", err)
	}
	return nil
}

func translateMongoError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments), errors.Is(err, ErrNotFound):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return fmt.Errorf("mongo %s: %w", op, err)
}

func findAll[T any](ctx context.Context, col *mongo.Collection, filter interface{}, opts *options.FindOptions) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	docs := []T{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func findOne[T any](ctx context.Context, col *mongo.Collection, id string) (*T, error) {
	var doc T
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func updateByID(ctx context.Context, col *mongo.Collection, id string, set bson.M) error {
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, col *mongo.Collection, id string) error {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

var (
	oldestFirst = bson.D{{Key: "created_at", Value: 1}}
	newestFirst = bson.D{{Key: "created_at", Value: -1}}
)

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	_, err := s.users.InsertOne(ctx, user)
	return translateMongoError("create user", err)
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := findOne[models.User](ctx, s.users, id)
	return user, translateMongoError("get user", err)
}

func (s *MongoStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		return nil, translateMongoError("get user", err)
	}
	return &user, nil
}

func (s *MongoStore) SetUserRole(ctx context.Context, id string, role models.Role) error {
	return translateMongoError("set user role", updateByID(ctx, s.users, id, bson.M{"role": role}))
}

func (s *MongoStore) ListArticles(ctx context.Context) ([]models.Article, error) {
	articles, err := findAll[models.Article](ctx, s.articles, bson.M{}, options.Find().SetSort(oldestFirst))
	return articles, translateMongoError("list articles", err)
}

func (s *MongoStore) RecentArticles(ctx context.Context, limit int) ([]models.Article, error) {
	opts := options.Find().SetSort(newestFirst).SetLimit(int64(limit))
	articles, err := findAll[models.Article](ctx, s.articles, bson.M{}, opts)
	return articles, translateMongoError("recent articles", err)
}

func (s *MongoStore) ListArticlesByTopic(ctx context.Context, topicName string) ([]models.Article, error) {
	articles, err := findAll[models.Article](ctx, s.articles, bson.M{"topic_name": topicName}, options.Find().SetSort(newestFirst))
	return articles, translateMongoError("list articles by topic", err)
}

func (s *MongoStore) ListArticlesByCreator(ctx context.Context, username string) ([]models.Article, error) {
	articles, err := findAll[models.Article](ctx, s.articles, bson.M{"created_by": username}, options.Find().SetSort(newestFirst))
	return articles, translateMongoError("list articles by creator", err)
}

func (s *MongoStore) SearchArticles(ctx context.Context, query string) ([]models.Article, error) {
	filter := bson.M{"$text": bson.M{"$search": query}}
	articles, err := findAll[models.Article](ctx, s.articles, filter, options.Find())
	return articles, translateMongoError("search articles", err)
}

func (s *MongoStore) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	article, err := findOne[models.Article](ctx, s.articles, id)
	return article, translateMongoError("get article", err)
}

func (s *MongoStore) CreateArticle(ctx context.Context, article *models.Article) error {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now()
	}
	_, err := s.articles.InsertOne(ctx, article)
	return translateMongoError("create article", err)
}

func (s *MongoStore) UpdateArticle(ctx context.Context, article *models.Article) error {
	err := updateByID(ctx, s.articles, article.ID, bson.M{
		"topic_name":      article.TopicName,
		"article_name":    article.ArticleName,
		"image_url":       article.ImageURL,
		"article_article": article.ArticleArticle,
		"location_name":   article.LocationName,
		"date_added":      article.DateAdded,
	})
	return translateMongoError("update article", err)
}

func (s *MongoStore) DeleteArticle(ctx context.Context, id string) error {
	return translateMongoError("delete article", deleteByID(ctx, s.articles, id))
}

func (s *MongoStore) ListTopics(ctx context.Context) ([]models.Topic, error) {
	opts := options.Find().SetSort(bson.D{{Key: "topic_name", Value: 1}})
	topics, err := findAll[models.Topic](ctx, s.topics, bson.M{}, opts)
	return topics, translateMongoError("list topics", err)
}

func (s *MongoStore) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	topic, err := findOne[models.Topic](ctx, s.topics, id)
	return topic, translateMongoError("get topic", err)
}

func (s *MongoStore) CreateTopic(ctx context.Context, topic *models.Topic) error {
	if topic.ID == "" {
		topic.ID = uuid.NewString()
	}
	if topic.CreatedAt.IsZero() {
		topic.CreatedAt = time.Now()
	}
	if topic.ArticleList == nil {
		topic.ArticleList = []string{}
	}
	_, err := s.topics.InsertOne(ctx, topic)
	return translateMongoError("create topic", err)
}

func (s *MongoStore) UpdateTopic(ctx context.Context, topic *models.Topic) error {
	err := updateByID(ctx, s.topics, topic.ID, bson.M{"topic_name": topic.TopicName})
	return translateMongoError("update topic", err)
}

func (s *MongoStore) DeleteTopic(ctx context.Context, id string) error {
	return translateMongoError("delete topic", deleteByID(ctx, s.topics, id))
}

func (s *MongoStore) ListFurtherReading(ctx context.Context) ([]models.FurtherReading, error) {
	readings, err := findAll[models.FurtherReading](ctx, s.readings, bson.M{}, options.Find().SetSort(oldestFirst))
	return readings, translateMongoError("list further reading", err)
}

func (s *MongoStore) ListFurtherReadingByTopic(ctx context.Context, topicName string) ([]models.FurtherReading, error) {
	readings, err := findAll[models.FurtherReading](ctx, s.readings, bson.M{"topic_name": topicName}, options.Find().SetSort(newestFirst))
	return readings, translateMongoError("list further reading by topic", err)
}

func (s *MongoStore) GetFurtherReading(ctx context.Context, id string) (*models.FurtherReading, error) {
	reading, err := findOne[models.FurtherReading](ctx, s.readings, id)
	return reading, translateMongoError("get further reading", err)
}

func (s *MongoStore) CreateFurtherReading(ctx context.Context, reading *models.FurtherReading) error {
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}
	if reading.CreatedAt.IsZero() {
		reading.CreatedAt = time.Now()
	}
	_, err := s.readings.InsertOne(ctx, reading)
	return translateMongoError("create further reading", err)
}

func (s *MongoStore) UpdateFurtherReading(ctx context.Context, reading *models.FurtherReading) error {
	err := updateByID(ctx, s.readings, reading.ID, bson.M{
		"topic_name":     reading.TopicName,
		"book_title":     reading.BookTitle,
		"website":        reading.Website,
		"article_title":  reading.ArticleTitle,
		"author":         reading.Author,
		"date_published": reading.DatePublished,
		"publisher":      reading.Publisher,
	})
	return translateMongoError("update further reading", err)
}

func (s *MongoStore) DeleteFurtherReading(ctx context.Context, id string) error {
	return translateMongoError("delete further reading", deleteByID(ctx, s.readings, id))
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
