package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"articlehub/models"
)

// GormStore keeps the collections as SQLite tables.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func translateGormError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	return translateGormError("create user", s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateGormError("get user", err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateGormError("get user", err)
	}
	return &user, nil
}

func (s *GormStore) SetUserRole(ctx context.Context, id string, role models.Role) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return translateGormError("set user role", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) findArticles(ctx context.Context, order string, query string, args ...interface{}) ([]models.Article, error) {
	var articles []models.Article
	tx := s.db.WithContext(ctx).Order(order)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Find(&articles).Error; err != nil {
		return nil, translateGormError("list articles", err)
	}
	return articles, nil
}

func (s *GormStore) ListArticles(ctx context.Context) ([]models.Article, error) {
	return s.findArticles(ctx, "created_at ASC", "")
}

func (s *GormStore) RecentArticles(ctx context.Context, limit int) ([]models.Article, error) {
	var articles []models.Article
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&articles).Error; err != nil {
		return nil, translateGormError("recent articles", err)
	}
	return articles, nil
}

func (s *GormStore) ListArticlesByTopic(ctx context.Context, topicName string) ([]models.Article, error) {
	return s.findArticles(ctx, "created_at DESC", "topic_name = ?", topicName)
}

func (s *GormStore) ListArticlesByCreator(ctx context.Context, username string) ([]models.Article, error) {
	return s.findArticles(ctx, "created_at DESC", "created_by = ?", username)
}

// SearchArticles has no text index to lean on in SQLite, so it matches the
// same three fields the MongoDB text index covers.
func (s *GormStore) SearchArticles(ctx context.Context, query string) ([]models.Article, error) {
	like := "%" + likeEscaper.Replace(query) + "%"
	return s.findArticles(ctx, "created_at DESC",
		`article_name LIKE ? ESCAPE '\' OR article_article LIKE ? ESCAPE '\' OR topic_name LIKE ? ESCAPE '\'`,
		like, like, like)
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s *GormStore) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&article).Error; err != nil {
		return nil, translateGormError("get article", err)
	}
	return &article, nil
}

func (s *GormStore) CreateArticle(ctx context.Context, article *models.Article) error {
	if article.ID == "" {
		article.ID = uuid.NewString()
	}
	if article.CreatedAt.IsZero() {
		article.CreatedAt = time.Now()
	}
	return translateGormError("create article", s.db.WithContext(ctx).Create(article).Error)
}

func (s *GormStore) UpdateArticle(ctx context.Context, article *models.Article) error {
	res := s.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", article.ID).Updates(map[string]interface{}{
		"topic_name":      article.TopicName,
		"article_name":    article.ArticleName,
		"image_url":       article.ImageURL,
		"article_article": article.ArticleArticle,
		"location_name":   article.LocationName,
		"date_added":      article.DateAdded,
	})
	if res.Error != nil {
		return translateGormError("update article", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteArticle(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Article{})
	if res.Error != nil {
		return translateGormError("delete article", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListTopics(ctx context.Context) ([]models.Topic, error) {
	var topics []models.Topic
	if err := s.db.WithContext(ctx).Order("topic_name ASC").Find(&topics).Error; err != nil {
		return nil, translateGormError("list topics", err)
	}
	return topics, nil
}

func (s *GormStore) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	var topic models.Topic
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&topic).Error; err != nil {
		return nil, translateGormError("get topic", err)
	}
	return &topic, nil
}

func (s *GormStore) CreateTopic(ctx context.Context, topic *models.Topic) error {
	if topic.ID == "" {
		topic.ID = uuid.NewString()
	}
	if topic.CreatedAt.IsZero() {
		topic.CreatedAt = time.Now()
	}
	return translateGormError("create topic", s.db.WithContext(ctx).Create(topic).Error)
}

func (s *GormStore) UpdateTopic(ctx context.Context, topic *models.Topic) error {
	res := s.db.WithContext(ctx).Model(&models.Topic{}).Where("id = ?", topic.ID).Update("topic_name", topic.TopicName)
	if res.Error != nil {
		return translateGormError("update topic", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteTopic(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Topic{})
	if res.Error != nil {
		return translateGormError("delete topic", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListFurtherReading(ctx context.Context) ([]models.FurtherReading, error) {
	var readings []models.FurtherReading
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&readings).Error; err != nil {
		return nil, translateGormError("list further reading", err)
	}
	return readings, nil
}

func (s *GormStore) ListFurtherReadingByTopic(ctx context.Context, topicName string) ([]models.FurtherReading, error) {
	var readings []models.FurtherReading
	if err := s.db.WithContext(ctx).Where("topic_name = ?", topicName).Order("created_at DESC").Find(&readings).Error; err != nil {
		return nil, translateGormError("list further reading", err)
	}
	return readings, nil
}

func (s *GormStore) GetFurtherReading(ctx context.Context, id string) (*models.FurtherReading, error) {
	var reading models.FurtherReading
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&reading).Error; err != nil {
		return nil, translateGormError("get further reading", err)
	}
	return &reading, nil
}

func (s *GormStore) CreateFurtherReading(ctx context.Context, reading *models.FurtherReading) error {
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}
	if reading.CreatedAt.IsZero() {
		reading.CreatedAt = time.Now()
	}
	return translateGormError("create further reading", s.db.WithContext(ctx).Create(reading).Error)
}

func (s *GormStore) UpdateFurtherReading(ctx context.Context, reading *models.FurtherReading) error {
	res := s.db.WithContext(ctx).Model(&models.FurtherReading{}).Where("id = ?", reading.ID).Updates(map[string]interface{}{
		"topic_name":     reading.TopicName,
		"book_title":     reading.BookTitle,
		"website":        reading.Website,
		"article_title":  reading.ArticleTitle,
		"author":         reading.Author,
		"date_published": reading.DatePublished,
		"publisher":      reading.Publisher,
	})
	if res.Error != nil {
		return translateGormError("update further reading", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteFurtherReading(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FurtherReading{})
	if res.Error != nil {
		return translateGormError("delete further reading", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
