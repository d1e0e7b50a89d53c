// Package store is the document store behind the site. It holds the four
// collections (users, articles, topics, further_reading) and has two
// backends: SQLite through GORM and MongoDB.
package store

import (
	"context"
	"errors"

	"articlehub/models"
)

var (
	ErrNotFound  = errors.New("store: document not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	SetUserRole(ctx context.Context, id string, role models.Role) error

	// ListArticles returns every article, oldest first.
	ListArticles(ctx context.Context) ([]models.Article, error)
	// RecentArticles returns at most limit articles, newest first.
	RecentArticles(ctx context.Context, limit int) ([]models.Article, error)
	ListArticlesByTopic(ctx context.Context, topicName string) ([]models.Article, error)
	ListArticlesByCreator(ctx context.Context, username string) ([]models.Article, error)
	SearchArticles(ctx context.Context, query string) ([]models.Article, error)
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	CreateArticle(ctx context.Context, article *models.Article) error
	UpdateArticle(ctx context.Context, article *models.Article) error
	DeleteArticle(ctx context.Context, id string) error

	// ListTopics returns topics sorted by name.
	ListTopics(ctx context.Context) ([]models.Topic, error)
	GetTopic(ctx context.Context, id string) (*models.Topic, error)
	CreateTopic(ctx context.Context, topic *models.Topic) error
	UpdateTopic(ctx context.Context, topic *models.Topic) error
	DeleteTopic(ctx context.Context, id string) error

	ListFurtherReading(ctx context.Context) ([]models.FurtherReading, error)
	ListFurtherReadingByTopic(ctx context.Context, topicName string) ([]models.FurtherReading, error)
	GetFurtherReading(ctx context.Context, id string) (*models.FurtherReading, error)
	CreateFurtherReading(ctx context.Context, reading *models.FurtherReading) error
	UpdateFurtherReading(ctx context.Context, reading *models.FurtherReading) error
	DeleteFurtherReading(ctx context.Context, id string) error

	Close(ctx context.Context) error
}
