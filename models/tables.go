package models

import "time"

type User struct {
	ID           string    `gorm:"primaryKey" bson:"_id" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" bson:"username" json:"username"` // always lower-cased
	PasswordHash string    `gorm:"not null" bson:"password" json:"-"`                    // json:"-" keeps the hash out of any encoded output
	Email        string    `gorm:"not null" bson:"email" json:"email"`
	Role         Role      `gorm:"not null;default:user" bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// Article.TopicName is a copy of Topic.TopicName taken when the article is
// saved; nothing keeps the two in step.
type Article struct {
	ID             string    `gorm:"primaryKey" bson:"_id" json:"id"`
	TopicName      string    `gorm:"index" bson:"topic_name" json:"topic_name"`
	ArticleName    string    `gorm:"not null" bson:"article_name" json:"article_name"`
	ImageURL       string    `bson:"image_url" json:"image_url"`
	ArticleArticle string    `gorm:"type:text" bson:"article_article" json:"article_article"` // markdown body
	LocationName   string    `bson:"location_name" json:"location_name"`
	CreatedBy      string    `gorm:"index;not null" bson:"created_by" json:"created_by"` // username
	DateAdded      string    `bson:"date_added" json:"date_added"`
	CreatedAt      time.Time `gorm:"index" bson:"created_at" json:"created_at"`
}

type Topic struct {
	ID          string    `gorm:"primaryKey" bson:"_id" json:"id"`
	TopicName   string    `gorm:"not null;index" bson:"topic_name" json:"topic_name"`
	ArticleList []string  `gorm:"-" bson:"article_list" json:"article_list"` // never populated
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

type FurtherReading struct {
	ID            string    `gorm:"primaryKey" bson:"_id" json:"id"`
	TopicName     string    `gorm:"index" bson:"topic_name" json:"topic_name"`
	BookTitle     string    `bson:"book_title" json:"book_title"`
	Website       string    `bson:"website" json:"website"`
	ArticleTitle  string    `bson:"article_title" json:"article_title"`
	Author        string    `bson:"author" json:"author"`
	DatePublished string    `bson:"date_published" json:"date_published"`
	Publisher     string    `bson:"publisher" json:"publisher"`
	CreatedAt     time.Time `gorm:"index" bson:"created_at" json:"created_at"`
}

func (FurtherReading) TableName() string {
	return "further_reading"
}
