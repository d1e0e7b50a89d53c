package common

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var wordPattern = regexp.MustCompile(`^\w+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("word", func(fl validator.FieldLevel) bool {
			return wordPattern.MatchString(fl.Field().String())
		})
	}
}

// fieldLabels maps form struct fields to the names shown to visitors.
var fieldLabels = map[string]string{
	"Username":       "Username",
	"Email":          "Email address",
	"Password":       "Password",
	"Confirm":        "Repeat password",
	"TopicName":      "Topic",
	"ArticleName":    "Title",
	"ImageURL":       "Image URL",
	"ArticleArticle": "Article",
	"Website":        "Website",
	"Name":           "Name",
	"Message":        "Message",
}

// ValidationMessages turns a binding error into one readable message per
// failed field.
func ValidationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Please check the form and try again"}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		label, ok := fieldLabels[fe.Field()]
		if !ok {
			label = fe.Field()
		}
		msgs = append(msgs, fieldMessage(label, fe))
	}
	return msgs
}

func fieldMessage(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", label, fe.Param())
	case "word":
		return label + " must contain only letters numbers or underscore"
	case "eqfield":
		return "Passwords must match"
	case "email":
		return label + " must be a valid email address"
	case "url":
		return label + " must be a valid URL"
	}
	return strings.TrimSpace(label + " is invalid")
}
