package services

import (
	"encoding/json"
	"log"
)

// Routing keys of the domain events published by the services.
const (
	EventArticleCreated     = "article.created"
	EventArticleUpdated     = "article.updated"
	EventArticleDeleted     = "article.deleted"
	EventArticleFavorited   = "article.favorited"
	EventArticleUnfavorited = "article.unfavorited"
	EventProfileFollowed    = "profile.followed"
	EventProfileUnfollowed  = "profile.unfollowed"
	EventCommentCreated     = "comment.created"
)

// EventPublisher sends a JSON event under a routing key. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ArticleEvent is the payload of article.* events.
type ArticleEvent struct {
	ArticleID      string `json:"articleId"`
	Slug           string `json:"slug"`
	UserID         string `json:"userId"`
	FavoritesCount int    `json:"favoritesCount"`
}

// FollowEvent is the payload of profile.* events.
type FollowEvent struct {
	FollowerID  string `json:"followerId"`
	FollowingID string `json:"followingId"`
}

// CommentEvent is the payload of comment.* events.
type CommentEvent struct {
	CommentID string `json:"commentId"`
	ArticleID string `json:"articleId"`
	AuthorID  string `json:"authorId"`
}

// publishEvent is best effort: the write it reports on has already been committed.
func publishEvent(p EventPublisher, routingKey string, payload interface{}) {
	if p == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshalling %s event: %v", routingKey, err)
		return
	}
	if err := p.Publish(routingKey, body); err != nil {
		log.Printf("Error publishing %s event: %v", routingKey, err)
	}
}
