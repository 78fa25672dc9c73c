package models

// NotificationType names the event behind a notification
type NotificationType string

// Notification types
const (
	NotifyTypeFollow  NotificationType = "follow"
	NotifyTypeLike    NotificationType = "like"
	NotifyTypeComment NotificationType = "comment"
	NotifyTypeReview  NotificationType = "review"
	NotifyTypeQuote   NotificationType = "quote"
	NotifyTypeSystem  NotificationType = "system"
)

// Notification represents a notification addressed to the current user
type Notification struct {
	ID        ID               `json:"id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Actor     string           `json:"actorUsername,omitempty"`
	PostID    ID               `json:"postId,omitempty"`
	CreatedAt string           `json:"createdAt,omitempty"`
	IsRead    bool             `json:"isRead"`
}
