package strava

import "strconv"

// Webhook event constants as delivered by the provider.
const (
	WebhookObjectTypeActivity = "activity"
	WebhookAspectTypeCreate   = "create"
	WebhookAspectTypeUpdate   = "update"
	WebhookAspectTypeDelete   = "delete"
)

// WebhookEvent is a provider push notification. It names what changed,
// not the change itself; the activity must be fetched separately.
type WebhookEvent struct {
	ObjectType     string `json:"object_type"`
	AspectType     string `json:"aspect_type"`
	ObjectID       int64  `json:"object_id"`
	OwnerID        int64  `json:"owner_id"`
	SubscriptionID int64  `json:"subscription_id"`
	EventTime      int64  `json:"event_time"`
}

// ActivityID returns the external activity identifier as stored locally.
func (e WebhookEvent) ActivityID() string {
	return strconv.FormatInt(e.ObjectID, 10)
}

// AthleteID returns the external account identifier used to resolve the
// owning user.
func (e WebhookEvent) AthleteID() string {
	return strconv.FormatInt(e.OwnerID, 10)
}

// IsActivityCreate reports whether the event should trigger an import.
// Update and delete aspects are out of scope for this version.
func (e WebhookEvent) IsActivityCreate() bool {
	return e.ObjectType == WebhookObjectTypeActivity && e.AspectType == WebhookAspectTypeCreate
}
