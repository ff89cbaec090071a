package strava

// Webhook object types and aspect types we care about.
const (
	ObjectTypeActivity = "activity"

	AspectCreate = "create"
	AspectUpdate = "update"
	AspectDelete = "delete"
)

// WebhookEvent is the inbound push notification body. Strava sends more
// fields; anything beyond what filtering needs is ignored.
type WebhookEvent struct {
	ObjectType string            `json:"object_type"`
	ObjectID   int64             `json:"object_id"`
	AspectType string            `json:"aspect_type"`
	OwnerID    int64             `json:"owner_id,omitempty"`
	EventTime  int64             `json:"event_time,omitempty"`
	Updates    map[string]string `json:"updates,omitempty"`
}

// Activity is the subset of the Strava activity resource we read.
type Activity struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Type        string  `json:"type,omitempty"`
	Distance    float64 `json:"distance"`    // meters
	MovingTime  int     `json:"moving_time"` // seconds
	ElapsedTime int     `json:"elapsed_time,omitempty"`
}

// ActivityUpdate is the PUT body for rewriting an activity.
type ActivityUpdate struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	HideFromHome *bool  `json:"hide_from_home,omitempty"`
}
