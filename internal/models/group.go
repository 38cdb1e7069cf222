package models

// GroupType categorizes a group for presentation ("trip", "home", "other").
// The ledger treats it as an opaque label; the client passes it through.
type GroupType string

const (
	GroupTypeTrip  GroupType = "trip"
	GroupTypeHome  GroupType = "home"
	GroupTypeOther GroupType = "other"
)

// Group represents a circle of users who split expenses together.
// Groups are owned by the remote ledger; the client holds a read-through
// cache and must tolerate a group vanishing between a list refresh and a
// detail fetch.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Lisbon Trip").
	Name string `json:"name"`

	// Members is the ordered list of member user IDs.
	Members []string `json:"members"`

	// Type categorizes the group (trip/home/other).
	Type GroupType `json:"group_type"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`
}
