package models

// Identity is a resolved user identity from the remote directory.
type Identity struct {
	// ID is the user's unique identifier.
	ID string `json:"id"`

	// Name is the user's display name.
	Name string `json:"name"`
}
