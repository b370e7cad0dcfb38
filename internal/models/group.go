package models

// Group represents a reusable list of people who frequently split bills
// together (e.g. "Roommates", "Friday Lunch"). Saving one skips re-typing
// names for every receipt.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group.
	Name string

	// Members is the list of people in this group.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
