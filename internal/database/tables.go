// Package database provides typed repositories over the generic record
// store, one per collection.
package database

// Collection names in the record store.
const (
	TableUsers           = "users"
	TableProgress        = "progress"
	TableFlashcards      = "flashcards"
	TableGroups          = "groups"
	TableGroupChallenges = "group_challenges"
	TableNotifications   = "notifications"
)
