package handler

// Mutation response statuses shared by all entity handlers.
const (
	statusCreated = "created"
	statusChanged = "changed"
	statusDeleted = "deleted"
)
