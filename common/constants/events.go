package constants

// EventType defines the kind of change a registration event describes.
type EventType string

const (
	// RegistrationCreated is emitted after a registration is created.
	RegistrationCreated EventType = "created"
	// RegistrationReplaced is emitted after a registration is fully replaced.
	RegistrationReplaced EventType = "replaced"
	// RegistrationPatched is emitted after a registration is partially updated.
	RegistrationPatched EventType = "patched"
	// RegistrationDeleted is emitted after a registration is deleted.
	RegistrationDeleted EventType = "deleted"
)
