package constants

const (
	// RegistrationStreamName is the JetStream stream holding registration events.
	RegistrationStreamName = "DQ_REGISTRATION"
	// RegistrationSubjectPrefix is the default subject prefix for registration events.
	// Events are published on "<prefix>.<event type>".
	RegistrationSubjectPrefix = "dq.registration"
)
