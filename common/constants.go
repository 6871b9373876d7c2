package common

const (
	// AppName is the name of the application
	AppName = "dqaas-registration-service"

	// DefaultTableName is the DynamoDB table registrations are stored in
	DefaultTableName = "DqRegistration"

	// UnsetCount marks a count that was not supplied
	UnsetCount int64 = -1
)
