package core

type (
	// Logger is the app-wide logger.
	// args may carry errors, extra maps and the Person the log entry is about.
	Logger interface {
		Debug(msg string, args ...interface{})
		Info(msg string, args ...interface{})
		Warn(msg string, args ...interface{})
		Error(msg string, args ...interface{})
		Fatal(msg string, args ...interface{})
	}

	// Person identifies the signed-in staff member in log entries.
	Person struct {
		ID    string
		Name  string
		Email string
	}
)
