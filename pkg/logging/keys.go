package logging

const (
	// KeyError is the logging key for errors.
	KeyError = "err"

	// KeyDal is the logging key for the data access layer name.
	KeyDal = "dal"

	// KeyGuild is the logging key for the guild ID.
	KeyGuild = "guild"

	// KeyUser is the logging key for the user ID.
	KeyUser = "user"

	// KeyChannel is the logging key for the channel ID.
	KeyChannel = "channel"

	// KeyCommand is the logging key for the command or component that was invoked.
	KeyCommand = "command"

	// KeyAppName is the logging key for the application name.
	KeyAppName = "app"
)
