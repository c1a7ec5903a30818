package cnst

const (
	// AppName is the name of the application
	AppName = "catalog"
	// CommandName is the name of the api server binary
	CommandName = "apiserver"
)
