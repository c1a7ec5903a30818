package i18n

// Error message ids, rendered by the API error handler
const (
	ErrorInvalidInput           = "ErrorInvalidInput"
	ErrorMissingField           = "ErrorMissingField"
	ErrorInvalidFormat          = "ErrorInvalidFormat"
	ErrorInvalidStatus          = "ErrorInvalidStatus"
	ErrorAuthenticationRequired = "ErrorAuthenticationRequired"
	ErrorInvalidCredentials     = "ErrorInvalidCredentials"
	ErrorInvalidToken           = "ErrorInvalidToken"
	ErrorUserDisabled           = "ErrorUserDisabled"
	ErrorForbidden              = "ErrorForbidden"
	ErrorResourceNotFound       = "ErrorResourceNotFound"
	ErrorEndpointNotFound       = "ErrorEndpointNotFound"
	ErrorResourceExists         = "ErrorResourceExists"
	ErrorConcurrentModification = "ErrorConcurrentModification"
	ErrorAlreadyApproved        = "ErrorAlreadyApproved"
	ErrorInternalServer         = "ErrorInternalServer"
)

// Product related success messages
const (
	SuccessProductCreated  = "SuccessProductCreated"
	SuccessProductUpdated  = "SuccessProductUpdated"
	SuccessProductDeleted  = "SuccessProductDeleted"
	SuccessProductInfo     = "SuccessProductInfo"
	SuccessProductList     = "SuccessProductList"
	SuccessProductApproved = "SuccessProductApproved"
)

// User and business related success messages
const (
	SuccessRegistered      = "SuccessRegistered"
	SuccessLogin           = "SuccessLogin"
	SuccessLogout          = "SuccessLogout"
	SuccessTokenRefreshed  = "SuccessTokenRefreshed"
	SuccessUserInfo        = "SuccessUserInfo"
	SuccessUserList        = "SuccessUserList"
	SuccessUserCreated     = "SuccessUserCreated"
	SuccessUserUpdated     = "SuccessUserUpdated"
	SuccessUserDeleted     = "SuccessUserDeleted"
	SuccessBusinessUpdated = "SuccessBusinessUpdated"
	SuccessRoleList        = "SuccessRoleList"
)

// Chat related success messages
const (
	SuccessChatRecorded = "SuccessChatRecorded"
	SuccessChatHistory  = "SuccessChatHistory"
)
