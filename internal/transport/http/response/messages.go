package response

const (
	MsgUnauthorizedAdmin = "Please authenticate as admin"
	MsgUnauthorized      = "Please authenticate"
	MsgBadRequest        = "Invalid request body"
	MsgInternal          = "Something went wrong!"

	MsgServiceNotFound = "Service not found"
	MsgServiceCreated  = "Service created successfully"
	MsgServiceUpdated  = "Service updated successfully"
	MsgServiceDeleted  = "Service deleted successfully"
	MsgCreateFailed    = "Error creating service"
	MsgFetchFailed     = "Error fetching services"
	MsgFetchOneFailed  = "Error fetching service"
	MsgUpdateFailed    = "Error updating service"
	MsgDeleteFailed    = "Error deleting service"

	MsgRegistered         = "User registered successfully"
	MsgLoggedIn           = "Login successful"
	MsgEmailTaken         = "Email already registered"
	MsgInvalidCredentials = "Invalid credentials"
	MsgAuthFailed         = "Error authenticating user"
)
