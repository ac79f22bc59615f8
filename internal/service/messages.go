package service

// Client-facing messages.
const (
	MsgCredentialsRequired      = "Email and password are required."
	MsgInvalidEmail             = "Invalid email format."
	MsgEmailInUse               = "Email already in use."
	MsgInvalidCredentials       = "Invalid credentials."
	MsgSearchQueryRequired      = "Search query is required."
	MsgActionAndRecipientNeeded = "Action and recipient ID are required."
	MsgRecipientNotExist        = "Recipient does not exist."
	MsgSelfRequest              = "You cannot send a friend request to yourself."
	MsgRequestAlreadySent       = "Friend request already sent."
	MsgRequestNotFound          = "Friend request not found."
	MsgRequestSent              = "Friend request sent."
	MsgRequestAccepted          = "Friend request accepted."
	MsgRequestRejected          = "Friend request rejected."
	MsgRateLimitExceeded        = "Request limit exceeded"
	MsgInvalidAction            = "Invalid action."
)
