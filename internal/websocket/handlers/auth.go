package handlers

// AuthContext carries authenticated socket identity information into handler
// functions. It intentionally excludes transport-specific types.
type AuthContext struct {
	userID   string
	userName string
	socketID string
}

// NewAuthContext constructs an AuthContext for a single socket event.
func NewAuthContext(userID, userName, socketID string) AuthContext {
	return AuthContext{
		userID:   userID,
		userName: userName,
		socketID: socketID,
	}
}

// UserID returns the authenticated user id.
func (a AuthContext) UserID() string {
	return a.userID
}

// UserName returns the display name carried by the socket.
func (a AuthContext) UserName() string {
	return a.userName
}

// SocketID returns the caller socket id.
func (a AuthContext) SocketID() string {
	return a.socketID
}
