package services

// Session is the per-client state an identity is bound to.
type Session interface {
	// Bind attaches userID to the session, replacing any previous binding.
	Bind(userID uint) error
	// Unbind clears the binding. Unbinding an anonymous session is a no-op.
	Unbind() error
	// UserID returns the bound user, if any.
	UserID() (uint, bool)
}
