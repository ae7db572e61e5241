package session

// Action is a session transition. Only LoginAction and LogoutAction exist.
type Action interface {
	isAction()
}

// LoginAction replaces the current session with Session.
type LoginAction struct {
	Session Session
}

// LogoutAction clears the current session.
type LogoutAction struct{}

func (LoginAction) isAction()  {}
func (LogoutAction) isAction() {}

// Reduce returns the session that follows state after action. A login payload
// missing its token or user leaves state untouched.
func Reduce(state Session, action Action) Session {
	switch a := action.(type) {
	case LoginAction:
		if !a.Session.Complete() {
			return state
		}
		return a.Session.Copy()
	case LogoutAction:
		return Session{}
	default:
		return state
	}
}
