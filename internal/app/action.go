package app

// ActionKind enumerates every user action a presenter can receive. A tagged
// union instead of free-form action strings: adding a kind makes the
// compiler point at every switch that must handle it.
type ActionKind int

const (
	ActionNone ActionKind = iota
	// ActionSubmitScan uploads the image at Path.
	ActionSubmitScan
	// ActionOpenScan opens the scan with ID.
	ActionOpenScan
	// ActionStartChat starts a chat session from the scan with ID.
	ActionStartChat
	// ActionSendMessage sends Text to the active chat session.
	ActionSendMessage
	// ActionOpenSession switches the chat to the session with ID.
	ActionOpenSession
	// ActionSignIn authenticates with Email/Secret.
	ActionSignIn
	// ActionSignInGoogle starts the Google SSO flow.
	ActionSignInGoogle
	// ActionRegister creates an account from Email/Secret/Text (display
	// name). Confirm must repeat Secret.
	ActionRegister
	// ActionSignOut ends the session.
	ActionSignOut
	// ActionUpdateProfile saves Text (username) and Date (birthdate).
	ActionUpdateProfile
	// ActionUploadPhoto replaces the profile photo with the image at Path.
	ActionUploadPhoto
	// ActionResetPassword requests a password-reset email for Email.
	ActionResetPassword
	// ActionChangePassword rotates the password to Secret.
	ActionChangePassword
	// ActionLinkPassword links a password credential using Secret.
	ActionLinkPassword
	// ActionDeleteAccount permanently removes the account.
	ActionDeleteAccount
	// ActionRefresh reloads the current view's data.
	ActionRefresh
)

// Action is one user intent, dispatched from a view to its presenter.
// Fields are interpreted per Kind.
type Action struct {
	Kind    ActionKind
	ID      string
	Path    string
	Text    string
	Email   string
	Secret  string
	Confirm string
	Date    string
}

// String names the action kind for logging.
func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionSubmitScan:
		return "submit-scan"
	case ActionOpenScan:
		return "open-scan"
	case ActionStartChat:
		return "start-chat"
	case ActionSendMessage:
		return "send-message"
	case ActionOpenSession:
		return "open-session"
	case ActionSignIn:
		return "sign-in"
	case ActionSignInGoogle:
		return "sign-in-google"
	case ActionRegister:
		return "register"
	case ActionSignOut:
		return "sign-out"
	case ActionUpdateProfile:
		return "update-profile"
	case ActionUploadPhoto:
		return "upload-photo"
	case ActionResetPassword:
		return "reset-password"
	case ActionChangePassword:
		return "change-password"
	case ActionLinkPassword:
		return "link-password"
	case ActionDeleteAccount:
		return "delete-account"
	case ActionRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}
