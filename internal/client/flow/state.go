package flow

// State is the presentation state of the credential modals.
type State int

const (
	Anonymous State = iota
	ShowingLogin
	ShowingRegister
	Authenticated
	ShowingAPIKeys
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case ShowingLogin:
		return "login"
	case ShowingRegister:
		return "register"
	case Authenticated:
		return "authenticated"
	case ShowingAPIKeys:
		return "api-keys"
	default:
		return "unknown"
	}
}

// IsModal reports whether a modal is open in s.
func (s State) IsModal() bool {
	return s == ShowingLogin || s == ShowingRegister || s == ShowingAPIKeys
}
