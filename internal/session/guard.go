package session

// Paths the guard redirects to.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Action is what a navigation should do.
type Action int

const (
	// Allow renders the requested content.
	Allow Action = iota
	// Wait renders a neutral placeholder and does not navigate.
	Wait
	// Redirect navigates to Decision.Location.
	Redirect
)

// Decision is the outcome of a guard evaluation.
type Decision struct {
	Action   Action
	Location string
}

// Evaluate decides whether a protected target is reachable. The originally
// requested path is not remembered on redirect.
func Evaluate(s Session) Decision {
	switch s.State() {
	case Hydrating:
		return Decision{Action: Wait}
	case Authenticated:
		return Decision{Action: Allow}
	default:
		return Decision{Action: Redirect, Location: LoginPath}
	}
}

// EvaluateAdmin is the check an admin-only view runs for itself on top of
// Evaluate. It is a UI convenience; the API re-checks the role on every
// privileged request.
func EvaluateAdmin(s Session) Decision {
	d := Evaluate(s)
	if d.Action != Allow {
		return d
	}
	if !s.IsAdmin() {
		return Decision{Action: Redirect, Location: DashboardPath}
	}
	return d
}
