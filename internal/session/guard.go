package session

import "strings"

const (
	LoginPath = "/auth/login"
	HomePath  = "/"
)

// Action is what a route shell does with a request
type Action string

const (
	Render   Action = "render"
	Wait     Action = "wait"
	Redirect Action = "redirect"
)

// Decision is the guard outcome; To is set for redirects
type Decision struct {
	Action Action `json:"action"`
	To     string `json:"to,omitempty"`
}

// Guard decides what to do with a request for path: wait until the
// session check has finished, send anonymous visitors to the login page
// and send signed-in operators away from it.
func Guard(s State, path string) Decision {
	if !s.IsInitialized {
		return Decision{Action: Wait}
	}

	onLogin := IsPublic(path)
	switch {
	case !s.IsAuthenticated && !onLogin:
		return Decision{Action: Redirect, To: LoginPath}
	case s.IsAuthenticated && onLogin:
		return Decision{Action: Redirect, To: HomePath}
	}
	return Decision{Action: Render}
}

// IsPublic reports whether path is reachable without a session
func IsPublic(path string) bool {
	return strings.TrimRight(path, "/") == LoginPath
}
