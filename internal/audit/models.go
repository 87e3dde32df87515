package audit

import (
	"time"

	"github.com/google/uuid"
)

// Event types recorded on the login trail.
const (
	TypeRegister    = "register"
	TypeLogin       = "login"
	TypeOAuthLogin  = "oauth_login"
	TypeRefresh     = "refresh"
	TypeLogout      = "logout"
	TypeLoginFailed = "login_failed"
)

// Event is emitted from domain logic to capture account activity. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Type      string
	UserID    uuid.UUID
	Email     string
	Device    string
	RequestID string
}
