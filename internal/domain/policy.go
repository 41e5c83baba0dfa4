package domain

// Action names a capability checked by Authorize
type Action string

const (
	ActionListAllReports Action = "reports:list-all" // Read every client's reports
	ActionListOwnReports Action = "reports:list-own" // Read the caller's reports
	ActionListClients    Action = "clients:list"     // Read the client directory
	ActionUploadReport   Action = "reports:upload"   // Upload a report for any client
	ActionDownload       Action = "reports:download" // Download one report
)

// Resource is the optional target of an action
type Resource struct {
	OwnerID uint // Client that owns the resource
}

// Authorize is the single capability check used by services and routes.
// It returns ErrUnauthorized when there is no usable identity and
// ErrForbidden when the identity lacks the capability.
func Authorize(user *SessionUser, action Action, res *Resource) error {
	if user == nil {
		return ErrUnauthorized
	}
	switch user.Role {
	case RoleAdmin:
		return nil // Admins hold every capability
	case RoleClient:
		switch action {
		case ActionListOwnReports:
			return nil
		case ActionDownload:
			if res != nil && res.OwnerID == user.ID {
				return nil
			}
			return ErrForbidden
		default:
			return ErrForbidden
		}
	default:
		return ErrUnauthorized // Unknown roles get nothing
	}
}
