package chat

// Role classifies a platform user within the mentorship program.
type Role string

const (
	RoleMentee Role = "mentee"
	RoleMentor Role = "mentor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMentee, RoleMentor, RoleAdmin:
		return true
	}
	return false
}

// Counterpart returns the role a user of role r opens conversations with:
// mentees talk to mentors, mentors and admins talk to mentees.
func (r Role) Counterpart() Role {
	if r == RoleMentee {
		return RoleMentor
	}
	return RoleMentee
}

// User is the identity record supplied by the platform. It is consumed
// read-only here; account management lives elsewhere.
type User struct {
	ID          string `json:"id" db:"id"`
	DisplayName string `json:"displayName" db:"display_name"`
	Role        Role   `json:"role" db:"role"`
}
