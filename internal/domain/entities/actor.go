package entities

// Role is the coarse permission group an already-authenticated caller belongs to.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleClient        Role = "client"
	RoleSubcontractor Role = "subcontractor"
	RoleSystem        Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClient, RoleSubcontractor, RoleSystem:
		return true
	}
	return false
}

// Actor identifies who performs a mutating operation.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// SystemActor is used for automated transitions (scheduler, payment callbacks).
func SystemActor() Actor {
	return Actor{ID: "system", Name: "system", Role: RoleSystem}
}

func (a Actor) Is(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
