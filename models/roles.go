package models

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Capability names a single thing a role is allowed to do.
type Capability string

const (
	CapModerateArticles Capability = "articles:moderate"
	CapManageTopics     Capability = "topics:manage"
	CapManageReading    Capability = "further_reading:manage"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {CapModerateArticles, CapManageTopics, CapManageReading},
	RoleUser:  {},
}

// Can reports whether the user's role grants c. A nil user can do nothing.
func (u *User) Can(c Capability) bool {
	if u == nil {
		return false
	}
	for _, granted := range roleCapabilities[u.Role] {
		if granted == c {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CanModify reports whether u may edit or delete the article: its creator
// always can, anyone else needs CapModerateArticles.
func (u *User) CanModify(a *Article) bool {
	if u == nil || a == nil {
		return false
	}
	return u.Username == a.CreatedBy || u.Can(CapModerateArticles)
}
