// Package policy decides who may modify what. Ownership is nominal: the
// username on an entity is the sole authorization anchor, and a single
// configured admin identity overrides it.
package policy

// Policy holds the admin identity, set once at startup.
type Policy struct {
	admin string
}

func New(admin string) *Policy {
	return &Policy{admin: admin}
}

// IsAdmin reports whether actor is the configured admin identity. An
// empty actor is never admin, even when no admin is configured.
func (p *Policy) IsAdmin(actor string) bool {
	return actor != "" && actor == p.admin
}

// CanModify reports whether actor may edit or delete a resource owned by
// owner: the owner themselves, or the admin.
func (p *Policy) CanModify(actor, owner string) bool {
	if actor == "" {
		return false
	}
	return actor == owner || p.IsAdmin(actor)
}
