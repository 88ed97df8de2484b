package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// --- Roles ---

// Canonical role names issued by the backend.
const (
	RoleEmisor   = "ROLE_EMISOR"
	RoleInversor = "ROLE_INVERSOR"
	RoleAdmin    = "ROLE_ADMIN"
)

// RoleRef is a role as it arrives on the wire: either a bare string
// ("ROLE_INVERSOR") or an object ({"id": 2, "name": "ROLE_INVERSOR"}).
// It only exists at the decoding boundary; everything past ingestion works
// with a RoleSet.
type RoleRef struct {
	ID   int64
	Name string
}

// UnmarshalJSON accepts both role encodings.
func (r *RoleRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = RoleRef{}
		return nil
	}
	if data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*r = RoleRef{Name: name}
		return nil
	}
	var obj struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("role: expected string or {id,name} object: %w", err)
	}
	*r = RoleRef{ID: obj.ID, Name: obj.Name}
	return nil
}

// Canonical returns the normalized role name.
func (r RoleRef) Canonical() string {
	return CanonicalRole(r.Name)
}

// CanonicalRole normalizes a role name. Only surrounding whitespace is
// stripped; comparison stays exact.
func CanonicalRole(name string) string {
	return strings.TrimSpace(name)
}

// RoleSet is an ordered, duplicate-free set of canonical role names.
type RoleSet []string

// NewRoleSet canonicalizes refs into a RoleSet, dropping empty names and
// duplicates while keeping first-seen order.
func NewRoleSet(refs ...RoleRef) RoleSet {
	set := make(RoleSet, 0, len(refs))
	for _, ref := range refs {
		set = set.add(ref.Canonical())
	}
	return set
}

// RoleSetOf builds a RoleSet from bare names.
func RoleSetOf(names ...string) RoleSet {
	set := make(RoleSet, 0, len(names))
	for _, n := range names {
		set = set.add(CanonicalRole(n))
	}
	return set
}

func (s RoleSet) add(name string) RoleSet {
	if name == "" || s.Has(name) {
		return s
	}
	return append(s, name)
}

// Has reports whether the canonical form of name is in the set.
func (s RoleSet) Has(name string) bool {
	name = CanonicalRole(name)
	if name == "" {
		return false
	}
	for _, r := range s {
		if r == name {
			return true
		}
	}
	return false
}

// UnmarshalJSON decodes a mixed array of role strings and role objects.
func (s *RoleSet) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = RoleSet{}
		return nil
	}
	var refs []RoleRef
	if err := json.Unmarshal(data, &refs); err != nil {
		return err
	}
	*s = NewRoleSet(refs...)
	return nil
}

// MarshalJSON always emits bare role names.
func (s RoleSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// --- Identity ---

// Identity is the authenticated user held by the session store.
type Identity struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Token    string  `json:"token,omitempty"`
	Roles    RoleSet `json:"roles"`
}

// Clone returns a deep copy so callers can't mutate store state.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	c.Roles = append(RoleSet{}, i.Roles...)
	return &c
}

// HasRole reports whether the identity carries the role.
func (i *Identity) HasRole(name string) bool {
	if i == nil {
		return false
	}
	return i.Roles.Has(name)
}

// Credentials is the sign-in payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignUpData is the sign-up payload.
type SignUpData struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}
