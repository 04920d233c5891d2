package firegate

import "context"

// AdminUserID is the reserved administrative identity. A credential whose
// user id equals it is resolved from configuration, never from the store.
const AdminUserID = "admin"

// UsersPath is the store subtree reserved for user records.
const UsersPath = "users"

// Identity is a caller resolved from a verified credential. Resolved per
// request and never cached.
type Identity struct {
	ID       string
	Email    string
	Username string
	Active   bool
	Admin    bool
}

// UserRecord is the wire shape of a users/<id> entry.
type UserRecord struct {
	Username     string
	Email        string
	PasswordHash string
	Disabled     bool
	Admin        bool
}

// value renders the record as a store node. The password hash stays under
// the legacy field name so existing trees keep working.
func (r UserRecord) value() map[string]any {
	return map[string]any{
		"username":        r.Username,
		"email":           r.Email,
		"hashed_password": r.PasswordHash,
		"disabled":        r.Disabled,
		"is_admin":        r.Admin,
	}
}

// userRecordFromValue decodes a store node into a record. Nodes without an
// email are not user records.
func userRecordFromValue(value any) (UserRecord, bool) {
	node, ok := value.(map[string]any)
	if !ok {
		return UserRecord{}, false
	}

	var rec UserRecord
	rec.Username, _ = node["username"].(string)
	rec.Email, _ = node["email"].(string)
	rec.PasswordHash, _ = node["hashed_password"].(string)
	rec.Disabled, _ = node["disabled"].(bool)
	rec.Admin, _ = node["is_admin"].(bool)

	if rec.Email == "" {
		return UserRecord{}, false
	}
	return rec, true
}

// identityFromRecord builds the per-request Identity for a store record.
func identityFromRecord(id string, rec UserRecord) Identity {
	return Identity{
		ID:       id,
		Email:    rec.Email,
		Username: rec.Username,
		Active:   !rec.Disabled,
		Admin:    rec.Admin,
	}
}

// CreateUserInput is the registration payload.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Admin    bool
}

// Store is the surface the engine needs from the remote store client.
// *rtdb.Client satisfies it; tests substitute in-memory doubles. Reads
// swallow transport failures and mutations report plain booleans — the
// engine cannot tell "empty" from "backend down" and does not try to.
type Store interface {
	Read(ctx context.Context, path string) map[string]any
	Write(ctx context.Context, path string, value any) bool
	Update(ctx context.Context, path string, partial map[string]any) bool
	Delete(ctx context.Context, path string) bool
	EnsureDefault(ctx context.Context, path string, def any) bool
}
