// Package diff compares a listing snapshot against the notified set and
// produces the changes worth telling anyone about.
package diff

import (
	"internwatch/internal/identity"
	"internwatch/internal/model"
)

// StateView is the read-only slice of the state store the diff needs.
type StateView interface {
	Contains(key string) bool
	ActiveState(key string) (active bool, known bool)
}

// Change pairs a role with its resolved identity key.
type Change struct {
	Role model.RoleRecord
	Key  string
}

// Changes holds one cycle's qualifying differences, each in snapshot order.
type Changes struct {
	New         []Change
	Deactivated []Change
}

// Compute walks the snapshot in document order. A role qualifies as new when
// it is visible, active and its key is unknown to the state view. A role
// qualifies as deactivated when its key was notified with active=true and
// the current record is inactive. A key is never proposed twice within one
// snapshot even if the document repeats it.
func Compute(snapshot model.Snapshot, state StateView) Changes {
	var changes Changes
	proposed := make(map[string]bool)

	for _, role := range snapshot.Roles {
		key := identity.Key(role)
		if proposed[key] {
			continue
		}

		if state.Contains(key) {
			if storedActive, _ := state.ActiveState(key); storedActive && !role.Active {
				changes.Deactivated = append(changes.Deactivated, Change{Role: role, Key: key})
				proposed[key] = true
			}
			continue
		}

		// Never visible+active simultaneously means never notified,
		// and therefore never a deactivation either.
		if role.Visible && role.Active {
			changes.New = append(changes.New, Change{Role: role, Key: key})
			proposed[key] = true
		}
	}

	return changes
}
