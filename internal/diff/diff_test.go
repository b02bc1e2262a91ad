package diff_test

import (
	"testing"

	"internwatch/internal/diff"
	"internwatch/internal/identity"
	"internwatch/internal/model"
)

type fakeState struct {
	seen   map[string]bool
	active map[string]bool
}

func newFakeState() *fakeState {
	return &fakeState{seen: map[string]bool{}, active: map[string]bool{}}
}

func (f *fakeState) add(role model.RoleRecord, active bool) {
	key := identity.Key(role)
	f.seen[key] = true
	f.active[key] = active
}

func (f *fakeState) Contains(key string) bool { return f.seen[key] }

func (f *fakeState) ActiveState(key string) (bool, bool) { return f.active[key], f.seen[key] }

func role(company, title string, visible, active bool) model.RoleRecord {
	return model.RoleRecord{
		Company:    company,
		Title:      title,
		Locations:  []string{"Remote"},
		DatePosted: 1756500000,
		Visible:    visible,
		Active:     active,
	}
}

func TestCompute_NewVisibleActiveRoles(t *testing.T) {
	snapshot := model.Snapshot{Roles: []model.RoleRecord{
		role("Acme", "SWE Intern", true, true),
		role("Globex", "Data Intern", false, true),
		role("Initech", "QA Intern", true, false),
		role("Umbrella", "ML Intern", true, true),
	}}

	changes := diff.Compute(snapshot, newFakeState())
	if len(changes.New) != 2 {
		t.Fatalf("got %d new roles, want 2", len(changes.New))
	}
	if changes.New[0].Role.Company != "Acme" || changes.New[1].Role.Company != "Umbrella" {
		t.Errorf("new roles = [%s, %s], want [Acme, Umbrella]",
			changes.New[0].Role.Company, changes.New[1].Role.Company)
	}
	if len(changes.Deactivated) != 0 {
		t.Errorf("got %d deactivations, want 0", len(changes.Deactivated))
	}
}

func TestCompute_PreservesSnapshotOrder(t *testing.T) {
	snapshot := model.Snapshot{Roles: []model.RoleRecord{
		role("C1", "T1", true, true),
		role("C2", "T2", true, true),
		role("C3", "T3", true, true),
	}}

	changes := diff.Compute(snapshot, newFakeState())
	for i, want := range []string{"C1", "C2", "C3"} {
		if changes.New[i].Role.Company != want {
			t.Errorf("position %d = %s, want %s", i, changes.New[i].Role.Company, want)
		}
	}
}

func TestCompute_SkipsAlreadyNotified(t *testing.T) {
	known := role("Acme", "SWE Intern", true, true)
	added := role("Globex", "Data Intern", true, true)

	state := newFakeState()
	state.add(known, true)

	snapshot := model.Snapshot{Roles: []model.RoleRecord{known, added}}
	changes := diff.Compute(snapshot, state)
	if len(changes.New) != 1 {
		t.Fatalf("got %d new roles, want 1", len(changes.New))
	}
	if changes.New[0].Role.Company != "Globex" {
		t.Errorf("new role = %s, want Globex", changes.New[0].Role.Company)
	}
}

func TestCompute_NeverProposesKeyTwiceInOneSnapshot(t *testing.T) {
	duplicate := role("Acme", "SWE Intern", true, true)
	snapshot := model.Snapshot{Roles: []model.RoleRecord{duplicate, duplicate}}

	changes := diff.Compute(snapshot, newFakeState())
	if len(changes.New) != 1 {
		t.Errorf("got %d new roles, want 1 (duplicate key collapsed)", len(changes.New))
	}
}

func TestCompute_DeactivationForNotifiedRole(t *testing.T) {
	notified := role("Acme", "SWE Intern", true, true)
	state := newFakeState()
	state.add(notified, true)

	flipped := notified
	flipped.Active = false
	snapshot := model.Snapshot{Roles: []model.RoleRecord{flipped}}

	changes := diff.Compute(snapshot, state)
	if len(changes.New) != 0 {
		t.Errorf("got %d new roles, want 0", len(changes.New))
	}
	if len(changes.Deactivated) != 1 {
		t.Fatalf("got %d deactivations, want 1", len(changes.Deactivated))
	}
	if changes.Deactivated[0].Role.Company != "Acme" {
		t.Errorf("deactivated role = %s, want Acme", changes.Deactivated[0].Role.Company)
	}
}

func TestCompute_NoRepeatDeactivation(t *testing.T) {
	notified := role("Acme", "SWE Intern", true, true)
	state := newFakeState()
	state.add(notified, false) // already marked inactive

	flipped := notified
	flipped.Active = false
	changes := diff.Compute(model.Snapshot{Roles: []model.RoleRecord{flipped}}, state)
	if len(changes.Deactivated) != 0 {
		t.Errorf("got %d deactivations, want 0 (already marked inactive)", len(changes.Deactivated))
	}
}

// A role that was never simultaneously visible and active is never notified,
// so flipping it inactive later produces nothing either.
func TestCompute_NeverQualifiedNeverDeactivated(t *testing.T) {
	hidden := role("Acme", "SWE Intern", false, true)
	state := newFakeState()

	changes := diff.Compute(model.Snapshot{Roles: []model.RoleRecord{hidden}}, state)
	if len(changes.New) != 0 || len(changes.Deactivated) != 0 {
		t.Fatalf("hidden role produced changes: %+v", changes)
	}

	flipped := hidden
	flipped.Active = false
	changes = diff.Compute(model.Snapshot{Roles: []model.RoleRecord{flipped}}, state)
	if len(changes.New) != 0 || len(changes.Deactivated) != 0 {
		t.Errorf("never-notified inactive role produced changes: %+v", changes)
	}
}
