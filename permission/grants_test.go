package permission

import "testing"

func TestGrantTablesOnlyContainCatalogEntries(t *testing.T) {
	for role, set := range projectRoleGrants {
		for p := range set {
			if !InCatalog(p) {
				t.Errorf("project role %s grants %s, which is not in the catalog", role, p)
			}
		}
	}
	for role, set := range teamRoleGrants {
		for p := range set {
			if !InCatalog(p) {
				t.Errorf("team role %s grants %s, which is not in the catalog", role, p)
			}
		}
	}
}

// The map is deterministic configuration: looking a role up twice yields the
// same set, and mutating a returned copy never leaks back.
func TestRolePermissionsAreDeterministic(t *testing.T) {
	first := ProjectRolePermissions(ProjectRoleEditor)
	second := ProjectRolePermissions(ProjectRoleEditor)

	if len(first) != len(second) {
		t.Fatalf("lookups differ in size: %d vs %d", len(first), len(second))
	}
	for p := range first {
		if !second.Contains(p) {
			t.Errorf("second lookup missing %s", p)
		}
	}

	delete(first, ProjectView)
	if !ProjectRolePermissions(ProjectRoleEditor).Contains(ProjectView) {
		t.Error("mutating a returned set leaked into the table")
	}
}

func TestTeamViewGrantedToEveryRole(t *testing.T) {
	for _, role := range []TeamRole{TeamRoleViewer, TeamRoleMember, TeamRoleAdmin, TeamRoleOwner} {
		if !TeamRolePermissions(role).Contains(TeamView) {
			t.Errorf("role %s cannot view its own team", role)
		}
	}
}

func TestTeamDeleteReservedToCreator(t *testing.T) {
	for _, role := range []TeamRole{TeamRoleViewer, TeamRoleMember, TeamRoleAdmin, TeamRoleOwner} {
		if TeamRolePermissions(role).Contains(TeamDelete) {
			t.Errorf("role %s grants team deletion; that is creator-only", role)
		}
	}
}

func TestEditorNeverDeletes(t *testing.T) {
	editor := ProjectRolePermissions(ProjectRoleEditor)
	for _, p := range []Permission{ColumnDelete, CardDelete, CommentDelete, LabelDelete, AttachmentDelete, ProjectDelete} {
		if editor.Contains(p) {
			t.Errorf("editor grants %s", p)
		}
	}
}
