package permission

import "testing"

func TestTeamRoleOrdering(t *testing.T) {
	if !(TeamRoleOwner > TeamRoleAdmin && TeamRoleAdmin > TeamRoleMember && TeamRoleMember > TeamRoleViewer) {
		t.Error("team role ordinals out of order")
	}
}

func TestProjectRoleOrdering(t *testing.T) {
	if !(ProjectRoleAdmin > ProjectRoleEditor && ProjectRoleEditor > ProjectRoleViewer) {
		t.Error("project role ordinals out of order")
	}
}

func TestTeamRoleRoundTrip(t *testing.T) {
	for _, role := range []TeamRole{TeamRoleOwner, TeamRoleAdmin, TeamRoleMember, TeamRoleViewer} {
		parsed, ok := ParseTeamRole(role.String())
		if !ok {
			t.Errorf("ParseTeamRole(%q) failed", role.String())
			continue
		}
		if parsed != role {
			t.Errorf("round trip %s -> %s", role, parsed)
		}
	}
}

func TestProjectRoleRoundTrip(t *testing.T) {
	for _, role := range []ProjectRole{ProjectRoleAdmin, ProjectRoleEditor, ProjectRoleViewer} {
		parsed, ok := ParseProjectRole(role.String())
		if !ok {
			t.Errorf("ParseProjectRole(%q) failed", role.String())
			continue
		}
		if parsed != role {
			t.Errorf("round trip %s -> %s", role, parsed)
		}
	}
}

func TestParseRejectsUnknown(t *testing.T) {
	if _, ok := ParseTeamRole("superuser"); ok {
		t.Error("ParseTeamRole accepted an unknown role")
	}
	if _, ok := ParseProjectRole(""); ok {
		t.Error("ParseProjectRole accepted the empty string")
	}
}
