package permission

import (
	"context"
	"errors"
	"testing"
)

type userProject struct {
	userID uint
	id     uint
}

// fakeStore is an in-memory Store for tests.
type fakeStore struct {
	projectOwners  map[uint]uint
	teamCreators   map[uint]uint
	memberships    map[userProject][]MembershipGrant
	teamRoles      map[userProject]*TeamRole
	commentAuthors map[uint]uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projectOwners:  make(map[uint]uint),
		teamCreators:   make(map[uint]uint),
		memberships:    make(map[userProject][]MembershipGrant),
		teamRoles:      make(map[userProject]*TeamRole),
		commentAuthors: make(map[uint]uint),
	}
}

func (s *fakeStore) GetProjectOwner(_ context.Context, projectID uint) (uint, error) {
	owner, ok := s.projectOwners[projectID]
	if !ok {
		return 0, ErrNotFound
	}
	return owner, nil
}

func (s *fakeStore) GetTeamCreator(_ context.Context, teamID uint) (uint, error) {
	creator, ok := s.teamCreators[teamID]
	if !ok {
		return 0, ErrNotFound
	}
	return creator, nil
}

func (s *fakeStore) GetUserTeamMembershipsWithProjectAccess(_ context.Context, userID, projectID uint) ([]MembershipGrant, error) {
	return s.memberships[userProject{userID, projectID}], nil
}

func (s *fakeStore) GetUserTeamMembership(_ context.Context, userID, teamID uint) (*TeamRole, error) {
	return s.teamRoles[userProject{userID, teamID}], nil
}

func (s *fakeStore) GetCommentAuthor(_ context.Context, commentID uint) (uint, error) {
	author, ok := s.commentAuthors[commentID]
	if !ok {
		return 0, ErrNotFound
	}
	return author, nil
}

func roleRef(r ProjectRole) *ProjectRole { return &r }

func loadedProjectChecker(t *testing.T, store Store, userID, projectID uint) *ProjectChecker {
	t.Helper()
	checker := NewProjectChecker(store, userID, projectID)
	if err := checker.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return checker
}

func TestProjectOwnerHasEveryPermission(t *testing.T) {
	store := newFakeStore()
	store.projectOwners[1] = 10

	checker := loadedProjectChecker(t, store, 10, 1)

	for _, p := range Catalog() {
		ok, err := checker.HasPermission(p)
		if err != nil {
			t.Fatalf("HasPermission(%s): %v", p, err)
		}
		if !ok {
			t.Errorf("owner denied %s", p)
		}
	}
}

func TestNoTeamPathDeniesEverything(t *testing.T) {
	store := newFakeStore()
	store.projectOwners[1] = 10

	// User 20 is neither owner nor a member of any granted team
	checker := loadedProjectChecker(t, store, 20, 1)

	for _, p := range Catalog() {
		ok, err := checker.HasPermission(p)
		if err != nil {
			t.Fatalf("HasPermission(%s): %v", p, err)
		}
		if ok {
			t.Errorf("unconnected user granted %s", p)
		}
	}
}

func TestHighestRoleAggregation(t *testing.T) {
	tests := []struct {
		name  string
		roles []*ProjectRole
		want  ProjectRole
	}{
		{"viewer and editor", []*ProjectRole{roleRef(ProjectRoleViewer), roleRef(ProjectRoleEditor)}, ProjectRoleEditor},
		{"editor and admin", []*ProjectRole{roleRef(ProjectRoleEditor), roleRef(ProjectRoleAdmin)}, ProjectRoleAdmin},
		{"admin first", []*ProjectRole{roleRef(ProjectRoleAdmin), roleRef(ProjectRoleViewer)}, ProjectRoleAdmin},
		{"nil ignored", []*ProjectRole{nil, roleRef(ProjectRoleEditor)}, ProjectRoleEditor},
		// Team access with no recorded role falls back to viewer. Pinned:
		// "has access, unspecified role" reads as lowest role, not no-access.
		{"no explicit roles", []*ProjectRole{nil, nil}, ProjectRoleViewer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.projectOwners[1] = 99
			var grants []MembershipGrant
			for i, role := range tt.roles {
				grants = append(grants, MembershipGrant{
					TeamID:      uint(i + 1),
					TeamRole:    TeamRoleMember,
					ProjectRole: role,
				})
			}
			store.memberships[userProject{20, 1}] = grants

			checker := loadedProjectChecker(t, store, 20, 1)
			got, ok := checker.Context().EffectiveRole()
			if !ok {
				t.Fatal("expected team access")
			}
			if got != tt.want {
				t.Errorf("EffectiveRole = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestProjectRoleMonotonicity(t *testing.T) {
	viewer := ProjectRolePermissions(ProjectRoleViewer)
	editor := ProjectRolePermissions(ProjectRoleEditor)
	admin := ProjectRolePermissions(ProjectRoleAdmin)

	for p := range viewer {
		if !editor.Contains(p) {
			t.Errorf("editor missing viewer permission %s", p)
		}
	}
	for p := range editor {
		if !admin.Contains(p) {
			t.Errorf("admin missing editor permission %s", p)
		}
	}
}

func TestNoProjectRoleGrantsProjectDeletion(t *testing.T) {
	for _, role := range []ProjectRole{ProjectRoleViewer, ProjectRoleEditor, ProjectRoleAdmin} {
		if ProjectRolePermissions(role).Contains(ProjectDelete) {
			t.Errorf("role %s grants project deletion; that is owner-only", role)
		}
	}
}

func TestTeamCreatorOverride(t *testing.T) {
	store := newFakeStore()
	store.teamCreators[5] = 10

	// Creator with no recorded membership at all
	checker := NewTeamChecker(store, 10, 5)
	if err := checker.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ok, err := checker.CanDeleteTeam()
	if err != nil {
		t.Fatalf("CanDeleteTeam: %v", err)
	}
	if !ok {
		t.Error("creator without membership denied team deletion")
	}

	// Creator whose recorded role is viewer
	viewerRole := TeamRoleViewer
	store.teamRoles[userProject{10, 5}] = &viewerRole
	checker = NewTeamChecker(store, 10, 5)
	if err := checker.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ok, err = checker.CanDeleteTeam()
	if err != nil {
		t.Fatalf("CanDeleteTeam: %v", err)
	}
	if !ok {
		t.Error("creator with viewer role denied team deletion")
	}
}

func TestTeamOwnerRoleCannotDeleteTeam(t *testing.T) {
	store := newFakeStore()
	store.teamCreators[5] = 10

	ownerRole := TeamRoleOwner
	store.teamRoles[userProject{20, 5}] = &ownerRole

	checker := NewTeamChecker(store, 20, 5)
	if err := checker.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ok, err := checker.CanDeleteTeam()
	if err != nil {
		t.Fatalf("CanDeleteTeam: %v", err)
	}
	if ok {
		t.Error("owner-role member deleted a team they did not create")
	}
}

func TestCanModifyComment(t *testing.T) {
	const (
		projectID    = 1
		ownComment   = 100
		otherComment = 101
	)

	setup := func(role ProjectRole, userID uint) (*ProjectChecker, *fakeStore) {
		store := newFakeStore()
		store.projectOwners[projectID] = 99
		store.memberships[userProject{userID, projectID}] = []MembershipGrant{
			{TeamID: 1, TeamRole: TeamRoleMember, ProjectRole: roleRef(role)},
		}
		store.commentAuthors[ownComment] = userID
		store.commentAuthors[otherComment] = 77
		return loadedProjectChecker(t, store, userID, projectID), store
	}

	t.Run("editor can edit own comment", func(t *testing.T) {
		checker, _ := setup(ProjectRoleEditor, 20)
		ok, err := checker.CanModifyComment(context.Background(), ownComment)
		if err != nil {
			t.Fatalf("CanModifyComment: %v", err)
		}
		if !ok {
			t.Error("author with edit grant denied their own comment")
		}
	})

	t.Run("editor cannot touch another user's comment", func(t *testing.T) {
		checker, _ := setup(ProjectRoleEditor, 20)
		ok, err := checker.CanModifyComment(context.Background(), otherComment)
		if err != nil {
			t.Fatalf("CanModifyComment: %v", err)
		}
		if ok {
			t.Error("edit-only user modified someone else's comment")
		}
	})

	t.Run("admin overrides authorship", func(t *testing.T) {
		checker, _ := setup(ProjectRoleAdmin, 20)
		ok, err := checker.CanModifyComment(context.Background(), otherComment)
		if err != nil {
			t.Fatalf("CanModifyComment: %v", err)
		}
		if !ok {
			t.Error("delete-level user denied on someone else's comment")
		}
	})

	t.Run("viewer cannot edit even own comment", func(t *testing.T) {
		checker, _ := setup(ProjectRoleViewer, 20)
		ok, err := checker.CanModifyComment(context.Background(), ownComment)
		if err != nil {
			t.Fatalf("CanModifyComment: %v", err)
		}
		if ok {
			t.Error("viewer edited a comment")
		}
	})

	t.Run("missing comment is not found", func(t *testing.T) {
		checker, _ := setup(ProjectRoleEditor, 20)
		_, err := checker.CanModifyComment(context.Background(), 999)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestQueryBeforeLoadIsLoud(t *testing.T) {
	store := newFakeStore()
	store.projectOwners[1] = 10
	store.teamCreators[5] = 10

	project := NewProjectChecker(store, 10, 1)
	if _, err := project.HasPermission(ProjectView); !errors.Is(err, ErrContextNotLoaded) {
		t.Errorf("HasPermission before Load: err = %v, want ErrContextNotLoaded", err)
	}
	if _, err := project.CanEditProject(); !errors.Is(err, ErrContextNotLoaded) {
		t.Errorf("CanEditProject before Load: err = %v, want ErrContextNotLoaded", err)
	}
	if _, err := project.CanModifyComment(context.Background(), 1); !errors.Is(err, ErrContextNotLoaded) {
		t.Errorf("CanModifyComment before Load: err = %v, want ErrContextNotLoaded", err)
	}

	team := NewTeamChecker(store, 10, 5)
	if _, err := team.CanDeleteTeam(); !errors.Is(err, ErrContextNotLoaded) {
		t.Errorf("CanDeleteTeam before Load: err = %v, want ErrContextNotLoaded", err)
	}
}

func TestUnknownPermissionIsLoud(t *testing.T) {
	store := newFakeStore()
	store.projectOwners[1] = 10

	checker := loadedProjectChecker(t, store, 10, 1)
	bogus := Permission{Action: "frobnicate", Resource: "widget"}
	if _, err := checker.HasPermission(bogus); !errors.Is(err, ErrUnknownPermission) {
		t.Errorf("err = %v, want ErrUnknownPermission", err)
	}
}

func TestMissingProjectIsNotFound(t *testing.T) {
	store := newFakeStore()

	checker := NewProjectChecker(store, 10, 404)
	err := checker.Load(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load err = %v, want ErrNotFound", err)
	}
}

// Owner override dominates the role tables even when the owner's role-based
// grants alone would deny.
func TestOwnerOverridesOwnEditorRole(t *testing.T) {
	store := newFakeStore()
	store.projectOwners[1] = 10
	store.memberships[userProject{10, 1}] = []MembershipGrant{
		{TeamID: 1, TeamRole: TeamRoleMember, ProjectRole: roleRef(ProjectRoleEditor)},
	}

	checker := loadedProjectChecker(t, store, 10, 1)
	ok, err := checker.CanDeleteCards()
	if err != nil {
		t.Fatalf("CanDeleteCards: %v", err)
	}
	if !ok {
		t.Error("owner with editor role denied card deletion")
	}
}

func TestViewerRoleGrants(t *testing.T) {
	store := newFakeStore()
	store.projectOwners[2] = 99
	store.memberships[userProject{30, 2}] = []MembershipGrant{
		{TeamID: 2, TeamRole: TeamRoleViewer, ProjectRole: roleRef(ProjectRoleViewer)},
	}

	checker := loadedProjectChecker(t, store, 30, 2)

	tests := []struct {
		perm Permission
		want bool
	}{
		{CardCreate, false},
		{ProjectView, true},
		{CommentCreate, true},
		{CardDelete, false},
	}
	for _, tt := range tests {
		ok, err := checker.HasPermission(tt.perm)
		if err != nil {
			t.Fatalf("HasPermission(%s): %v", tt.perm, err)
		}
		if ok != tt.want {
			t.Errorf("HasPermission(%s) = %t, want %t", tt.perm, ok, tt.want)
		}
	}
}
