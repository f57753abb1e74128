package controller

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kanbanly/models"
	"kanbanly/permission"
)

type stubPermStore struct {
	ownerID    uint
	ownerErr   error
	creatorID  uint
	creatorErr error
	grants     []permission.MembershipGrant
	teamRole   *permission.TeamRole
}

func (s *stubPermStore) GetProjectOwner(_ context.Context, _ uint) (uint, error) {
	return s.ownerID, s.ownerErr
}

func (s *stubPermStore) GetTeamCreator(_ context.Context, _ uint) (uint, error) {
	return s.creatorID, s.creatorErr
}

func (s *stubPermStore) GetUserTeamMembershipsWithProjectAccess(_ context.Context, _, _ uint) ([]permission.MembershipGrant, error) {
	return s.grants, nil
}

func (s *stubPermStore) GetUserTeamMembership(_ context.Context, _, _ uint) (*permission.TeamRole, error) {
	return s.teamRole, nil
}

func (s *stubPermStore) GetCommentAuthor(_ context.Context, _ uint) (uint, error) {
	return 0, permission.ErrNotFound
}

const testUserID = 7

// newAuthzApp wires a single route through the given handler with the stub
// store swapped in and a fake authenticated user in locals.
func newAuthzApp(t *testing.T, store permission.Store, handler fiber.Handler) *fiber.App {
	t.Helper()

	orig := newAuthzStore
	newAuthzStore = func(*gorm.DB) permission.Store { return store }
	t.Cleanup(func() { newAuthzStore = orig })

	app := fiber.New()
	app.Get("/check", func(c *fiber.Ctx) error {
		c.Locals("user", &models.User{Model: gorm.Model{ID: testUserID}})
		return handler(c)
	})
	return app
}

func requestStatus(t *testing.T, app *fiber.App) int {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/check", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestRequireProjectPermissionMissingProjectIs404(t *testing.T) {
	store := &stubPermStore{ownerErr: permission.ErrNotFound}
	app := newAuthzApp(t, store, func(c *fiber.Ctx) error {
		checker, err := requireProjectPermission(c, nil, 1, permission.ProjectEdit)
		if checker != nil {
			t.Error("expected nil checker for missing project")
		}
		return err
	})

	if status := requestStatus(t, app); status != fiber.StatusNotFound {
		t.Errorf("status = %d, want %d", status, fiber.StatusNotFound)
	}
}

func TestRequireProjectPermissionDenialIs403(t *testing.T) {
	viewer := permission.ProjectRoleViewer
	store := &stubPermStore{
		ownerID: 99,
		grants: []permission.MembershipGrant{
			{TeamID: 1, TeamRole: permission.TeamRoleMember, ProjectRole: &viewer},
		},
	}
	app := newAuthzApp(t, store, func(c *fiber.Ctx) error {
		checker, err := requireProjectPermission(c, nil, 1, permission.ProjectEdit)
		if checker != nil {
			t.Error("expected nil checker on denial")
		}
		return err
	})

	if status := requestStatus(t, app); status != fiber.StatusForbidden {
		t.Errorf("status = %d, want %d", status, fiber.StatusForbidden)
	}
}

func TestRequireProjectPermissionOwnerPasses(t *testing.T) {
	store := &stubPermStore{ownerID: testUserID}
	app := newAuthzApp(t, store, func(c *fiber.Ctx) error {
		checker, err := requireProjectPermission(c, nil, 1, permission.ProjectEdit)
		if err != nil {
			return err
		}
		if checker == nil {
			t.Fatal("expected a checker for the project owner")
		}
		return c.SendStatus(fiber.StatusOK)
	})

	if status := requestStatus(t, app); status != fiber.StatusOK {
		t.Errorf("status = %d, want %d", status, fiber.StatusOK)
	}
}

func TestGetProjectPermissionsListsViewerGrants(t *testing.T) {
	viewer := permission.ProjectRoleViewer
	store := &stubPermStore{
		ownerID: 99,
		grants: []permission.MembershipGrant{
			{TeamID: 1, TeamRole: permission.TeamRoleMember, ProjectRole: &viewer},
		},
	}
	pc := &ProjectController{}
	app := newAuthzApp(t, store, pc.GetProjectPermissions)

	resp, err := app.Test(httptest.NewRequest("GET", "/check", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	for _, want := range []string{`"project:view"`, `"comment:create"`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("response missing %s: %s", want, body)
		}
	}
	if strings.Contains(string(body), `"project:edit"`) {
		t.Errorf("viewer granted project:edit: %s", body)
	}
}

func TestRequireTeamPermissionMissingTeamIs404(t *testing.T) {
	store := &stubPermStore{creatorErr: permission.ErrNotFound}
	app := newAuthzApp(t, store, func(c *fiber.Ctx) error {
		checker, err := requireTeamPermission(c, nil, 1, permission.TeamEdit)
		if checker != nil {
			t.Error("expected nil checker for missing team")
		}
		return err
	})

	if status := requestStatus(t, app); status != fiber.StatusNotFound {
		t.Errorf("status = %d, want %d", status, fiber.StatusNotFound)
	}
}

func TestRequireTeamPermissionNonMemberIs403(t *testing.T) {
	store := &stubPermStore{creatorID: 99, teamRole: nil}
	app := newAuthzApp(t, store, func(c *fiber.Ctx) error {
		checker, err := requireTeamPermission(c, nil, 1, permission.TeamEdit)
		if checker != nil {
			t.Error("expected nil checker for a non-member")
		}
		return err
	})

	if status := requestStatus(t, app); status != fiber.StatusForbidden {
		t.Errorf("status = %d, want %d", status, fiber.StatusForbidden)
	}
}
