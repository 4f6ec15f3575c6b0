package auth

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/castboard/castboard/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every pooled connection would open its own empty memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	return db
}

type fixture struct {
	db        *gorm.DB
	svc       *Service
	local     *LocalProvider
	admin     *models.User
	manager   *models.User
	storeA    models.Store
	storeB    models.Store
	superRole models.Role
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	f := &fixture{db: db, svc: NewService(db), local: NewLocalProvider(db)}

	f.superRole = models.Role{Name: "superadmin", IsSuperAdmin: true}
	require.NoError(t, db.Create(&f.superRole).Error)

	managerRole := models.Role{Name: "manager"}
	require.NoError(t, db.Create(&managerRole).Error)

	for _, info := range AllPermissions() {
		perm := models.Permission{Name: info.Name, Description: info.Description}
		require.NoError(t, db.Create(&perm).Error)

		if info.Name == PermCastManage || info.Name == PermDashboardView {
			require.NoError(t, db.Create(&models.RolePermission{RoleID: managerRole.ID, PermissionID: perm.ID}).Error)
		}
	}

	var err error

	f.admin, err = f.local.CreateUser("admin", "admin@example.com", "secret-admin", "Owner", f.superRole.ID)
	require.NoError(t, err)

	f.manager, err = f.local.CreateUser("manager", "", "secret-manager", "", managerRole.ID)
	require.NoError(t, err)

	f.storeA = models.Store{Name: "Club A", Code: "A"}
	f.storeB = models.Store{Name: "Club B", Code: "B"}
	require.NoError(t, db.Create(&f.storeA).Error)
	require.NoError(t, db.Create(&f.storeB).Error)
	require.NoError(t, f.svc.AddStoreMember(f.manager.ID, f.storeA.ID))

	return f
}

func TestRequirementAllows(t *testing.T) {
	super := &Principal{SuperAdmin: true}
	staff := &Principal{Permissions: map[string]struct{}{PermCastManage: {}}}

	tests := []struct {
		name string
		req  Requirement
		p    *Principal
		want bool
	}{
		{"superadmin only, superadmin", Requirement{RequireSuperAdmin: true}, super, true},
		{"superadmin only, staff", Requirement{RequireSuperAdmin: true}, staff, false},
		{"superadmin only with permission held", Requirement{Permission: PermCastManage, RequireSuperAdmin: true}, staff, false},
		{"permission held", Requirement{Permission: PermCastManage}, staff, true},
		{"permission missing", Requirement{Permission: PermBaseSettings}, staff, false},
		{"permission missing, superadmin", Requirement{Permission: PermBaseSettings}, super, true},
		{"no permission needed", Requirement{}, staff, true},
		{"nil principal", Requirement{}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Allows(tt.p))
		})
	}
}

func TestPrincipal(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.Principal(f.manager.ID)
	require.NoError(t, err)
	assert.False(t, p.SuperAdmin)
	assert.True(t, p.Has(PermCastManage))
	assert.True(t, p.Has(PermDashboardView))
	assert.False(t, p.Has(PermBaseSettings))
	assert.Equal(t, "manager", p.Name())

	admin, err := f.svc.Principal(f.admin.ID)
	require.NoError(t, err)
	assert.True(t, admin.SuperAdmin)
	assert.True(t, admin.Has(PermUserManage))
	assert.Equal(t, "Owner", admin.Name())

	_, err = f.svc.Principal(9999)
	require.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, f.local.SetActive(f.manager.ID, false))
	_, err = f.svc.Principal(f.manager.ID)
	require.ErrorIs(t, err, ErrUserAccountDisabled)
}

func TestHasPermission(t *testing.T) {
	f := newFixture(t)

	ok, err := f.svc.HasPermission(f.manager.ID, PermCastManage)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.HasPermission(f.manager.ID, PermShiftManage)
	require.NoError(t, err)
	assert.False(t, ok)

	perms, err := f.svc.GetUserPermissions(f.manager.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{PermCastManage, PermDashboardView}, perms)
}

func TestStoreAccess(t *testing.T) {
	f := newFixture(t)

	manager, err := f.svc.Principal(f.manager.ID)
	require.NoError(t, err)

	admin, err := f.svc.Principal(f.admin.ID)
	require.NoError(t, err)

	stores, err := f.svc.StoresFor(manager)
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, f.storeA.ID, stores[0].ID)

	stores, err = f.svc.StoresFor(admin)
	require.NoError(t, err)
	assert.Len(t, stores, 2)

	ok, err := f.svc.CanAccessStore(manager, f.storeA.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.CanAccessStore(manager, f.storeB.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.CanAccessStore(admin, f.storeB.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, f.svc.AddStoreMember(f.manager.ID, f.storeA.ID), "adding twice is a no-op")
}

func TestSetStoreMembers(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.SetStoreMembers(f.manager.ID, []uint{f.storeB.ID, 0, f.storeA.ID, f.storeB.ID}))

	ids, err := f.svc.StoreIDsOf(f.manager.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.storeA.ID, f.storeB.ID}, ids)

	require.NoError(t, f.svc.SetStoreMembers(f.manager.ID, nil))

	ids, err = f.svc.StoreIDsOf(f.manager.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)

	require.ErrorIs(t, f.svc.DeleteUser(f.admin.ID), ErrProtectedUser)
	require.ErrorIs(t, f.svc.DeleteUser(9999), ErrUserNotFound)

	require.NoError(t, f.svc.DeleteUser(f.manager.ID))

	var users, members int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, f.db.Model(&models.StoreMember{}).Count(&members).Error)
	assert.Equal(t, int64(1), users)
	assert.Zero(t, members)
}

func TestLocalProvider(t *testing.T) {
	f := newFixture(t)

	user, err := f.local.Authenticate("manager", "secret-manager")
	require.NoError(t, err)
	assert.Equal(t, f.manager.ID, user.ID)

	_, err = f.local.Authenticate("manager", "wrong")
	require.ErrorIs(t, err, ErrInvalidPassword)

	_, err = f.local.Authenticate("ghost", "x")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.local.CreateUser("manager", "", "pw", "", f.superRole.ID)
	require.ErrorIs(t, err, ErrUserNameOrEmailExists)

	_, err = f.local.CreateUser("other", "admin@example.com", "pw", "", f.superRole.ID)
	require.ErrorIs(t, err, ErrUserNameOrEmailExists)

	_, err = f.local.CreateUser("nopw", "", "", "", f.superRole.ID)
	require.ErrorIs(t, err, ErrEmptyPassword)

	require.ErrorIs(t, f.local.ChangePassword(f.manager.ID, "wrong", "new"), ErrInvalidOldPassword)
	require.NoError(t, f.local.ChangePassword(f.manager.ID, "secret-manager", "new-secret"))

	_, err = f.local.Authenticate("manager", "new-secret")
	require.NoError(t, err)

	require.NoError(t, f.local.SetActive(f.manager.ID, false))
	_, err = f.local.Authenticate("manager", "new-secret")
	require.ErrorIs(t, err, ErrUserAccountDisabled)
}

type stubViews struct {
	rendered string
}

func (s *stubViews) Load() error { return nil }

func (s *stubViews) Render(w io.Writer, name string, _ any, _ ...string) error {
	s.rendered = name
	_, err := w.Write([]byte("rendered:" + name))

	return err
}

func gateApp(views *stubViews, svc *Service, p *Principal, req Requirement) *fiber.App {
	app := fiber.New(fiber.Config{Views: views})

	app.Use(func(c *fiber.Ctx) error {
		if p != nil {
			SetPrincipal(c, p)
		}

		return c.Next()
	})

	app.Get("/admin", Gate(svc, req), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	return app
}

func TestGateSuperAdminDenied(t *testing.T) {
	views := &stubViews{}
	svc := NewService(nil)
	svc.DeniedRedirectDelay = 2

	staff := &Principal{UserID: 2, Username: "staff", Permissions: map[string]struct{}{PermUserManage: {}}}
	app := gateApp(views, svc, staff, Requirement{Permission: PermUserManage, RequireSuperAdmin: true})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/admin", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "2; url=/", resp.Header.Get("Refresh"))
	assert.Equal(t, DeniedTemplate, views.rendered)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "rendered:"+DeniedTemplate, string(body))
}

func TestGateAllowed(t *testing.T) {
	views := &stubViews{}
	super := &Principal{UserID: 1, SuperAdmin: true}
	app := gateApp(views, NewService(nil), super, Requirement{RequireSuperAdmin: true})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, views.rendered)
}

func TestGateWithoutPrincipalRedirectsToLogin(t *testing.T) {
	app := gateApp(&stubViews{}, NewService(nil), nil, Requirement{})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, LoginPath, resp.Header.Get("Location"))
}
