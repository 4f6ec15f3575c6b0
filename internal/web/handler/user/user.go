// Package user provides the account management pages.
package user

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/castboard/castboard/internal/auth"
	"github.com/castboard/castboard/internal/confirm"
	"github.com/castboard/castboard/internal/db/models"
	"github.com/castboard/castboard/internal/notify"
	"github.com/castboard/castboard/internal/web/handler"
	confirmhandler "github.com/castboard/castboard/internal/web/handler/confirm"
	"github.com/castboard/castboard/internal/web/navigation"
	"github.com/castboard/castboard/internal/web/session"
)

const (
	// Path is the base path for user management.
	Path = handler.RootPath + "users"

	// TemplateList is the template for listing users.
	TemplateList = "users/list"
	// TemplateForm is the template for creating/updating a user.
	TemplateForm = "users/form"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25
)

// Form is the account form. Password is required on create and optional on
// update, where an empty value keeps the current one.
type Form struct {
	Username    string `form:"username"     validate:"required,min=3,max=100,alphanumunicode"`
	Email       string `form:"email"        validate:"omitempty,email,max=255"`
	DisplayName string `form:"display_name" validate:"max=100"`
	Password    string `form:"password"     validate:"omitempty,min=8,max=128"`
	RoleID      uint   `form:"role_id"      validate:"required"`
	Active      bool   `form:"active"`
	StoreIDs    []uint `form:"store_ids"`
}

// Service provides CRUD operations for users.
type Service struct {
	handler.Service
	deps *handler.Deps
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if err := deps.Check(app); err != nil {
		return err
	}

	s.deps = deps

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequirePermission(deps.Auth, auth.PermUserManage))

		router.Get(handler.RouterRootPath, s.List)
		router.Get("/new", s.New)
		router.Post(handler.RouterRootPath, s.Create)
		router.Get("/:id/edit", s.Edit)
		router.Post("/:id", s.Update)
		router.Post("/:id/delete", s.Delete)
	})

	return nil
}

func userID(c *fiber.Ctx) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)

	return id, err == nil && id > 0
}

func nav(c *fiber.Ctx, title, url string) *navigation.Context {
	n := handler.Nav(c, title, navigation.SectionUsers).AddBreadcrumb("ユーザー", Path)
	if url != Path {
		n.AddBreadcrumb(title, url)
	}

	return n
}

// List shows users with simple pagination and search.
func (s *Service) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	search := strings.TrimSpace(c.Query("search"))

	var (
		users      []models.User
		totalCount int64
		tx         = s.deps.DB.Model(&models.User{})
	)

	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		tx = tx.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(display_name) LIKE ?", like, like, like)
	}

	err := tx.Count(&totalCount).Error
	if s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpLoadUsers}) {
		return c.Redirect(handler.RootPath)
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}

	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * pageSize

	err = tx.Preload("Role").Order("id DESC").Limit(pageSize).Offset(offset).Find(&users).Error
	if s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpLoadUsers}) {
		return c.Redirect(handler.RootPath)
	}

	p, _ := auth.PrincipalFrom(c)

	return handler.Render(c, TemplateList, fiber.Map{
		"Navigation":    nav(c, "ユーザー", Path),
		"Users":         users,
		"CurrentUserID": p.UserID,
		"Search":        search,
		"Page":          page,
		"PageSize":      pageSize,
		"TotalItems":    totalCount,
		"TotalPages":    totalPages,
		"HasPrev":       page > 1,
		"HasNext":       page < totalPages,
		"PrevPage":      page - 1,
		"NextPage":      page + 1,
	})
}

func (s *Service) renderForm(c *fiber.Ctx, id uint64, form Form) error {
	var roles []models.Role
	if err := s.deps.DB.Order("name ASC").Find(&roles).Error; err != nil {
		s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpLoadUsers})
		return c.Redirect(Path)
	}

	var stores []models.Store
	if err := s.deps.DB.Order("name ASC").Find(&stores).Error; err != nil {
		s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpLoadStores})
		return c.Redirect(Path)
	}

	members := make(map[uint]bool, len(form.StoreIDs))
	for _, storeID := range form.StoreIDs {
		members[storeID] = true
	}

	title, action := "ユーザー登録", Path
	if id != 0 {
		title, action = "ユーザー編集", Path+"/"+strconv.FormatUint(id, 10)
	}

	return handler.Render(c, TemplateForm, fiber.Map{
		"Navigation": nav(c, title, action),
		"Form":       form,
		"IsCreate":   id == 0,
		"Action":     action,
		"Roles":      roles,
		"Stores":     stores,
		"Members":    members,
	})
}

// New shows the creation form.
func (s *Service) New(c *fiber.Ctx) error {
	return s.renderForm(c, 0, Form{Active: true})
}

// parse reads and validates the form. When it returns false the response is
// already written.
func (s *Service) parse(c *fiber.Ctx, id uint64) (Form, bool, error) {
	var form Form

	if err := c.BodyParser(&form); err != nil {
		s.deps.Notify.HandleError(c, err, notify.Options{Operation: notify.OpSaveUser})
		return form, false, c.Redirect(Path)
	}

	if err := s.deps.Validate.Struct(&form); err != nil {
		s.deps.Notify.HandleError(c, err, notify.Options{
			Operation: notify.OpSaveUser,
			Details:   handler.ValidationDetails(err),
		})

		c.Status(fiber.StatusUnprocessableEntity)

		return form, false, s.renderForm(c, id, form)
	}

	return form, true, nil
}

func (s *Service) saveFailed(c *fiber.Ctx, err error) {
	var details string

	switch {
	case errors.Is(err, auth.ErrUserNameOrEmailExists), errors.Is(err, gorm.ErrDuplicatedKey):
		details = notify.DetailUserExists
	case errors.Is(err, auth.ErrEmptyPassword):
		details = notify.DetailPasswordNeeded
	}

	s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpSaveUser, Details: details})
}

// Create creates a new user.
func (s *Service) Create(c *fiber.Ctx) error {
	form, ok, err := s.parse(c, 0)
	if !ok {
		return err
	}

	created, err := auth.NewLocalProvider(s.deps.DB).
		CreateUser(form.Username, form.Email, form.Password, form.DisplayName, form.RoleID)
	if err != nil {
		s.saveFailed(c, err)
		c.Status(fiber.StatusUnprocessableEntity)

		return s.renderForm(c, 0, form)
	}

	if !form.Active {
		err = auth.NewLocalProvider(s.deps.DB).SetActive(created.ID, false)
	}

	if err == nil {
		err = s.deps.Auth.SetStoreMembers(created.ID, form.StoreIDs)
	}

	if s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpSaveUser}) {
		return c.Redirect(Path)
	}

	log.Info().Uint64("user_id", created.ID).Str("username", created.Username).Msg("user created")
	s.deps.Notify.Success(c, notify.MsgSaved)

	return c.Redirect(Path)
}

// Edit shows the edit form for a user.
func (s *Service) Edit(c *fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return c.Redirect(Path)
	}

	var u models.User
	if err := s.deps.DB.First(&u, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpLoadUsers})
		}

		return c.Redirect(Path)
	}

	storeIDs, err := s.deps.Auth.StoreIDsOf(id)
	if s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpLoadUsers}) {
		return c.Redirect(Path)
	}

	return s.renderForm(c, id, Form{
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		RoleID:      u.RoleID,
		Active:      u.Active,
		StoreIDs:    storeIDs,
	})
}

// Update updates a user. The current user can not disable their own account.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return c.Redirect(Path)
	}

	form, ok, err := s.parse(c, id)
	if !ok {
		return err
	}

	if p, _ := auth.PrincipalFrom(c); p.UserID == id {
		form.Active = true
	}

	err = s.deps.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
			"username":     form.Username,
			"email":        form.Email,
			"display_name": form.DisplayName,
			"role_id":      form.RoleID,
			"active":       form.Active,
		})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return auth.ErrUserNotFound
		}

		if form.Password != "" {
			if errPassword := auth.NewLocalProvider(tx).ResetPassword(id, form.Password); errPassword != nil {
				return errPassword
			}
		}

		return auth.NewService(tx).SetStoreMembers(id, form.StoreIDs)
	})
	if errors.Is(err, auth.ErrUserNotFound) {
		return c.Redirect(Path)
	}

	if err != nil {
		s.saveFailed(c, err)
		c.Status(fiber.StatusUnprocessableEntity)

		return s.renderForm(c, id, form)
	}

	log.Info().Uint64("user_id", id).Msg("user updated")
	s.deps.Notify.Success(c, notify.MsgSaved)

	return c.Redirect(Path)
}

// Delete asks for confirmation before removing a user. Own and superadmin
// accounts are refused.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := userID(c)
	if !ok {
		return c.Redirect(Path)
	}

	var target models.User
	if err := s.deps.DB.Preload("Role").First(&target, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.deps.Notify.HandleDBError(c, err, notify.Options{Operation: notify.OpDeleteUser})
		}

		return c.Redirect(Path)
	}

	p, _ := auth.PrincipalFrom(c)

	refuse := func(details string) error {
		log.Warn().Str("user", p.Name()).Uint64("target", id).Str("reason", details).Msg("user deletion refused")
		s.deps.Notify.Push(c, notify.Toast{
			Kind:    notify.KindError,
			Message: s.deps.Notify.Message(notify.Options{Operation: notify.OpDeleteUser, Details: details}),
		})

		return c.Redirect(Path)
	}

	switch {
	case p.UserID == id:
		return refuse(notify.DetailSelfDelete)
	case target.Role.IsSuperAdmin:
		return refuse(notify.DetailProtectedUser)
	}

	authService := s.deps.Auth

	prompt := s.deps.Confirm.Ask(
		"ユーザー「"+target.Username+"」を削除しますか?",
		Path,
		func(context.Context) error {
			return authService.DeleteUser(id)
		},
		confirm.WithOperation(notify.OpDeleteUser),
		confirm.WithSuccess(notify.MsgDeleted),
		confirm.WithOwner(session.IDFrom(c)),
	)

	return c.Redirect(confirmhandler.URL(prompt))
}
