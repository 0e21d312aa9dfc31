// Package router wires HTTP routes to their handlers. Routes split into a
// public set (register, login, passcode verification, shared notes, health)
// and a protected set behind the session middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/daybook-app/daybook/internal/handler"
	"github.com/daybook-app/daybook/internal/middleware"
	"github.com/daybook-app/daybook/internal/repository"
)

// Handlers collects every handler the router needs.
type Handlers struct {
	Auth    *handler.AuthHandler
	Todos   *handler.TodoHandler
	Notes   *handler.NoteHandler
	Search  *handler.SearchHandler
	Export  *handler.ExportHandler
	Shared  *handler.SharedHandler
	Profile *handler.ProfileHandler
}

// Register attaches all application routes to the Echo instance. Everything
// except registration, login, passcode verification, the public shared-note
// view and the health check requires a valid session cookie.
func Register(e *echo.Echo, h Handlers, users *repository.UserRepo) {
	e.GET("/healthz", handler.Health)

	// Unauthenticated flows.
	e.POST("/register", h.Auth.Register)
	e.POST("/login", h.Auth.Login)
	e.GET("/verify-otp", h.Auth.ShowVerifyOTP)
	e.POST("/verify-otp", h.Auth.VerifyOTP)
	e.GET("/shared/:publicID", h.Shared.Show)

	// Everything below requires a session.
	auth := e.Group("", middleware.SessionAuth(users))
	auth.GET("/logout", h.Auth.Logout)

	auth.GET("/", h.Todos.Index)
	auth.POST("/todo/add", h.Todos.Add)
	auth.POST("/todo/update/:id", h.Todos.Update)
	auth.POST("/todo/delete/:id", h.Todos.Delete)

	auth.GET("/notes", h.Notes.List)
	auth.POST("/notes/add", h.Notes.Add)
	auth.POST("/notes/update/:id", h.Notes.Update)
	auth.POST("/notes/delete/:id", h.Notes.Delete)
	auth.POST("/note/share/:id", h.Notes.ToggleShare)

	auth.GET("/search", h.Search.Search)
	auth.GET("/export_data", h.Export.Export)

	auth.GET("/profile", h.Profile.Show)
	auth.POST("/profile", h.Profile.Update)
	auth.POST("/update_name", h.Profile.UpdateName)
}
