package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	controller "kanbanly/controllers"
	"kanbanly/middleware"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Post("/change-password", controller.ChangePassword)
	protectedAuth.Get("/me", controller.GetCurrentUser)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	teamController := controller.NewTeamController(db)
	projectController := controller.NewProjectController(db)
	columnController := controller.NewColumnController(db)
	cardController := controller.NewCardController(db)
	commentController := controller.NewCommentController(db)
	labelController := controller.NewLabelController(db)
	attachmentController := controller.NewAttachmentController(db)
	notificationController := controller.NewNotificationController(db)

	// API group with versioning, protection and write throttling
	api := app.Group("/api/v1", middleware.Protected(), middleware.WriteRateLimiter(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Team routes
	team := api.Group("/teams")
	team.Post("/", teamController.CreateTeam)
	team.Get("/", teamController.GetTeams)
	team.Get("/:id", teamController.GetTeam)
	team.Put("/:id", teamController.UpdateTeam)
	team.Delete("/:id", teamController.DeleteTeam)
	team.Get("/:id/members", teamController.GetMembers)
	team.Put("/:id/members/:memberId/role", teamController.UpdateMemberRole)
	team.Delete("/:id/members/:memberId", teamController.RemoveMember)
	team.Post("/:id/leave", teamController.LeaveTeam)
	team.Post("/:id/invitations", teamController.InviteMember)
	api.Post("/invitations/:token/accept", teamController.AcceptInvitation)

	// Project routes
	project := api.Group("/projects")
	project.Post("/", projectController.CreateProject)
	project.Get("/", projectController.GetProjects)
	project.Get("/:id", projectController.GetProject)
	project.Get("/:id/permissions", projectController.GetProjectPermissions)
	project.Put("/:id", projectController.UpdateProject)
	project.Post("/:id/archive", projectController.ArchiveProject)
	project.Delete("/:id", projectController.DeleteProject)
	project.Post("/:id/teams", projectController.GrantTeam)
	project.Delete("/:id/teams/:teamId", projectController.RevokeTeam)
	project.Put("/:id/member-roles", projectController.SetMemberRole)
	project.Delete("/:id/member-roles/:membershipId", projectController.ClearMemberRole)

	// Column routes
	project.Post("/:id/columns", columnController.CreateColumn)
	project.Put("/:id/columns/reorder", columnController.ReorderColumns)
	api.Put("/columns/:columnId", columnController.UpdateColumn)
	api.Delete("/columns/:columnId", columnController.DeleteColumn)

	// Card routes
	card := api.Group("/cards")
	card.Post("/", cardController.CreateCard)
	card.Get("/:cardId", cardController.GetCard)
	card.Put("/:cardId", cardController.UpdateCard)
	card.Delete("/:cardId", cardController.DeleteCard)
	card.Put("/:cardId/move", cardController.MoveCard)
	card.Post("/:cardId/assignees", cardController.AssignCard)
	card.Delete("/:cardId/assignees/:userId", cardController.UnassignCard)

	// Comment routes
	card.Post("/:cardId/comments", commentController.CreateComment)
	card.Get("/:cardId/comments", commentController.GetComments)
	api.Put("/comments/:commentId", commentController.UpdateComment)
	api.Delete("/comments/:commentId", commentController.DeleteComment)

	// Label routes
	project.Post("/:id/labels", labelController.CreateLabel)
	project.Get("/:id/labels", labelController.GetLabels)
	api.Put("/labels/:labelId", labelController.UpdateLabel)
	api.Delete("/labels/:labelId", labelController.DeleteLabel)
	card.Post("/:cardId/labels/:labelId", labelController.AttachLabel)
	card.Delete("/:cardId/labels/:labelId", labelController.DetachLabel)

	// Attachment routes
	card.Post("/:cardId/attachments", attachmentController.UploadAttachment)
	card.Get("/:cardId/attachments", attachmentController.GetAttachments)
	api.Delete("/attachments/:attachmentId", attachmentController.DeleteAttachment)

	// Notification routes
	notification := api.Group("/notifications")
	notification.Get("/", notificationController.GetNotifications)
	notification.Put("/:id/read", notificationController.MarkRead)
	notification.Put("/read-all", notificationController.MarkAllRead)

	// WebSocket route for live board events
	app.Get("/api/v1/board/events", websocket.New(func(c *websocket.Conn) {
		controller.HandleBoardWS(c)
	}))

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app, db)

	// Setup API routes
	SetupAPIRoutes(app, db)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
