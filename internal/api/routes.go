package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/", handler.Root)
	app.Get("/health", handler.Health)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/token", handler.IssueToken)

	users := api.Group("/users", handler.AuthRequired)
	users.Get("/me", handler.Me)
	users.Post("", handler.AdminOnly, handler.CreateUser)
	users.Get("", handler.ListUsers)
	users.Get("/:id", handler.GetUser)
	users.Patch("/:id", handler.AdminOnly, handler.UpdateUser)
	users.Delete("/:id", handler.AdminOnly, handler.DeleteUser)

	projects := api.Group("/projects", handler.AuthRequired)
	projects.Post("", handler.AdminOnly, handler.CreateProject)
	projects.Get("", handler.ListProjects)
	projects.Get("/:id", handler.GetProject)
	projects.Put("/:id", handler.AdminOnly, handler.UpdateProject)
	projects.Delete("/:id", handler.AdminOnly, handler.DeleteProject)
	projects.Post("/:id/access", handler.AdminOnly, handler.GrantProjectAccess)
	projects.Delete("/:id/access/:user_id", handler.AdminOnly, handler.RevokeProjectAccess)
	projects.Get("/:id/users", handler.AdminOnly, handler.ListProjectUsers)

	tasks := api.Group("/tasks")
	// Task types are reference data and stay readable without a token.
	tasks.Get("/task_types", handler.ListTaskTypes)
	tasks.Use(handler.AuthRequired)
	tasks.Post("", handler.TaskLoadRequired, handler.CreateTask)
	tasks.Get("", handler.ListTasks)
	tasks.Get("/count", handler.CountTasks)
	tasks.Get("/by_project/:project_id/count", handler.CountTasksByProject)
	tasks.Get("/by_project/:project_id", handler.ListTasksByProject)
	tasks.Get("/:id/history", handler.TaskHistory)
	tasks.Get("/:id", handler.GetTask)
	tasks.Put("/:id", handler.TaskLoadRequired, handler.UpdateTask)
	tasks.Delete("/:id", handler.TaskLoadRequired, handler.DeleteTask)

	autocomplete := api.Group("/autocomplete", handler.AuthRequired)
	autocomplete.Get("/users", handler.AutocompleteUsers)
	autocomplete.Get("/managers", handler.AutocompleteManagers)
	autocomplete.Get("/projects", handler.AutocompleteProjects)

	reports := api.Group("/reports", handler.AuthRequired, handler.ReportAccessRequired)
	reports.Get("/gantt", handler.ReportGantt)
	reports.Get("/pie/tasks_by_type", handler.ReportTasksByType)
	reports.Get("/pie/projects_by_type", handler.ReportProjectsByType)
	reports.Get("/pie/reviewers", handler.ReportReviewers)
	reports.Get("/pie/testers", handler.ReportTesters)
	reports.Get("/pie/sp_by_project", handler.ReportSPByProject)
	reports.Get("/pie/loc_by_user", handler.ReportLOCByUser)
	reports.Get("/pie/sp_by_user", handler.ReportSPByUser)
	reports.Get("/pie/tasks_by_user", handler.ReportTasksByUser)
	reports.Get("/aggregate/by_user", handler.ReportAggregateByUser)
	reports.Get("/sp_avg/by_user", handler.ReportSPAvgByUser)
	reports.Get("/loc/by_user", handler.ReportLOCByUser)

	images := api.Group("/report-images", handler.AuthRequired, handler.ReportAccessRequired)
	images.Get("/gantt", handler.ImageGantt)
	images.Get("/pie/tasks_by_type", handler.ImagePieTasksByType)
	images.Get("/pie/reviewers", handler.ImagePieReviewers)
	images.Get("/pie/testers", handler.ImagePieTesters)
	images.Get("/pie/sp_by_project", handler.ImagePieSPByProject)
	images.Get("/pie/loc_by_user", handler.ImagePieLOCByUser)
	images.Get("/pie/sp_by_user", handler.ImagePieSPByUser)
	images.Get("/pie/tasks_by_user", handler.ImagePieTasksByUser)
	images.Get("/bar/sp_avg_by_user", handler.ImageBarSPAvgByUser)
	images.Get("/bar/aggregate_by_user", handler.ImageBarAggregateByUser)
}
