package api

import (
	"database/sql"
	"net/http"

	"github.com/nidohq/nido-api/internal/api/handlers"
	"github.com/nidohq/nido-api/internal/blob"
	"github.com/nidohq/nido-api/internal/realtime"
	"github.com/nidohq/nido-api/internal/repository"
	"github.com/nidohq/nido-api/internal/service"
)

func SetupRouter(db *sql.DB, blobs *blob.Store, hub *realtime.Hub) *http.ServeMux {
	mux := http.NewServeMux()

	childRepo := repository.NewChildRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	documentRepo := repository.NewDocumentRepository(db)

	childService := service.NewChildService(childRepo, hub)
	routineService := service.NewRoutineService(taskRepo, templateRepo, hub)
	templateService := service.NewTemplateService(templateRepo, hub)
	goalService := service.NewGoalService(goalRepo, hub)
	expenseService := service.NewExpenseService(expenseRepo, paymentRepo, blobs, hub)
	documentService := service.NewDocumentService(documentRepo, blobs, hub)

	childHandler := handlers.NewChildHandler(childService)
	routineHandler := handlers.NewRoutineHandler(routineService)
	templateHandler := handlers.NewTemplateHandler(templateService)
	goalHandler := handlers.NewGoalHandler(goalService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	eventsHandler := handlers.NewEventsHandler(hub)

	mux.HandleFunc("POST /children", childHandler.CreateChild)
	mux.HandleFunc("GET /children", childHandler.ListChildren)
	mux.HandleFunc("GET /children/{id}", childHandler.GetChild)
	mux.HandleFunc("PUT /children/{id}", childHandler.UpdateChild)

	mux.HandleFunc("GET /children/{id}/tasks", routineHandler.GetDayTasks)
	mux.HandleFunc("POST /children/{id}/tasks", routineHandler.AddTask)
	mux.HandleFunc("POST /children/{id}/apply-template", routineHandler.ApplyTemplate)
	mux.HandleFunc("POST /tasks/{id}/toggle", routineHandler.ToggleTask)
	mux.HandleFunc("POST /tasks/bulk-complete", routineHandler.BulkComplete)

	mux.HandleFunc("GET /templates", templateHandler.ListTemplates)
	mux.HandleFunc("POST /templates", templateHandler.SaveTemplate)
	mux.HandleFunc("GET /templates/{id}", templateHandler.GetTemplate)
	mux.HandleFunc("POST /templates/{id}/tasks", templateHandler.EditTemplateTask)

	mux.HandleFunc("POST /children/{id}/goals", goalHandler.CreateGoal)
	mux.HandleFunc("GET /children/{id}/goals", goalHandler.ListGoals)
	mux.HandleFunc("GET /goals/{id}", goalHandler.GetGoal)
	mux.HandleFunc("GET /goals/{id}/target-date", goalHandler.GetTargetDate)
	mux.HandleFunc("POST /goals/{id}/milestones/{index}/toggle", goalHandler.ToggleMilestone)

	mux.HandleFunc("POST /expenses", expenseHandler.CreateExpense)
	mux.HandleFunc("GET /expenses", expenseHandler.ListExpenses)
	mux.HandleFunc("GET /expenses/{id}/shares", expenseHandler.GetShares)
	mux.HandleFunc("POST /expenses/{id}/payments", expenseHandler.RecordPayment)
	mux.HandleFunc("GET /expenses/{id}/payments", expenseHandler.ListPayments)

	mux.HandleFunc("POST /documents", documentHandler.UploadDocument)
	mux.HandleFunc("GET /documents", documentHandler.ListDocuments)

	mux.HandleFunc("GET /events", eventsHandler.StreamEvents)

	mux.Handle("GET /blobs/", http.StripPrefix("/blobs/", http.FileServer(http.Dir(blobs.Root()))))

	return mux
}
