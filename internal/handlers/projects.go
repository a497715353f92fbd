package handlers

import (
	"net/http"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/clock"
	"github.com/diewo77/go-crm/internal/metrics"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/internal/query"
	"github.com/diewo77/go-crm/internal/services"
	"github.com/diewo77/go-crm/logging"
	"github.com/diewo77/go-crm/pdf"
	"github.com/diewo77/go-crm/validation"
)

type ProjectHandler struct {
	base
	exporter
	svc *services.ProjectService
}

func NewProjectHandler(svc *services.ProjectService, theme pdf.Theme, m *metrics.Metrics, clk clock.Clock, log *logging.Logger) *ProjectHandler {
	return &ProjectHandler{base: newBase(clk, log), exporter: exporter{theme: theme, metrics: m}, svc: svc}
}

type projectRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
	StartDate    string  `json:"start_date"`
	DueDate      string  `json:"due_date"`
	TotalPrice   float64 `json:"total_price"`
	PaymentTerms string  `json:"payment_terms"`
}

func (h *ProjectHandler) input(req projectRequest) (services.ProjectInput, validation.Violations) {
	v := validation.Violations{}
	return services.ProjectInput{
		Name:         req.Name,
		Description:  req.Description,
		Status:       models.ProjectStatus(req.Status),
		StartDate:    h.date("start_date", req.StartDate, v),
		DueDate:      h.date("due_date", req.DueDate, v),
		TotalPrice:   req.TotalPrice,
		PaymentTerms: req.PaymentTerms,
	}, v
}

type projectView struct {
	models.Project
	Progress int `json:"progress"`
}

func viewProject(p models.Project) projectView {
	return projectView{Project: p, Progress: p.Progress()}
}

// List: GET /proyectos?search=&status=&client=&from=&to=&sort_field=&sort_order=&page=
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.svc.List(r.Context(), actor(r), query.ProjectFilter{
		Search:    q.Get("search"),
		Status:    models.ProjectStatus(q.Get("status")),
		Client:    q.Get("client"),
		DateRange: h.rangeOf(r),
		Sort:      sortOf(r),
		Page:      queryInt(r, "page"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	views := make([]projectView, len(page.Data))
	for i, p := range page.Data {
		views[i] = viewProject(p)
	}
	httpx.JSON(w, http.StatusOK, query.Page[projectView]{
		Data: views, Total: page.Total, Page: page.Page, PerPage: page.PerPage, LastPage: page.LastPage,
	})
}

func (h *ProjectHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewProject(*p))
}

// Edit returns the project together with the statuses a form may offer.
func (h *ProjectHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"project":  viewProject(*p),
		"statuses": models.ProjectStatuses,
	})
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req projectRequest
	if !h.decode(w, r, &req) {
		return
	}
	in, v := h.input(req)
	if !v.Empty() {
		h.invalid(w, r, v)
		return
	}
	p, err := h.svc.Update(r.Context(), actor(r), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "project.updated", viewProject(*p))
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), actor(r), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "project.deleted", nil)
}

// ChangeStatus: POST /proyectos/{id}/cambiar-estado {"status": "..."}
func (h *ProjectHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.svc.ChangeStatus(r.Context(), actor(r), id, models.ProjectStatus(req.Status))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "project.status_changed", viewProject(*p))
}

var transitionMessages = map[services.Transition]string{
	services.TransitionStart:    "project.started",
	services.TransitionPause:    "project.paused",
	services.TransitionResume:   "project.resumed",
	services.TransitionComplete: "project.completed",
}

// Transition returns the handler for one guarded lifecycle move.
func (h *ProjectHandler) Transition(t services.Transition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.pathID(w, r, "id")
		if !ok {
			return
		}
		p, err := h.svc.Apply(r.Context(), actor(r), id, t)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.ok(w, r, http.StatusOK, transitionMessages[t], viewProject(*p))
	}
}

// PDF: GET /proyectos/{id}/pdf
func (h *ProjectHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.svc.Export(r.Context(), actor(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	now := h.clock.Now().In(h.clock.Location())
	h.write(w, h.base, r, "project", pdf.Filename(pdf.EntityProject, p.Name, now), func() ([]byte, error) {
		return pdf.ProjectPDF(h.theme, projectData(p, now))
	})
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *ProjectHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req taskRequest
	if !h.decode(w, r, &req) {
		return
	}
	t, err := h.svc.AddTask(r.Context(), actor(r), id, services.TaskInput{Title: req.Title, Description: req.Description})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusCreated, "task.created", t)
}

func (h *ProjectHandler) taskIDs(w http.ResponseWriter, r *http.Request) (uint, uint, bool) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return 0, 0, false
	}
	taskID, ok := h.pathID(w, r, "task")
	return id, taskID, ok
}

func (h *ProjectHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, taskID, ok := h.taskIDs(w, r)
	if !ok {
		return
	}
	var req taskRequest
	if !h.decode(w, r, &req) {
		return
	}
	t, err := h.svc.UpdateTask(r.Context(), actor(r), id, taskID, services.TaskInput{Title: req.Title, Description: req.Description})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "task.updated", t)
}

func (h *ProjectHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, taskID, ok := h.taskIDs(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteTask(r.Context(), actor(r), id, taskID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "task.deleted", nil)
}

// ToggleTask answers with the task and the project's recomputed progress.
func (h *ProjectHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, taskID, ok := h.taskIDs(w, r)
	if !ok {
		return
	}
	t, progress, err := h.svc.ToggleTask(r.Context(), actor(r), id, taskID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "task.toggled", map[string]any{"task": t, "progress": progress})
}

// ReorderTasks: POST /proyectos/{id}/tareas/reordenar {"ids": [3, 1, 2]}
func (h *ProjectHandler) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		IDs []uint `json:"ids"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	tasks, err := h.svc.ReorderTasks(r.Context(), actor(r), id, req.IDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "task.reordered", tasks)
}
