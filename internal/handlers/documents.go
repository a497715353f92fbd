package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/go-crm/httpx"
	"github.com/diewo77/go-crm/internal/metrics"
	"github.com/diewo77/go-crm/internal/models"
	"github.com/diewo77/go-crm/pdf"
)

// exporter renders PDFs and writes them as attachments.
type exporter struct {
	theme   pdf.Theme
	metrics *metrics.Metrics
}

func clientData(c *models.Client) pdf.ClientData {
	if c == nil {
		return pdf.ClientData{}
	}
	return pdf.ClientData{Name: c.DisplayName(), Company: c.Company, Email: c.Email, Phone: c.Phone}
}

func proposalData(p *models.Proposal, issued time.Time) pdf.ProposalData {
	return pdf.ProposalData{
		Title:            p.Title,
		Description:      p.ProjectDescription,
		TotalPrice:       p.TotalPrice,
		PaymentTerms:     p.PaymentTerms,
		DeliveryTime:     p.DeliveryTime,
		Included:         p.Included,
		Excluded:         p.Excluded,
		Status:           string(p.Status),
		ResponseDeadline: p.ResponseDeadline,
		IssuedAt:         issued,
		Client:           clientData(p.Client),
	}
}

func projectData(p *models.Project, issued time.Time) pdf.ProjectData {
	tasks := make([]pdf.TaskData, len(p.Tasks))
	for i, t := range p.Tasks {
		tasks[i] = pdf.TaskData{Title: t.Title, Completed: t.Completed}
	}
	return pdf.ProjectData{
		Name:        p.Name,
		Description: p.Description,
		Status:      string(p.Status),
		StartDate:   p.StartDate,
		DueDate:     p.DueDate,
		TotalPrice:  p.TotalPrice,
		Progress:    p.Progress(),
		Tasks:       tasks,
		IssuedAt:    issued,
		Client:      clientData(p.Client),
	}
}

func (e exporter) write(w http.ResponseWriter, b base, r *http.Request, entity, filename string, render func() ([]byte, error)) {
	data, err := render()
	e.metrics.ObservePDF(entity, err)
	if err != nil {
		b.log.Error("pdf generation failed", "entity", entity, "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", b.msg(r, "error.internal"), nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
