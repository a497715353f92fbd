// Package pdf renders the proposal and project documents.
package pdf

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

const DefaultBrandColor = "#1E40AF"

type Theme struct {
	CompanyName string
	BrandColor  string
}

type ClientData struct {
	Name    string
	Company string
	Email   string
	Phone   string
}

type ProposalData struct {
	Title            string
	Description      string
	TotalPrice       float64
	PaymentTerms     string
	DeliveryTime     string
	Included         string
	Excluded         string
	Status           string
	ResponseDeadline *time.Time
	IssuedAt         time.Time
	Client           ClientData
}

type TaskData struct {
	Title     string
	Completed bool
}

type ProjectData struct {
	Name        string
	Description string
	Status      string
	StartDate   *time.Time
	DueDate     *time.Time
	TotalPrice  float64
	Progress    int
	Tasks       []TaskData
	IssuedAt    time.Time
	Client      ClientData
}

var (
	grey  = &props.Color{Red: 229, Green: 231, Blue: 235}
	white = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ParseColor reads #RRGGBB, falling back to DefaultBrandColor.
func ParseColor(hex string) *props.Color {
	c, ok := parseHex(hex)
	if !ok {
		c, _ = parseHex(DefaultBrandColor)
	}
	return c
}

func parseHex(hex string) (*props.Color, bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return nil, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, false
	}
	return &props.Color{Red: int(v >> 16 & 0xff), Green: int(v >> 8 & 0xff), Blue: int(v & 0xff)}, true
}

func newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	return maroto.New(cfg)
}

func header(m core.Maroto, theme Theme, kind, title string) {
	brand := ParseColor(theme.BrandColor)
	m.AddRows(
		row.New(14).Add(
			text.NewCol(8, theme.CompanyName, props.Text{Size: 15, Style: fontstyle.Bold, Color: white, Top: 4, Left: 3}),
			text.NewCol(4, strings.ToUpper(kind), props.Text{Size: 11, Style: fontstyle.Bold, Color: white, Top: 5, Right: 3, Align: align.Right}),
		).WithStyle(&props.Cell{BackgroundColor: brand}),
		row.New(6),
		text.NewRow(10, title, props.Text{Size: 14, Style: fontstyle.Bold, Color: brand}),
	)
}

func section(m core.Maroto, theme Theme, label string) {
	m.AddRows(
		row.New(4),
		text.NewRow(7, label, props.Text{Size: 11, Style: fontstyle.Bold, Color: ParseColor(theme.BrandColor)}),
	)
}

func field(m core.Maroto, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	m.AddRow(6,
		text.NewCol(4, label, props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(8, value, props.Text{Size: 9}),
	)
}

func paragraph(m core.Maroto, value string) {
	for _, line := range strings.Split(strings.TrimSpace(value), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			m.AddRows(text.NewRow(5, line, props.Text{Size: 9}))
		}
	}
}

func client(m core.Maroto, theme Theme, c ClientData) {
	section(m, theme, "Cliente")
	field(m, "Nombre", c.Name)
	field(m, "Empresa", c.Company)
	field(m, "Email", c.Email)
	field(m, "Teléfono", c.Phone)
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}

// Money formats amounts as 1.234,56 €.
func Money(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, dec, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + "," + dec + " €"
	if neg {
		out = "-" + out
	}
	return out
}

// ProgressCols splits the 12-column grid into filled and empty parts.
func ProgressCols(progress int) (filled, empty int) {
	switch {
	case progress <= 0:
		return 0, 12
	case progress >= 100:
		return 12, 0
	}
	filled = (progress*12 + 50) / 100
	if filled == 0 {
		filled = 1
	}
	if filled == 12 {
		filled = 11
	}
	return filled, 12 - filled
}

func progressBar(m core.Maroto, theme Theme, progress int) {
	filled, empty := ProgressCols(progress)
	bar := row.New(5)
	if filled > 0 {
		bar.Add(col.New(filled).WithStyle(&props.Cell{BackgroundColor: ParseColor(theme.BrandColor)}))
	}
	if empty > 0 {
		bar.Add(col.New(empty).WithStyle(&props.Cell{BackgroundColor: grey}))
	}
	m.AddRows(bar, text.NewRow(6, fmt.Sprintf("%d%% completado", progress), props.Text{Size: 8, Top: 1, Align: align.Right}))
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func ProposalPDF(theme Theme, p ProposalData) ([]byte, error) {
	m := newDocument()
	header(m, theme, "Propuesta", p.Title)
	field(m, "Fecha", p.IssuedAt.Format("02/01/2006"))
	field(m, "Válida hasta", date(p.ResponseDeadline))
	client(m, theme, p.Client)

	if strings.TrimSpace(p.Description) != "" {
		section(m, theme, "Descripción del proyecto")
		paragraph(m, p.Description)
	}
	if strings.TrimSpace(p.Included) != "" {
		section(m, theme, "Incluye")
		paragraph(m, p.Included)
	}
	if strings.TrimSpace(p.Excluded) != "" {
		section(m, theme, "No incluye")
		paragraph(m, p.Excluded)
	}

	section(m, theme, "Condiciones")
	field(m, "Plazo de entrega", p.DeliveryTime)
	field(m, "Forma de pago", p.PaymentTerms)
	m.AddRows(
		row.New(4),
		row.New(10).Add(
			text.NewCol(8, "Total", props.Text{Size: 12, Style: fontstyle.Bold, Top: 2, Left: 3}),
			text.NewCol(4, Money(p.TotalPrice), props.Text{Size: 12, Style: fontstyle.Bold, Top: 2, Right: 3, Align: align.Right}),
		).WithStyle(&props.Cell{BackgroundColor: grey}),
	)
	return generate(m)
}

func ProjectPDF(theme Theme, p ProjectData) ([]byte, error) {
	m := newDocument()
	header(m, theme, "Proyecto", p.Name)
	field(m, "Fecha", p.IssuedAt.Format("02/01/2006"))
	field(m, "Estado", p.Status)
	field(m, "Inicio", date(p.StartDate))
	field(m, "Entrega", date(p.DueDate))
	field(m, "Importe", Money(p.TotalPrice))
	client(m, theme, p.Client)

	if strings.TrimSpace(p.Description) != "" {
		section(m, theme, "Descripción")
		paragraph(m, p.Description)
	}

	section(m, theme, "Progreso")
	progressBar(m, theme, p.Progress)
	if len(p.Tasks) > 0 {
		section(m, theme, "Tareas")
		for _, t := range p.Tasks {
			mark := "[ ]"
			if t.Completed {
				mark = "[x]"
			}
			m.AddRow(6,
				text.NewCol(1, mark, props.Text{Size: 9}),
				text.NewCol(11, t.Title, props.Text{Size: 9}),
			)
		}
	}
	return generate(m)
}
