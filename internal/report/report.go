// Package report exports the analytics and task list screens as PDF, CSV or JSON.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/godaily/godaily/internal/view"
)

// Format is an export format.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %s", s)
	}
}

// FormatFromPath guesses the format from a file extension, defaulting to PDF.
func FormatFromPath(path string) Format {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return FormatPDF
	}
	if f, err := ParseFormat(path[i+1:]); err == nil {
		return f
	}
	return FormatPDF
}

// Write renders frame to w.
func Write(w io.Writer, frame view.Frame, format Format) error {
	if frame.Loading {
		return fmt.Errorf("tasks have not been loaded")
	}
	switch format {
	case FormatPDF:
		return writePDF(w, frame)
	case FormatCSV:
		return writeCSV(w, frame)
	case FormatJSON:
		return writeJSON(w, frame)
	default:
		return fmt.Errorf("unknown format %s", format)
	}
}

func dueString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func status(completed bool) string {
	if completed {
		return "completed"
	}
	return "pending"
}

func writePDF(w io.Writer, frame view.Frame) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("GoDaily Analytics", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "GoDaily Analytics")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, "Generated "+frame.Now.Format("Mon, 02 Jan 2006 15:04 MST"))
	pdf.Ln(10)

	a := frame.Analytics
	pdf.SetFont("Arial", "B", 12)
	for _, kv := range [][2]string{
		{"Total tasks", strconv.Itoa(a.Total)},
		{"Completion", fmt.Sprintf("%d%%", a.Percentage)},
		{"Productivity score", strconv.Itoa(a.Score)},
	} {
		pdf.CellFormat(60, 8, kv[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, kv[1], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	s := frame.Dashboard.Suggestion
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "Suggested next")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 6, tr(s.Title+" - "+s.Reason), "0", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	for _, h := range []struct {
		label string
		width float64
	}{{"Task", 100}, {"Priority", 25}, {"Due", 30}, {"Status", 25}} {
		pdf.CellFormat(h.width, 7, h.label, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range frame.TaskList.Rows {
		title := row.Title
		if len([]rune(title)) > 60 {
			title = string([]rune(title)[:57]) + "..."
		}
		pdf.CellFormat(100, 6, tr(title), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, string(row.Priority), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, dueString(row.DueDate), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, status(row.Completed), "1", 1, "L", false, 0, "")
	}
	if len(frame.TaskList.Rows) == 0 {
		pdf.CellFormat(180, 6, frame.TaskList.Empty, "1", 1, "C", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, frame view.Frame) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "title", "priority", "due_date", "status"})
	for _, row := range frame.TaskList.Rows {
		_ = cw.Write([]string{row.ID, row.Title, string(row.Priority), dueString(row.DueDate), status(row.Completed)})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

type jsonReport struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Analytics   view.Analytics  `json:"analytics"`
	Suggestion  view.Suggestion `json:"suggestion"`
	Tasks       []jsonTask      `json:"tasks"`
}

type jsonTask struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Priority string     `json:"priority"`
	DueDate  *time.Time `json:"dueDate,omitempty"`
	Status   string     `json:"status"`
}

func writeJSON(w io.Writer, frame view.Frame) error {
	out := jsonReport{
		GeneratedAt: frame.Now,
		Analytics:   frame.Analytics,
		Suggestion:  frame.Dashboard.Suggestion,
		Tasks:       make([]jsonTask, 0, len(frame.TaskList.Rows)),
	}
	for _, row := range frame.TaskList.Rows {
		out.Tasks = append(out.Tasks, jsonTask{
			ID:       row.ID,
			Title:    row.Title,
			Priority: string(row.Priority),
			DueDate:  row.DueDate,
			Status:   status(row.Completed),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
