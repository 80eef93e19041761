// Package export renders a task list as JSON, CSV or PDF.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/nibzard/webnote/internal/storage"
	"github.com/nibzard/webnote/internal/todo"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// Formats lists the supported formats.
func Formats() []string {
	return []string{FormatJSON, FormatCSV, FormatPDF}
}

// Title heads the PDF report.
const Title = "Web Note"

// Write renders list to w in the given format.
func Write(w io.Writer, list todo.List, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatJSON:
		data, err := storage.Encode(list)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatCSV:
		return writeCSV(w, list)
	case FormatPDF:
		return writePDF(w, list)
	default:
		return fmt.Errorf("unknown format %q (expected %s)", format, strings.Join(Formats(), "|"))
	}
}

func writeCSV(w io.Writer, list todo.List) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "title", "description", "completed"})
	for _, t := range list {
		_ = cw.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Description,
			strconv.FormatBool(t.Completed),
		})
	}
	cw.Flush()
	return cw.Error()
}

func writePDF(w io.Writer, list todo.List) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, Title)
	pdf.Ln(10)

	pending, completed := list.Counts()
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(110, 110, 110)
	pdf.Cell(40, 6, fmt.Sprintf("%d pending, %d completed", pending, completed))
	pdf.Ln(10)

	if len(list) == 0 {
		pdf.SetFont("Arial", "I", 11)
		pdf.Cell(40, 8, "No tasks yet.")
	}
	for _, t := range list {
		mark := "[ ]"
		pdf.SetTextColor(0, 0, 0)
		if t.Completed {
			mark = "[x]"
			pdf.SetTextColor(140, 140, 140)
		}
		pdf.SetFont("Arial", "B", 11)
		pdf.MultiCell(0, 6, tr(mark+" "+t.Title), "0", "L", false)
		if t.Description != "" {
			pdf.SetFont("Arial", "", 10)
			pdf.SetX(pdf.GetX() + 8)
			pdf.MultiCell(0, 5, tr(t.Description), "0", "L", false)
		}
		pdf.Ln(2)
	}

	return pdf.Output(w)
}
