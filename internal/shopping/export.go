package shopping

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

// exportMeal is a meal line printed above the item table.
type exportMeal struct {
	Name       string
	Multiplier int
}

// renderCSV writes the list as category,name,grams,calories_per_100g,food_id.
func renderCSV(items []Item) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"category", "name", "grams", "calories_per_100g", "food_id"}); err != nil {
		return nil, err
	}

	for _, it := range items {
		foodID := ""
		if it.FoodID != nil {
			foodID = *it.FoodID
		}
		row := []string{
			it.Category,
			it.Name,
			strconv.Itoa(it.Grams),
			strconv.FormatFloat(it.CaloriesPer100g, 'f', -1, 64),
			foodID,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// renderPDF prints the list grouped by category. Core fonts only cover
// cp1252, which is enough for accented Latin food names.
func renderPDF(items []Item, meals []exportMeal, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle("Shopping list", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Shopping list")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Generated "+generatedAt.UTC().Format("2006-01-02 15:04")+" UTC")
	pdf.Ln(8)

	if len(meals) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Meals")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 10)
		for _, m := range meals {
			pdf.Cell(0, 5, tr(fmt.Sprintf("- %s x%d", m.Name, m.Multiplier)))
			pdf.Ln(5)
		}
		pdf.Ln(4)
	}

	if len(items) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, "Nothing to buy.")
	}

	category := ""
	for i, it := range items {
		if i == 0 || it.Category != category {
			category = it.Category
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", 12)
			pdf.Cell(0, 7, tr(category))
			pdf.Ln(7)

			pdf.SetFont("Helvetica", "B", 9)
			pdf.CellFormat(100, 6, "Food", "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 6, "Grams", "1", 0, "R", false, 0, "")
			pdf.CellFormat(40, 6, "kcal / 100 g", "1", 1, "R", false, 0, "")
		}

		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(100, 6, tr(it.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, strconv.Itoa(it.Grams), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, strconv.FormatFloat(it.CaloriesPer100g, 'f', -1, 64), "1", 1, "R", false, 0, "")
	}

	if len(items) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, fmt.Sprintf("Total: %d g", TotalGrams(items)))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}
