// Package importer reads vendor price lists (CSV or Excel) into catalog
// items. Headers are matched case-insensitively against known aliases and
// the CSV delimiter is detected from the data.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/GTDGit/drapery_api/internal/models"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Items    []models.CatalogItem `json:"-"`
	Imported int                  `json:"imported"`
	Errors   []string             `json:"errors"`
	Warnings []string             `json:"warnings"`
}

// HasErrors reports whether any row was rejected.
func (r ImportResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// column roles
const (
	colName = iota
	colCategory
	colSubcategory
	colSupplier
	colTags
	colSellingPrice
	colUnitPrice
	colPricePerUnit
	colPriceGroup
	colQuantity
	colColor
	colUnit
	colImage
	colFabricWidth
	numColumns
)

var headerAliases = map[int][]string{
	colName:         {"name", "item", "item name", "product", "description"},
	colCategory:     {"category", "type", "item type"},
	colSubcategory:  {"subcategory", "sub category", "sub-category", "range type"},
	colSupplier:     {"supplier", "vendor", "brand"},
	colTags:         {"tags", "tag", "labels"},
	colSellingPrice: {"selling price", "sell", "retail", "price"},
	colUnitPrice:    {"unit price", "cost"},
	colPricePerUnit: {"price per unit", "price/unit", "per metre", "per meter", "ppu"},
	colPriceGroup:   {"price group", "group", "pg"},
	colQuantity:     {"quantity", "qty", "stock", "on hand"},
	colColor:        {"color", "colour"},
	colUnit:         {"unit", "uom"},
	colImage:        {"image", "image url", "image_url", "photo"},
	colFabricWidth:  {"fabric width", "width", "roll width"},
}

// ColumnMapping maps column roles to their indices; -1 means absent.
type ColumnMapping [numColumns]int

// DetectCSVDelimiter picks the delimiter among comma, semicolon, tab and pipe
// that yields the most consistent multi-column rows.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) == 0 {
			continue
		}
		first := len(records[0])
		if first < 2 {
			continue
		}
		score := 0
		for _, row := range records {
			if len(row) == first {
				score++
			}
		}
		if weighted := score*10 + first; weighted > bestScore {
			bestScore = weighted
			best = delim
		}
	}
	return best
}

// DetectColumns maps a header row. ok is false when no known header appears.
func DetectColumns(row []string) (ColumnMapping, bool) {
	var m ColumnMapping
	for i := range m {
		m[i] = -1
	}
	found := false
	for idx, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			if m[role] != -1 {
				continue
			}
			for _, alias := range aliases {
				if normalized == alias {
					m[role] = idx
					found = true
					break
				}
			}
		}
	}
	return m, found
}

// ImportCSV parses CSV data.
func ImportCSV(data []byte) ImportResult {
	var result ImportResult
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delim := DetectCSVDelimiter(data)
	var warnings []string
	if delim != ',' {
		name := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delim]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", name))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	return importFromRows(records, "Line", warnings)
}

// ImportExcel parses the first sheet of an xlsx workbook.
func ImportExcel(r io.Reader) ImportResult {
	var result ImportResult

	f, err := excelize.OpenReader(r)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}
	return importFromRows(rows, "Row", nil)
}

// Import dispatches on the file name extension.
func Import(filename string, r io.Reader) ImportResult {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm") {
		return ImportExcel(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read file: %v", err)}}
	}
	return ImportCSV(data)
}

func importFromRows(rows [][]string, prefix string, warnings []string) ImportResult {
	result := ImportResult{Warnings: warnings}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, ok := DetectColumns(rows[0])
	if !ok {
		result.Errors = append(result.Errors, "Header row not recognised: a Name and a Category column are required")
		return result
	}
	var missing []string
	if mapping[colName] == -1 {
		missing = append(missing, "Name")
	}
	if mapping[colCategory] == -1 {
		missing = append(missing, "Category")
	}
	if len(missing) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
		return result
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		label := fmt.Sprintf("%s %d", prefix, i+1)
		item, rowWarnings, errMsg := parseRow(row, mapping, label)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Warnings = append(result.Warnings, rowWarnings...)
		result.Items = append(result.Items, item)
	}

	if len(result.Items) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}
	return result
}

func parseRow(row []string, m ColumnMapping, label string) (models.CatalogItem, []string, string) {
	var warnings []string

	name := getCell(row, m[colName])
	if name == "" {
		return models.CatalogItem{}, nil, fmt.Sprintf("%s: Missing name", label)
	}

	category, ok := parseCategory(getCell(row, m[colCategory]))
	if !ok {
		return models.CatalogItem{}, nil, fmt.Sprintf("%s: Unknown category '%s'", label, getCell(row, m[colCategory]))
	}

	item := models.CatalogItem{
		Name:        name,
		Category:    category,
		Subcategory: strings.ToLower(getCell(row, m[colSubcategory])),
		Supplier:    getCell(row, m[colSupplier]),
		Tags:        parseTags(getCell(row, m[colTags])),
		Color:       getCell(row, m[colColor]),
		Unit:        strings.ToLower(getCell(row, m[colUnit])),
		ImageURL:    getCell(row, m[colImage]),
		IsActive:    true,
	}
	if item.Subcategory == "" && category != models.ItemCategoryHardware {
		warnings = append(warnings, fmt.Sprintf("%s: No subcategory, item will be listed as legacy", label))
	}

	prices := []struct {
		col  int
		dst  *decimal.Decimal
		name string
	}{
		{colSellingPrice, &item.SellingPrice, "selling price"},
		{colUnitPrice, &item.UnitPrice, "unit price"},
		{colPricePerUnit, &item.PricePerUnit, "price per unit"},
	}
	for _, p := range prices {
		raw := strings.TrimPrefix(getCell(row, m[p.col]), "$")
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
		if err != nil || d.IsNegative() {
			return models.CatalogItem{}, nil, fmt.Sprintf("%s: Invalid %s '%s'", label, p.name, raw)
		}
		*p.dst = d
	}

	if pg := getCell(row, m[colPriceGroup]); pg != "" {
		item.PriceGroup = &pg
	}

	if raw := getCell(row, m[colQuantity]); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: Invalid quantity '%s', defaulting to 0", label, raw))
		} else {
			item.Quantity = qty
			item.TrackInventory = true
		}
	}

	if raw := getCell(row, m[colFabricWidth]); raw != "" {
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil || w <= 0 {
			warnings = append(warnings, fmt.Sprintf("%s: Invalid fabric width '%s', ignored", label, raw))
		} else {
			item.FabricWidth = &w
		}
	}

	return item, warnings, ""
}

func parseCategory(s string) (models.ItemCategory, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "_")) {
	case "fabric", "fabrics":
		return models.ItemCategoryFabric, true
	case "material", "materials":
		return models.ItemCategoryMaterial, true
	case "hardware", "track", "tracks":
		return models.ItemCategoryHardware, true
	case "hard_coverings", "hard_covering", "hardcovering":
		return models.ItemCategoryHardCoverings, true
	}
	return "", false
}

func parseTags(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '|' || r == ',' })
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
