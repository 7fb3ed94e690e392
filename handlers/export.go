package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"loggit/storage"

	"github.com/xuri/excelize/v2"
)

// ExportHandler produces downloadable month reports for the master
// account, as CSV or XLSX.
type ExportHandler struct {
	store storage.Store
}

func NewExportHandler(store storage.Store) *ExportHandler {
	return &ExportHandler{store: store}
}

type exportRow struct {
	Employee   string
	Date       string
	TimeIn     string
	TimeOut    string
	Breaks     int
	TotalHours float64
}

func (h *ExportHandler) monthRows(r *http.Request) ([]exportRow, int, int, error) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		return nil, 0, 0, fmt.Errorf("invalid month")
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2100 {
		return nil, 0, 0, fmt.Errorf("invalid year")
	}

	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		return nil, 0, 0, err
	}
	entries, err := h.store.ListEntries(r.Context())
	if err != nil {
		return nil, 0, 0, err
	}

	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName()
	}

	var rows []exportRow
	for _, e := range entries {
		if e.Date.IsZero() || e.Date.Year() != year || int(e.Date.Month()) != month {
			continue
		}
		name := names[e.UserID]
		if name == "" {
			name = e.UserID
		}
		rows = append(rows, exportRow{
			Employee:   name,
			Date:       e.Date.Format("2006-01-02"),
			TimeIn:     e.TimeIn,
			TimeOut:    e.TimeOut,
			Breaks:     e.BreakMinutes(),
			TotalHours: e.TotalHours,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		return rows[i].Employee < rows[j].Employee
	})
	return rows, year, month, nil
}

func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rows, year, month, err := h.monthRows(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filename := fmt.Sprintf("ledger_%d_%02d.csv", year, month)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"Employee", "Date", "Time In", "Time Out", "Break Minutes", "Total Hours"})
	for _, row := range rows {
		writer.Write([]string{
			row.Employee,
			row.Date,
			row.TimeIn,
			row.TimeOut,
			strconv.Itoa(row.Breaks),
			fmt.Sprintf("%.2f", row.TotalHours),
		})
	}
}

func (h *ExportHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	rows, year, month, err := h.monthRows(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	f.SetSheetRow(sheet, "A1", &[]interface{}{"Employee", "Date", "Time In", "Time Out", "Break Minutes", "Total Hours"})

	var total float64
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		f.SetSheetRow(sheet, cell, &[]interface{}{
			row.Employee, row.Date, row.TimeIn, row.TimeOut, row.Breaks, row.TotalHours,
		})
		total += row.TotalHours
	}
	totalCell := fmt.Sprintf("A%d", len(rows)+3)
	f.SetSheetRow(sheet, totalCell, &[]interface{}{
		fmt.Sprintf("Total %s %d", time.Month(month), year), "", "", "", "", total,
	})

	filename := fmt.Sprintf("ledger_%d_%02d.xlsx", year, month)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if err := f.Write(w); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to write workbook")
	}
}
