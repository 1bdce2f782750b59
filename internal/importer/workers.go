package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/auth"
	"github.com/frahmantamala/docportal/internal/costcenter"
	"github.com/frahmantamala/docportal/internal/user"
)

const minWorkerColumns = 3

type RowResult struct {
	Row               int    `json:"row"`
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	Email             string `json:"email,omitempty"`
	UserID            string `json:"user_id,omitempty"`
	GeneratedPassword string `json:"generated_password,omitempty"`
}

type WorkerReport struct {
	Results []RowResult `json:"results"`
	Summary Summary     `json:"summary"`
}

// Row is one parsed data line of a worker CSV. Number counts non-blank lines
// with the header as row 1.
type Row struct {
	Number int
	Fields []string
}

// ParseWorkerCSV splits the text into data rows. Blank lines are dropped and the
// first remaining line is the header. Fields are split on commas without quoting.
func ParseWorkerCSV(text string) []Row {
	var rows []Row
	n := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		n++
		if n == 1 {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		rows = append(rows, Row{Number: n, Fields: fields})
	}
	return rows
}

// ImportWorkers creates one worker per CSV row through the regular create
// worker operation. Failed rows are reported and the next row is processed.
// Columns: full name, email, phone, cost center name (optional).
func (im *Importer) ImportWorkers(ctx context.Context, caller *internal.Principal, csvText string) (*WorkerReport, error) {
	if err := auth.RequireAdmin(caller); err != nil {
		return nil, err
	}

	centers, err := im.costCenters.List(ctx)
	if err != nil {
		return nil, err
	}

	rows := ParseWorkerCSV(csvText)
	report := &WorkerReport{Results: make([]RowResult, 0, len(rows))}
	for _, row := range rows {
		res := im.importRow(ctx, caller, row, centers)
		report.Results = append(report.Results, res)
		report.Summary.add(res.Success)
	}

	im.logger.Info("worker import finished",
		"admin_id", caller.UserID,
		"succeeded", report.Summary.Succeeded,
		"failed", report.Summary.Failed,
	)
	return report, nil
}

func (im *Importer) importRow(ctx context.Context, caller *internal.Principal, row Row, centers []*costcenter.CostCenter) RowResult {
	res := RowResult{Row: row.Number}
	if len(row.Fields) < minWorkerColumns {
		res.Message = fmt.Sprintf("row %d: expected at least %d columns (full name, email, phone)", row.Number, minWorkerColumns)
		return res
	}

	name, email, phone := row.Fields[0], row.Fields[1], row.Fields[2]
	res.Email = email
	if name == "" || email == "" {
		res.Message = fmt.Sprintf("row %d: full name and email are required", row.Number)
		return res
	}

	password, err := GeneratePassword()
	if err != nil {
		res.Message = fmt.Sprintf("row %d: could not generate a password", row.Number)
		im.logger.Error("password generation failed", "row", row.Number, "error", err)
		return res
	}

	dto := user.CreateWorkerDTO{
		Email:    email,
		Password: password,
		FullName: name,
	}
	if phone != "" {
		dto.Phone = &phone
	}
	if len(row.Fields) > minWorkerColumns {
		if cc := costcenter.FindByName(centers, row.Fields[3]); cc != nil {
			dto.CostCenterID = &cc.ID
		}
	}

	rowCtx, cancel := internal.WithTimeout(ctx, im.cfg.ItemTimeout)
	defer cancel()

	id, err := im.workers.CreateWorker(rowCtx, caller, dto)
	if err != nil {
		res.Message = fmt.Sprintf("row %d: %s", row.Number, errorMessage(err))
		im.logger.Warn("worker import row failed", "row", row.Number, "email", email, "error", err)
		return res
	}

	res.Success = true
	res.UserID = id
	res.GeneratedPassword = password
	res.Message = fmt.Sprintf("row %d: created %s", row.Number, email)
	return res
}
