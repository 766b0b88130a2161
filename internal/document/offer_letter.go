package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/talentops/hireflow/internal/domain/entity"
)

// OfferLetterRenderer generates offer letter workbooks for records. It
// builds each document from scratch rather than filling a template, so a
// missing template file cannot break letter generation.
type OfferLetterRenderer struct {
	outputDir   string
	companyName string
	logger      *zap.Logger
}

// NewOfferLetterRenderer creates a renderer writing into outputDir
func NewOfferLetterRenderer(outputDir, companyName string, logger *zap.Logger) (*OfferLetterRenderer, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &OfferLetterRenderer{
		outputDir:   outputDir,
		companyName: companyName,
		logger:      logger,
	}, nil
}

// Render generates the offer letter for a record and returns the file path.
// Only offer records carry the fields a letter needs.
func (r *OfferLetterRenderer) Render(ctx context.Context, record *entity.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	offer, ok := record.Payload.(*entity.OfferPayload)
	if !ok {
		return "", fmt.Errorf("record %s is not an offer", record.ID)
	}

	r.logger.Info("Rendering offer letter",
		zap.String("record_id", record.ID),
		zap.String("candidate", offer.CandidateName))

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create title style: %w", err)
	}
	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create label style: %w", err)
	}

	r.setCell(f, sheet, "A1", fmt.Sprintf("%s — Offer of Employment", r.companyName))
	if err := f.MergeCell(sheet, "A1", "B1"); err != nil {
		return "", fmt.Errorf("failed to merge title cells: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", titleStyle); err != nil {
		return "", fmt.Errorf("failed to style title: %w", err)
	}

	rows := []struct {
		label string
		value string
	}{
		{"Reference", record.ID},
		{"Candidate", offer.CandidateName},
		{"Candidate ID", offer.CandidateID},
		{"Requisition", offer.JobRequisitionID},
		{"Position", offer.JobTitle},
		{"Department", offer.Department},
		{"Annual Salary", fmt.Sprintf("%s %.2f", offer.Currency, offer.Salary)},
		{"Start Date", formatDate(offer.StartDate)},
		{"Offer Valid Until", formatDate(offer.ExpiryDate)},
		{"Issued", time.Now().Format("2006-01-02")},
	}
	for i, row := range rows {
		labelCell := fmt.Sprintf("A%d", i+3)
		valueCell := fmt.Sprintf("B%d", i+3)
		r.setCell(f, sheet, labelCell, row.label)
		r.setCell(f, sheet, valueCell, row.value)
		if err := f.SetCellStyle(sheet, labelCell, labelCell, labelStyle); err != nil {
			return "", fmt.Errorf("failed to style label: %w", err)
		}
	}

	// Approval sign-off block below the offer terms
	base := len(rows) + 4
	r.setCell(f, sheet, fmt.Sprintf("A%d", base), "Approvals")
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", base), fmt.Sprintf("A%d", base), labelStyle); err != nil {
		return "", fmt.Errorf("failed to style approvals header: %w", err)
	}
	for i, approver := range record.ApprovalChain {
		line := fmt.Sprintf("%s (%s)", approver.Name, approver.Position)
		r.setCell(f, sheet, fmt.Sprintf("A%d", base+1+i), line)
		decision := approver.Status
		if approver.DecidedAt != nil {
			decision = fmt.Sprintf("%s on %s", approver.Status, approver.DecidedAt.Format("2006-01-02"))
		}
		r.setCell(f, sheet, fmt.Sprintf("B%d", base+1+i), decision)
	}

	if err := f.SetColWidth(sheet, "A", "A", 22); err != nil {
		return "", fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "B", 40); err != nil {
		return "", fmt.Errorf("failed to set column width: %w", err)
	}

	outputPath := filepath.Join(r.outputDir, fmt.Sprintf("offer_%s.xlsx", record.ID))
	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save offer letter: %w", err)
	}

	r.logger.Info("Offer letter rendered", zap.String("output_path", outputPath))
	return outputPath, nil
}

// setCell sets a cell value, logging rather than failing on error
func (r *OfferLetterRenderer) setCell(f *excelize.File, sheet, cell, value string) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		r.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
