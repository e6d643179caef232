// Package report renders the overtime report workbook handed to the
// requester after the evidence photos are collected.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Context carries the accumulated request data a report is rendered from
type Context struct {
	Name            string
	EmployeeID      string
	Date            string
	SupervisorName  string
	SupervisorTitle string
	StartTime       string
	EndTime         string
	Activity        string
}

// Config holds report generator configuration
type Config struct {
	TemplatePath string
	OutputDir    string
}

// Generator fills the overtime report template
type Generator struct {
	templatePath string
	outputDir    string
	logger       *zap.Logger
}

// photoCells anchor the three evidence photos in their fixed order: work
// result, on-site, approval screenshot.
var photoCells = []string{"B14", "B28", "B42"}

// NewGenerator creates a new report generator
func NewGenerator(cfg Config, logger *zap.Logger) (*Generator, error) {
	if cfg.TemplatePath == "" {
		return nil, fmt.Errorf("report template path is required")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report output directory: %w", err)
	}
	return &Generator{
		templatePath: cfg.TemplatePath,
		outputDir:    cfg.OutputDir,
		logger:       logger,
	}, nil
}

// Generate renders one overtime report and returns the written file path.
// Exactly three photo paths are expected, in collection order.
func (g *Generator) Generate(ctx context.Context, rc Context, photos []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	g.logger.Info("Generating overtime report",
		zap.String("employee", rc.Name),
		zap.Int("photos", len(photos)))

	f, err := excelize.OpenFile(g.templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to open report template: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("report template has no sheets")
	}
	sheet := sheets[0]

	g.setCell(f, sheet, "C4", rc.Name)
	g.setCell(f, sheet, "C5", rc.EmployeeID)
	g.setCell(f, sheet, "C6", rc.Date)
	g.setCell(f, sheet, "C7", rc.SupervisorName)
	g.setCell(f, sheet, "C8", rc.SupervisorTitle)
	g.setCell(f, sheet, "C9", rc.StartTime)
	g.setCell(f, sheet, "C10", rc.EndTime)
	g.setCell(f, sheet, "C11", DurationText(rc.StartTime, rc.EndTime))
	g.setCell(f, sheet, "C12", rc.Activity)

	for i, photo := range photos {
		if i >= len(photoCells) {
			break
		}
		if err := f.AddPicture(sheet, photoCells[i], photo, &excelize.GraphicOptions{AutoFit: true}); err != nil {
			g.logger.Warn("Failed to embed photo",
				zap.String("photo", photo),
				zap.String("cell", photoCells[i]),
				zap.Error(err))
		}
	}

	outputName := fmt.Sprintf("laporan_lembur_%s_%s.xlsx",
		rc.EmployeeID, time.Now().Format("20060102_150405"))
	outputPath := filepath.Join(g.outputDir, outputName)

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	g.logger.Info("Overtime report generated",
		zap.String("output_path", outputPath))

	return outputPath, nil
}

// setCell sets a cell value, logging instead of failing on template quirks
func (g *Generator) setCell(f *excelize.File, sheet, cell, value string) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		g.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}
