package Controllers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gweakliem/crane-beta/Models"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gin-gonic/gin"
)

type worksheetReportRow struct {
	ClientName    string     `json:"client_name"`
	TherapistName string     `json:"therapist_name"`
	Title         string     `json:"title"`
	Status        string     `json:"status"`
	AssignedAt    time.Time  `json:"assigned_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

// ExportWorksheetsExcel writes every worksheet instance into a spreadsheet
// for the admin dashboard download.
func ExportWorksheetsExcel(c *gin.Context) {
	var rows []worksheetReportRow

	err := Models.DB.Model(&Models.WorksheetInstance{}).
		Select("clients.name as client_name, users.name as therapist_name, worksheet_templates.title as title, worksheet_instances.status, worksheet_instances.assigned_at, worksheet_instances.completed_at").
		Joins("JOIN clients ON clients.id = worksheet_instances.client_id").
		Joins("JOIN users ON users.id = worksheet_instances.therapist_id").
		Joins("JOIN worksheet_templates ON worksheet_templates.id = worksheet_instances.template_id").
		Order("worksheet_instances.assigned_at").
		Scan(&rows).Error
	if err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch worksheets"})
		return
	}

	headers := map[string]string{
		"A1": "Client",
		"B1": "Therapist",
		"C1": "Worksheet",
		"D1": "Status",
		"E1": "Assigned",
		"F1": "Completed",
	}
	file := excelize.NewFile()
	sheet := "Worksheets"
	file.NewSheet(sheet)
	file.DeleteSheet("Sheet1")
	for k, v := range headers {
		file.SetCellValue(sheet, k, v)
	}

	for i := 0; i < len(rows); i++ {
		appendWorksheetRow(sheet, file, i, rows)
	}

	filename := "./WorksheetReport.xlsx"
	if err := file.SaveAs(filename); err != nil {
		log.Println(err)
	}
	c.File(filename)
}

func appendWorksheetRow(sheet string, file *excelize.File, index int, rows []worksheetReportRow) {
	rowCount := index + 2
	file.SetCellValue(sheet, fmt.Sprintf("A%v", rowCount), rows[index].ClientName)
	file.SetCellValue(sheet, fmt.Sprintf("B%v", rowCount), rows[index].TherapistName)
	file.SetCellValue(sheet, fmt.Sprintf("C%v", rowCount), rows[index].Title)
	file.SetCellValue(sheet, fmt.Sprintf("D%v", rowCount), rows[index].Status)
	file.SetCellValue(sheet, fmt.Sprintf("E%v", rowCount), rows[index].AssignedAt.Format("2006-01-02 15:04"))
	if rows[index].CompletedAt != nil {
		file.SetCellValue(sheet, fmt.Sprintf("F%v", rowCount), rows[index].CompletedAt.Format("2006-01-02 15:04"))
	}
}
