package dto

// ReportQuery binds the overtime report period parameters. Dates use
// the 2006-01-02 layout.
type ReportQuery struct {
	From         string `form:"from" binding:"required"`
	To           string `form:"to" binding:"required"`
	TechnicianID *int64 `form:"technicianId"`
}
