package dto

// CreateHolidayRequest adds one day to the holiday calendar.
type CreateHolidayRequest struct {
	Day   string `json:"day" binding:"required"`
	Label string `json:"label" binding:"required"`
}
