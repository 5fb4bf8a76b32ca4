package dto

type KPIResponse struct {
	Mode       string  `json:"mode"`
	DelayPct   float64 `json:"delay_pct"`
	MoneySaved float64 `json:"money_saved"`
	Routes     int     `json:"routes"`
}
