package domain

// AnalyticsPeriod selects the lookback window for metrics.
type AnalyticsPeriod string

const (
	PeriodWeek        AnalyticsPeriod = "WEEK"
	PeriodMonth       AnalyticsPeriod = "MONTH"
	PeriodThreeMonths AnalyticsPeriod = "THREE_MONTHS"
	PeriodQuarter     AnalyticsPeriod = "QUARTER"
	PeriodSemester    AnalyticsPeriod = "SEMESTER"
	PeriodYear        AnalyticsPeriod = "YEAR"
)

// Metrics is the analytics aggregate returned by dashboard endpoints.
type Metrics struct {
	TotalTickets           int64            `json:"totalTickets"`
	ResolvedTickets        int64            `json:"resolvedTickets"`
	CriticalOpenTickets    int64            `json:"criticalOpenTickets"`
	ResolutionRate         float64          `json:"resolutionRate"`
	AvgResolutionTime      string           `json:"avgResolutionTime"`
	AvgFirstResponseTime   string           `json:"avgFirstResponseTime"`
	StatusDistribution     map[string]int64 `json:"statusDistribution"`
	PriorityDistribution   map[string]int64 `json:"priorityDistribution"`
	SentimentDistribution  map[string]int64 `json:"sentimentDistribution"`
	SentimentShift         map[string]int64 `json:"sentimentShift"`
	SLACompliance          float64          `json:"slaCompliance"`
	CSAT                   float64          `json:"csat"`
	FirstContactResolution float64          `json:"firstContactResolution"`
	SuggestionAcceptance   float64          `json:"suggestionAcceptance"`
	TriageAccuracy         float64          `json:"triageAccuracy"`
	Period                 AnalyticsPeriod  `json:"period"`
}
