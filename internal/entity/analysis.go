package entity

// SeoRecommendation is one actionable item of an SEO report.
type SeoRecommendation struct {
	Priority string `json:"priority"`
	Text     string `json:"text"`
}

// SeoReport is the structured result of an SEO audit.
type SeoReport struct {
	URL             string              `json:"url"`
	Score           float64             `json:"score"`
	Title           string              `json:"title"`
	Recommendations []SeoRecommendation `json:"recommendations"`
	Keywords        []string            `json:"keywords"`
}

// SpeedReport mirrors a PageSpeed-style audit.
type SpeedReport struct {
	URL              string   `json:"url"`
	PerformanceScore float64  `json:"performanceScore"`
	FCP              string   `json:"fcp"`
	LCP              string   `json:"lcp"`
	CLS              string   `json:"cls"`
	Recommendations  []string `json:"recommendations"`
}

// BudgetItem is one recommended purchase of a grant-optimized budget plan.
type BudgetItem struct {
	Category      string  `json:"category"`
	Item          string  `json:"item"`
	EstimatedCost float64 `json:"estimatedCost"`
	IsEligible    bool    `json:"isEligible"`
	Reason        string  `json:"reason"`
}
