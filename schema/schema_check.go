package schema

// CheckResult holds the results of a regression check.
type CheckResult struct {
	Passed        bool
	HasBaseline   bool
	MaxRegression float64 // Percent slowdown tolerated before a significant change fails
	Regressions   []CheckRegression
	TotalTests    int
}

// CheckRegression is a metric that became significantly slower.
type CheckRegression struct {
	Test          string
	Metric        MetricName
	PercentChange float64
	Alpha         float64
}
