package jobs

type JobType string

const (
	JobLowStockAlert JobType = "low_stock_alert"
)

// check to see if the job type is a known constant

func (t JobType) IsValid() bool {
	switch t {
	case JobLowStockAlert:
		return true
	default:
		return false
	}
}
