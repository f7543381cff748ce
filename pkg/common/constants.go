package common

const (
	// RecordsTable is the single table holding canonical records.
	RecordsTable = "records"

	AnalysisLockKey = "news-insight:lock:analysis"

	HeaderSelfTest = "X-Self-Test"

	DashboardRecordLimit = 200
)

// Pipeline run kinds.
const (
	RunKindIngest   = "ingest"
	RunKindAnalysis = "analysis"
)

// Pipeline run triggers.
const (
	TriggerHTTP     = "http"
	TriggerSchedule = "schedule"
	TriggerCLI      = "cli"
)
