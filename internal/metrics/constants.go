package metrics

// Label names
const (
	LabelMethod  = "method"
	LabelRoute   = "route"
	LabelStatus  = "status"
	LabelSource  = "source"
	LabelMatched = "matched"
	LabelType    = "type"
	LabelKind    = "kind"
	LabelBackend = "backend"
)

// Label values
const (
	SourceManual = "manual"
	SourceAuto   = "auto"

	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// StepLatencyBuckets covers a 60 Hz frame budget (~16ms) with headroom below it.
var StepLatencyBuckets = []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.05}
