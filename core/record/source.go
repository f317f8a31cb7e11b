package record

import "github.com/leofalp/pitchlens/core/recovery"

// Source tells where a field value came from.
type Source string

const (
	SourceExtracted Source = "extracted"
	SourceRepaired  Source = "repaired"
	SourceScavenged Source = "scavenged"
	SourceDefault   Source = "default"
)

// SourceForStage maps the recovery stage that produced a mapping to the
// provenance of the values taken from it.
func SourceForStage(stage recovery.Stage) Source {
	switch stage {
	case recovery.StageExtract:
		return SourceExtracted
	case recovery.StageRepair, recovery.StageObjectSpan, recovery.StageLibraryRepair:
		return SourceRepaired
	case recovery.StageScavenge:
		return SourceScavenged
	default:
		return SourceDefault
	}
}
