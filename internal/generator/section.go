package generator

// Section priorities. Higher bands are admitted first under a budget.
const (
	PriorityMetadata      uint8 = 10
	PriorityStructure     uint8 = 9
	PriorityDocumentation uint8 = 8
	PriorityAnalysis      uint8 = 6
	PrioritySource        uint8 = 3
)

// Section is a titled Markdown fragment admitted or rejected as a unit.
// Only the prioritizer shortens Body, and it sets Truncated when it does.
type Section struct {
	Title     string
	Body      string
	Priority  uint8
	Truncated bool
}
