package prompts

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	Topic string

	// Video
	Script     string
	SlideCount int

	// Quiz
	QuestionCount   int
	StrengthsCSV    string
	WeaknessesCSV   string
	PerformanceJSON string
}
