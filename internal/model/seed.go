package model

// TrainingExample is one labeled review for classifier training. Label 1
// marks the fake class.
type TrainingExample struct {
	Text           string
	Label          int
	Verified       bool
	AccountAgeDays int
}

// seedExamples is the checked-in bootstrap fixture: a tiny synthetic dataset
// used to cold-start a working model when no persisted artifacts exist. It
// guarantees the service always produces some prediction, at the cost of poor
// initial accuracy. The fixture is versioned with the code and must not be
// regenerated ad hoc, so repeated bootstraps are reproducible.
var seedExamples = []TrainingExample{
	{Text: "great product", Label: 0, Verified: true, AccountAgeDays: 365},
	{Text: "awful scam", Label: 1, Verified: false, AccountAgeDays: 2},
	{Text: "works as expected", Label: 0, Verified: true, AccountAgeDays: 180},
	{Text: "fake review buy now", Label: 1, Verified: false, AccountAgeDays: 1},
	{Text: "legit purchase", Label: 0, Verified: true, AccountAgeDays: 730},
}

// SeedExamples returns a copy of the bootstrap fixture. The trainer appends
// labeled feedback to it when retraining.
func SeedExamples() []TrainingExample {
	out := make([]TrainingExample, len(seedExamples))
	copy(out, seedExamples)
	return out
}
