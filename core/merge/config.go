package merge

// Config holds the merge configuration surface.
//
// Both toggles are accepted and forwarded to the operation but are
// currently without effect; this is a documented limitation of the
// merge engine, not something callers should work around.
type Config struct {
	// SelectionGroups toggles merging of selection groupings.
	SelectionGroups bool `mapstructure:"selection_groups" default:"false"`
	// Layers toggles merging of layer memberships.
	Layers bool `mapstructure:"layers" default:"false"`
}

// Configure applies the configuration toggles to an operation.
func (c Config) Configure(op *Operation) {
	op.SetMergeSelectionGroups(c.SelectionGroups)
	op.SetMergeLayers(c.Layers)
}
