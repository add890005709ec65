package publisher

// StageName is a strongly-typed identifier for a publish stage. All
// canonical stages are declared as constants here for compile-time safety.
type StageName string

// Canonical stage names, in pipeline order.
const (
	StageCheckout      StageName = "checkout"
	StageRender        StageName = "render"
	StageLoadTree      StageName = "load_tree"
	StageResolveParams StageName = "resolve_params"
	StageSync          StageName = "sync"
	StageCheckLinks    StageName = "check_links"
	StageInvalidate    StageName = "invalidate"
)
