package core

// View is the result of one filter + aggregate pass.
type View struct {
	Spec     FilterSpec
	Filtered *Dataset
	Summary  SummaryView
	Total    int
}

// Render filters d with spec and summarizes the result. It is pure: the
// presentation layer calls it on every input event and discards the View once
// displayed.
func Render(d *Dataset, spec FilterSpec) (*View, error) {
	filtered, err := Filter(d, spec)
	if err != nil {
		return nil, err
	}
	return &View{
		Spec:     spec,
		Filtered: filtered,
		Summary:  Summarize(filtered),
		Total:    d.Len(),
	}, nil
}
