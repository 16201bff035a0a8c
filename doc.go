// Package grove validates the layout of hierarchical trees: nested groups,
// datasets with scalar properties, and key/value attributes on both.
//
// A layout is declared once as an immutable tree of validation nodes, then
// checked against concrete trees any number of times:
//
//   - A stable outcome model via Outcome/Report (path, code, raw vs demoted result)
//   - Wildcard and named matching with OR-fold aggregation and occurrence constraints
//   - Read-only access to the instance tree through the TreeStore interface
//
// Design policy:
//   - Keep only public APIs in the root package; matching and aggregation are
//     implementation files of this package, helpers live under internal/.
//   - Place the fluent builder under dsl/, the persisted schema form under
//     descriptor/, the reference store under memstore/, and the CLI under cmd/grove.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	layout := dsl.Layout()
//	layout.Group("devices").Dataset("*", dsl.Rank(grove.Equal(1)))
//	layout.Attr("title", grove.Anything())
//	schema := layout.MustBuild()
//
//	report, err := schema.Validate(ctx, store, store.Root())
//	if report.Fails() > 0 {
//		report.Render(os.Stderr)
//	}
package grove
