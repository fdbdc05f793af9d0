package telemetry

// Span names used for instrumentation.
const (
	SpanLayoutCompute = "layout.compute"
	SpanLayoutRoute   = "layout.route"
	SpanLayoutPersist = "layout.persist"
	SpanOutline       = "outline.compute"
)

// Span attribute keys.
const (
	AttrLayoutID   = "railmap.layout.id"
	AttrLayoutName = "railmap.layout.name"
	AttrRouteRef   = "railmap.route.ref"
	AttrFragments  = "railmap.route.fragments"
	AttrComponents = "railmap.route.components"
	AttrMarkers    = "railmap.markers"
	AttrStations   = "railmap.stations"
)
