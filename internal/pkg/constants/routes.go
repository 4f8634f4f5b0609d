package constants

// Route constants shared by the router, controllers and redirects
const (
	RouteHome            = "/"
	RouteLogout          = "/logout"
	RouteDashboard       = "/dashboard"
	RouteGenerate        = "/generate-chapters"
	RouteChapterSet      = "/chapters/:uuid"
	RouteBillingCheckout = "/billing/checkout"
	RouteBillingPortal   = "/billing/portal"
	RouteStripeWebhook   = "/webhooks/stripe"
	RouteMetrics         = "/metrics"
	RouteMonitor         = "/monitor"
)
