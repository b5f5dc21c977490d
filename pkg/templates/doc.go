// Package templates turns a stored email template plus a variable context
// into rendered subject, HTML and text content.
//
// Templates are stored as versioned rows per (key, application) with at most
// one active version per pair; rendering resolves the application-specific
// template first and falls back to the global one for the key. Bodies use
// Go template syntax with a small helper set (formatDate, lower, upper,
// title, severityColor). Declared variables carry defaults that are injected
// when the caller omits them, and Timestamp/Environment are always present.
//
// Resolved templates are cached per (application, key) with a short TTL;
// create/update/activate/deactivate operations invalidate the affected
// entry. Validate renders a template against sample data and reports
// missing and unused variables as warnings.
package templates
