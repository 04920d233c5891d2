// Package internaldefs holds the metric naming shared by every exporter.
// Exporters must agree on names so dashboards survive a backend swap.
package internaldefs
