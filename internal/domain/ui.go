package domain

import "strings"

// Tab is a dashboard page.
type Tab string

const (
	TabOrderedSpend        Tab = "Ordered Spend"
	TabSupplierPerformance Tab = "Supplier Performance"
	TabOrderedSpendIBCS    Tab = "Ordered Spend IBCS"
)

// Tabs lists the pages in navigation order.
var Tabs = []Tab{TabOrderedSpend, TabSupplierPerformance, TabOrderedSpendIBCS}

var tabCodes = map[string]Tab{
	"ordered spend":        TabOrderedSpend,
	"os":                   TabOrderedSpend,
	"supplier performance": TabSupplierPerformance,
	"sp":                   TabSupplierPerformance,
	"ordered spend ibcs":   TabOrderedSpendIBCS,
	"os_ibcs":              TabOrderedSpendIBCS,
	"ibcs":                 TabOrderedSpendIBCS,
}

// Code is the short identifier of the tab used in URLs.
func (t Tab) Code() string {
	switch t {
	case TabOrderedSpend:
		return "os"
	case TabSupplierPerformance:
		return "sp"
	case TabOrderedSpendIBCS:
		return "os_ibcs"
	default:
		return ""
	}
}

// ParseTab accepts a tab label or its short code (case-insensitive).
func ParseTab(label string) (Tab, bool) {
	tab, ok := tabCodes[strings.ToLower(strings.TrimSpace(label))]
	return tab, ok
}

// ViewToggle is the label of the spend/count switch.
type ViewToggle string

const (
	ViewSpendAmount    ViewToggle = "Spend Amount"
	ViewNumberOfOrders ViewToggle = "Number of Orders"
)

var viewCodes = map[string]ViewToggle{
	"spend amount":     ViewSpendAmount,
	"spend":            ViewSpendAmount,
	"number of orders": ViewNumberOfOrders,
	"orders":           ViewNumberOfOrders,
	"count":            ViewNumberOfOrders,
}

// ParseView accepts a toggle label or a short alias (case-insensitive).
func ParseView(label string) (ViewToggle, bool) {
	view, ok := viewCodes[strings.ToLower(strings.TrimSpace(label))]
	return view, ok
}

// ShowsOrderCount reports whether the toggle selects the order count.
func (v ViewToggle) ShowsOrderCount() bool {
	return v == ViewNumberOfOrders
}

// UIState is the dashboard state owned by the client.
type UIState struct {
	Tab     Tab            `json:"tab"`
	View    ViewToggle     `json:"view"`
	Filters FilterCriteria `json:"filters"`
}

// Normalize fills in the default tab and view.
func (s UIState) Normalize() UIState {
	if s.Tab == "" {
		s.Tab = TabOrderedSpend
	}
	if s.View == "" {
		s.View = ViewSpendAmount
	}
	return s
}
