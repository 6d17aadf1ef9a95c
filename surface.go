package solver

import "time"

// Surface is the narrow slice of a browser the solver needs. Locators are
// XPath expressions evaluated against the current rendering context, which is
// either the page itself or the challenge frame after EnterFrame.
//
// Instance for a real browser lives in surface-rod.go. Tests run on a fake.
type Surface interface {

	// Wait until the element is visible and enabled, or the timeout passes.
	// A timeout is expected control flow, not an error
	WaitClickable(locator string, timeout time.Duration) bool

	// Wait until the element exists in the DOM, or the timeout passes
	WaitPresent(locator string, timeout time.Duration) bool

	// Immediate lookups, no waiting
	Find(locator string) (Element, error)
	FindAll(locator string) ([]Element, error)

	// Text content of the first matching element
	ReadText(locator string) (string, error)

	// Switch the rendering context into the iframe at locator / back to the page
	EnterFrame(locator string) error
	LeaveFrame() error

	// Evaluate a JS function in the current context, result coerced to string
	RunScript(source string) (string, error)

	// Browser user agent, captured once per session
	UserAgent() (string, error)

	// Full page HTML from the default context
	PageHTML() (string, error)
}

// Element is a handle to one located element.
type Element interface {
	Click() error

	// Click offset from the element center, moving the cursor there first
	ClickAt(offsetX, offsetY float64) error

	// Attribute value, nil when the attribute is absent
	Attribute(name string) (*string, error)

	// Child lookup by CSS selector
	Find(selector string) (Element, error)

	// Rendered size in page pixels
	Size() (width, height float64, err error)
}
