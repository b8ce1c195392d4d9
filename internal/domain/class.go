package domain

// ABCClass is the value tier of an item
type ABCClass string

const (
	ClassA ABCClass = "A"
	ClassB ABCClass = "B"
	ClassC ABCClass = "C"
)

// Classes lists the tiers in chart order.
var Classes = []ABCClass{ClassA, ClassB, ClassC}

var classLabels = map[ABCClass]string{
	ClassA: "A (high value)",
	ClassB: "B (medium value)",
	ClassC: "C (low value)",
}

// Label returns the class with a short description, as shown on charts.
func (c ABCClass) Label() string {
	if label, ok := classLabels[c]; ok {
		return label
	}

	return "Unclassified"
}
