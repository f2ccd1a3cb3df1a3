package quoting

// ServiceCategory classifies a picking service line.
type ServiceCategory string

const (
	CategoryAssembly           ServiceCategory = "assembly"
	CategoryPalletizing        ServiceCategory = "palletizing"
	CategoryLabeling           ServiceCategory = "labeling"
	CategoryDomeSticking       ServiceCategory = "dome_sticking"
	CategoryAdditionalAssembly ServiceCategory = "additional_assembly"
	CategoryQualityControl     ServiceCategory = "quality_control"
	CategoryShavings           ServiceCategory = "shavings"
	CategoryBag                ServiceCategory = "bag"
	CategoryBubbleWrap         ServiceCategory = "bubble_wrap"
)

// ServiceCategories lists every category in display order.
var ServiceCategories = []ServiceCategory{
	CategoryAssembly,
	CategoryPalletizing,
	CategoryLabeling,
	CategoryDomeSticking,
	CategoryAdditionalAssembly,
	CategoryQualityControl,
	CategoryShavings,
	CategoryBag,
	CategoryBubbleWrap,
}

var categoryLabels = map[ServiceCategory]string{
	CategoryAssembly:           "Armado",
	CategoryPalletizing:        "Palletizado",
	CategoryLabeling:           "Etiquetado",
	CategoryDomeSticking:       "Pegado de domes",
	CategoryAdditionalAssembly: "Armado adicional",
	CategoryQualityControl:     "Control de calidad",
	CategoryShavings:           "Viruta",
	CategoryBag:                "Bolsa",
	CategoryBubbleWrap:         "Film burbuja",
}

// Valid reports whether c is a known category.
func (c ServiceCategory) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label is the document label of the category.
func (c ServiceCategory) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}
