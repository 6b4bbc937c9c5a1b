package categorize

// ExpenseCategory is an expense account category. The constant value is the
// Japanese display label written to the ledger.
type ExpenseCategory string

const (
	CategoryMeals         ExpenseCategory = "食費"
	CategoryTransport     ExpenseCategory = "交通費"
	CategoryCommunication ExpenseCategory = "通信費"
	CategoryAccommodation ExpenseCategory = "宿泊費"
	CategoryEntertainment ExpenseCategory = "接待費"
	CategorySupplies      ExpenseCategory = "消耗品費"
	CategoryUtilities     ExpenseCategory = "水道光熱費"
	CategoryRent          ExpenseCategory = "地代家賃"
	CategoryTaxes         ExpenseCategory = "租税公課"
	CategoryTravel        ExpenseCategory = "旅費"
	CategoryEquipment     ExpenseCategory = "備品費"
	CategoryMaintenance   ExpenseCategory = "修繕費"
	CategoryFuel          ExpenseCategory = "燃料費"
	CategoryInsurance     ExpenseCategory = "保険料"
	CategoryEducation     ExpenseCategory = "研修費"
	CategoryOther         ExpenseCategory = "その他"
)

// TaxClassification is the tax status attached to a category match.
type TaxClassification string

const (
	Taxable10   TaxClassification = "課税10%"
	Taxable8    TaxClassification = "課税8%"
	NonTaxable  TaxClassification = "非課税"
	TaxFree     TaxClassification = "免税"
	TaxUnknown  TaxClassification = "税区分不明"
)

// CategoryMatch is one categorization hypothesis for a receipt.
type CategoryMatch struct {
	Category          ExpenseCategory
	Confidence        float64
	MatchedKeywords   []string
	TaxClassification TaxClassification
	BusinessUnit      string
}

// CategoryInfo is the static display and accounting metadata for a category.
type CategoryInfo struct {
	EnglishName string
	Color       string
	Icon        string
	JournalCode string
}

// categoryInfoTable is the single lookup for category metadata. Journal
// entry codes follow the company's accounting system; 699 is the catch-all.
var categoryInfoTable = map[ExpenseCategory]CategoryInfo{
	CategoryMeals:         {EnglishName: "Meals", Color: "#FF6B6B", Icon: "🍽️", JournalCode: "611"},
	CategoryTransport:     {EnglishName: "Transport", Color: "#4ECDC4", Icon: "🚗", JournalCode: "612"},
	CategoryCommunication: {EnglishName: "Communication", Color: "#45B7D1", Icon: "📱", JournalCode: "613"},
	CategoryAccommodation: {EnglishName: "Accommodation", Color: "#96CEB4", Icon: "🏨", JournalCode: "614"},
	CategoryEntertainment: {EnglishName: "Entertainment", Color: "#FECA57", Icon: "🎉", JournalCode: "615"},
	CategorySupplies:      {EnglishName: "Supplies", Color: "#FF9FF3", Icon: "📎", JournalCode: "616"},
	CategoryUtilities:     {EnglishName: "Utilities", Color: "#54A0FF", Icon: "💡", JournalCode: "617"},
	CategoryRent:          {EnglishName: "Rent", Color: "#5F27CD", Icon: "🏢", JournalCode: "618"},
	CategoryTaxes:         {EnglishName: "Taxes", Color: "#00D2D3", Icon: "🏛️", JournalCode: "619"},
	CategoryTravel:        {EnglishName: "Travel", Color: "#FF9F43", Icon: "✈️", JournalCode: "620"},
	CategoryEquipment:     {EnglishName: "Equipment", Color: "#1DD1A1", Icon: "💻", JournalCode: "621"},
	CategoryMaintenance:   {EnglishName: "Maintenance", Color: "#F0932B", Icon: "🔧", JournalCode: "622"},
	CategoryFuel:          {EnglishName: "Fuel", Color: "#EB4D4B", Icon: "⛽", JournalCode: "623"},
	CategoryInsurance:     {EnglishName: "Insurance", Color: "#6C5CE7", Icon: "🛡️", JournalCode: "624"},
	CategoryEducation:     {EnglishName: "Education", Color: "#A29BFE", Icon: "📚", JournalCode: "625"},
	CategoryOther:         {EnglishName: "Other", Color: "#95A5A6", Icon: "📋", JournalCode: "699"},
}

// Info returns the display metadata for a category, falling back to the
// Other entry for unknown values.
func (c ExpenseCategory) Info() CategoryInfo {
	if info, ok := categoryInfoTable[c]; ok {
		return info
	}
	return categoryInfoTable[CategoryOther]
}

// JournalCode returns the accounting journal entry code for a category.
func (c ExpenseCategory) JournalCode() string {
	return c.Info().JournalCode
}
