package normalize

import (
	"github.com/stonebridge-data/propetl/internal/coerce"
)

// Entity names one of the six normalized tables a source column belongs to.
type Entity string

const (
	EntityProperty  Entity = "property"
	EntityLeads     Entity = "leads"
	EntityValuation Entity = "valuation"
	EntityRehab     Entity = "rehab"
	EntityHOA       Entity = "hoa"
	EntityTaxes     Entity = "taxes"
)

// ColumnMapping binds one source column to one attribute of one entity, with
// the coercion applied on the way in. Boolean columns may carry their own
// truthy/falsy token sets; when nil, coerce.DefaultTruthy/DefaultFalsy apply.
type ColumnMapping struct {
	Source   string      // header name in the raw export
	Entity   Entity      // which of the six entities owns the column
	Field    string      // struct field name on the entity model
	Kind     coerce.Kind // coercion applied to the raw cell
	Truthy   coerce.TokenSet
	Falsy    coerce.TokenSet
	Required bool // absence of this column fails the row
}

// Domain-specific boolean vocabularies from the export. The flood column uses
// risk descriptors, highway/train use proximity words, and the utility
// columns encode municipal-vs-private service as a boolean.
var (
	floodTruthy  = coerce.NewTokenSet("minimal flood")
	floodFalsy   = coerce.NewTokenSet("flood zone")
	nearTruthy   = coerce.NewTokenSet("near")
	farFalsy     = coerce.NewTokenSet("far")
	waterTruthy  = coerce.NewTokenSet("city")
	waterFalsy   = coerce.NewTokenSet("well")
	sewageTruthy = coerce.NewTokenSet("city")
	sewageFalsy  = coerce.NewTokenSet("septic")
)

// Columns is the single source of truth for entity decomposition: every
// mapped source column appears exactly once, and anything not listed here is
// ignored by the normalizer. Ordering follows the export's column order per
// entity. A test asserts the table is non-overlapping and that every Field
// resolves to a real model field of the matching pointer type.
var Columns = []ColumnMapping{
	// property
	{Source: "Property_Title", Entity: EntityProperty, Field: "PropertyTitle", Kind: coerce.KindString, Required: true},
	{Source: "Address", Entity: EntityProperty, Field: "Address", Kind: coerce.KindString, Required: true},
	{Source: "Market", Entity: EntityProperty, Field: "Market", Kind: coerce.KindString},
	{Source: "Flood", Entity: EntityProperty, Field: "Flood", Kind: coerce.KindBool, Truthy: floodTruthy, Falsy: floodFalsy},
	{Source: "Street_Address", Entity: EntityProperty, Field: "StreetAddress", Kind: coerce.KindString},
	{Source: "City", Entity: EntityProperty, Field: "City", Kind: coerce.KindString},
	{Source: "State", Entity: EntityProperty, Field: "State", Kind: coerce.KindString},
	{Source: "Zip", Entity: EntityProperty, Field: "Zip", Kind: coerce.KindString},
	{Source: "Property_Type", Entity: EntityProperty, Field: "PropertyType", Kind: coerce.KindString},
	{Source: "Highway", Entity: EntityProperty, Field: "Highway", Kind: coerce.KindBool, Truthy: nearTruthy, Falsy: farFalsy},
	{Source: "Train", Entity: EntityProperty, Field: "Train", Kind: coerce.KindBool, Truthy: nearTruthy, Falsy: farFalsy},
	{Source: "Tax_Rate", Entity: EntityProperty, Field: "TaxRate", Kind: coerce.KindFloat},
	{Source: "SQFT_Basement", Entity: EntityProperty, Field: "SQFTBasement", Kind: coerce.KindInt},
	{Source: "HTW", Entity: EntityProperty, Field: "HTW", Kind: coerce.KindBool},
	{Source: "Pool", Entity: EntityProperty, Field: "Pool", Kind: coerce.KindBool},
	{Source: "Commercial", Entity: EntityProperty, Field: "Commercial", Kind: coerce.KindBool},
	{Source: "Water", Entity: EntityProperty, Field: "Water", Kind: coerce.KindBool, Truthy: waterTruthy, Falsy: waterFalsy},
	{Source: "Sewage", Entity: EntityProperty, Field: "Sewage", Kind: coerce.KindBool, Truthy: sewageTruthy, Falsy: sewageFalsy},
	{Source: "Year_Built", Entity: EntityProperty, Field: "YearBuilt", Kind: coerce.KindInt},
	{Source: "SQFT_MU", Entity: EntityProperty, Field: "SQFTMU", Kind: coerce.KindInt},
	{Source: "SQFT_Total", Entity: EntityProperty, Field: "SQFTTotal", Kind: coerce.KindInt},
	{Source: "Parking", Entity: EntityProperty, Field: "Parking", Kind: coerce.KindString},
	{Source: "Bed", Entity: EntityProperty, Field: "Bed", Kind: coerce.KindInt},
	{Source: "Bath", Entity: EntityProperty, Field: "Bath", Kind: coerce.KindInt},
	{Source: "BasementYesNo", Entity: EntityProperty, Field: "Basement", Kind: coerce.KindBool},
	{Source: "Layout", Entity: EntityProperty, Field: "Layout", Kind: coerce.KindString},
	{Source: "Rent_Restricted", Entity: EntityProperty, Field: "RentRestricted", Kind: coerce.KindBool},
	{Source: "Neighborhood_Rating", Entity: EntityProperty, Field: "NeighborhoodRating", Kind: coerce.KindInt},
	{Source: "Latitude", Entity: EntityProperty, Field: "Latitude", Kind: coerce.KindFloat},
	{Source: "Longitude", Entity: EntityProperty, Field: "Longitude", Kind: coerce.KindFloat},
	{Source: "Subdivision", Entity: EntityProperty, Field: "Subdivision", Kind: coerce.KindString},
	{Source: "School_Average", Entity: EntityProperty, Field: "SchoolAverage", Kind: coerce.KindFloat},

	// leads
	{Source: "Reviewed_Status", Entity: EntityLeads, Field: "ReviewedStatus", Kind: coerce.KindString},
	{Source: "Most_Recent_Status", Entity: EntityLeads, Field: "MostRecentStatus", Kind: coerce.KindString},
	{Source: "Source", Entity: EntityLeads, Field: "Source", Kind: coerce.KindString},
	{Source: "Occupancy", Entity: EntityLeads, Field: "Occupancy", Kind: coerce.KindString},
	{Source: "Net_Yield", Entity: EntityLeads, Field: "NetYield", Kind: coerce.KindFloat},
	{Source: "IRR", Entity: EntityLeads, Field: "IRR", Kind: coerce.KindFloat},
	{Source: "Selling_Reason", Entity: EntityLeads, Field: "SellingReason", Kind: coerce.KindString},
	{Source: "Seller_Retained_Broker", Entity: EntityLeads, Field: "SellerRetainedBroker", Kind: coerce.KindString},
	{Source: "Final_Reviewer", Entity: EntityLeads, Field: "FinalReviewer", Kind: coerce.KindString},

	// valuation
	{Source: "Previous_Rent", Entity: EntityValuation, Field: "PreviousRent", Kind: coerce.KindFloat},
	{Source: "List_Price", Entity: EntityValuation, Field: "ListPrice", Kind: coerce.KindFloat},
	{Source: "Zestimate", Entity: EntityValuation, Field: "Zestimate", Kind: coerce.KindFloat},
	{Source: "ARV", Entity: EntityValuation, Field: "ARV", Kind: coerce.KindFloat},
	{Source: "Expected_Rent", Entity: EntityValuation, Field: "ExpectedRent", Kind: coerce.KindFloat},
	{Source: "Rent_Zestimate", Entity: EntityValuation, Field: "RentZestimate", Kind: coerce.KindFloat},
	{Source: "Low_FMR", Entity: EntityValuation, Field: "LowFMR", Kind: coerce.KindFloat},
	{Source: "High_FMR", Entity: EntityValuation, Field: "HighFMR", Kind: coerce.KindFloat},
	{Source: "Redfin_Value", Entity: EntityValuation, Field: "RedfinValue", Kind: coerce.KindFloat},

	// rehab
	{Source: "Underwriting_Rehab", Entity: EntityRehab, Field: "UnderwritingRehab", Kind: coerce.KindFloat},
	{Source: "Rehab_Calculation", Entity: EntityRehab, Field: "RehabCalculation", Kind: coerce.KindFloat},
	{Source: "Paint", Entity: EntityRehab, Field: "Paint", Kind: coerce.KindBool},
	{Source: "Flooring_Flag", Entity: EntityRehab, Field: "Flooring", Kind: coerce.KindBool},
	{Source: "Foundation_Flag", Entity: EntityRehab, Field: "Foundation", Kind: coerce.KindBool},
	{Source: "Roof_Flag", Entity: EntityRehab, Field: "Roof", Kind: coerce.KindBool},
	{Source: "HVAC_Flag", Entity: EntityRehab, Field: "HVAC", Kind: coerce.KindBool},
	{Source: "Kitchen_Flag", Entity: EntityRehab, Field: "Kitchen", Kind: coerce.KindBool},
	{Source: "Bathroom_Flag", Entity: EntityRehab, Field: "Bathroom", Kind: coerce.KindBool},
	{Source: "Appliances_Flag", Entity: EntityRehab, Field: "Appliances", Kind: coerce.KindBool},
	{Source: "Windows_Flag", Entity: EntityRehab, Field: "Windows", Kind: coerce.KindBool},
	{Source: "Landscaping_Flag", Entity: EntityRehab, Field: "Landscaping", Kind: coerce.KindBool},
	{Source: "Trashout_Flag", Entity: EntityRehab, Field: "Trashout", Kind: coerce.KindBool},

	// hoa
	{Source: "HOA", Entity: EntityHOA, Field: "HOA", Kind: coerce.KindString},
	{Source: "HOA_Flag", Entity: EntityHOA, Field: "HOAFlag", Kind: coerce.KindBool},

	// taxes
	{Source: "Taxes", Entity: EntityTaxes, Field: "Amount", Kind: coerce.KindFloat},
}

// BoolVocab is the boolean vocabulary of one mapped source column.
type BoolVocab struct {
	Truthy coerce.TokenSet
	Falsy  coerce.TokenSet
}

// BoolVocabularies returns the boolean token sets declared in Columns, keyed
// by source column name. Callers that validate the same raw data the
// normalizer consumes use this to keep both halves of the pipeline agreeing
// on what counts as a boolean. Columns using the generic vocabulary are
// returned with nil sets so callers can apply their own defaults.
func BoolVocabularies() map[string]BoolVocab {
	out := make(map[string]BoolVocab)
	for _, m := range Columns {
		if m.Kind != coerce.KindBool {
			continue
		}
		out[m.Source] = BoolVocab{Truthy: m.Truthy, Falsy: m.Falsy}
	}
	return out
}
