package models

// The six entities produced by one normalization pass over the raw export.
// Property is the parent; the other five hang off it 1:1 via PropertyID.
// All nullable fields use pointers to distinguish zero values from NULL.

// Property is the root entity, one row per source record.
type Property struct {
	PropertyID         int64
	PropertyTitle      *string
	Address            *string
	Market             *string
	Flood              *bool
	StreetAddress      *string
	City               *string
	State              *string
	Zip                *string
	PropertyType       *string
	Highway            *bool
	Train              *bool
	TaxRate            *float64
	SQFTBasement       *int64
	HTW                *bool
	Pool               *bool
	Commercial         *bool
	Water              *bool
	Sewage             *bool
	YearBuilt          *int64
	SQFTMU             *int64
	SQFTTotal          *int64
	Parking            *string
	Bed                *int64
	Bath               *int64
	Basement           *bool
	Layout             *string
	RentRestricted     *bool
	NeighborhoodRating *int64
	Latitude           *float64
	Longitude          *float64
	Subdivision        *string
	SchoolAverage      *float64
}

// Lead holds acquisition-pipeline status and yield metrics for a property.
type Lead struct {
	PropertyID           int64
	ReviewedStatus       *string
	MostRecentStatus     *string
	Source               *string
	Occupancy            *string
	NetYield             *float64
	IRR                  *float64
	SellingReason        *string
	SellerRetainedBroker *string
	FinalReviewer        *string
}

// Valuation holds the numeric price and rent estimates for a property.
type Valuation struct {
	PropertyID    int64
	PreviousRent  *float64
	ListPrice     *float64
	Zestimate     *float64
	ARV           *float64
	ExpectedRent  *float64
	RentZestimate *float64
	LowFMR        *float64
	HighFMR       *float64
	RedfinValue   *float64
}

// Rehab holds the two rehab cost estimates plus per-component repair flags.
type Rehab struct {
	PropertyID        int64
	UnderwritingRehab *float64
	RehabCalculation  *float64
	Paint             *bool
	Flooring          *bool
	Foundation        *bool
	Roof              *bool
	HVAC              *bool
	Kitchen           *bool
	Bathroom          *bool
	Appliances        *bool
	Windows           *bool
	Landscaping       *bool
	Trashout          *bool
}

// HOA holds the association name (absent for most properties) and whether
// an HOA applies at all.
type HOA struct {
	PropertyID int64
	HOA        *string
	HOAFlag    *bool
}

// Tax holds the single annual tax amount for a property.
type Tax struct {
	PropertyID int64
	Amount     *float64
}
