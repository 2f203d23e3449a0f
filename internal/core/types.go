package core

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// FieldType represents the expected data type for a survey column.
type FieldType int

const (
	FieldCategorical FieldType = iota
	FieldInteger
	FieldFloat
)

// Column identifies a survey attribute independent of how the source names it.
type Column string

const (
	ColSatisfaction          Column = "satisfaction"
	ColGender                Column = "gender"
	ColCustomerType          Column = "customer_type"
	ColClass                 Column = "travel_class"
	ColTypeOfTravel          Column = "type_of_travel"
	ColAge                   Column = "age"
	ColFlightDistance        Column = "flight_distance"
	ColSeatComfort           Column = "seat_comfort"
	ColFoodAndDrink          Column = "food_and_drink"
	ColInflightWifi          Column = "inflight_wifi"
	ColInflightEntertainment Column = "inflight_entertainment"
	ColLegRoom               Column = "leg_room"
	ColCleanliness           Column = "cleanliness"
	ColOnlineBoarding        Column = "online_boarding"
	ColDepartureDelay        Column = "departure_delay_minutes"
	ColArrivalDelay          Column = "arrival_delay_minutes"
)

// FieldSpec describes a single survey column.
type FieldSpec struct {
	Column   Column    // Stable identifier used in code and query parameters
	Name     string    // Column header name in the source file
	DBColumn string    // Column name when the source is a database table
	Label    string    // Display name
	Type     FieldType // Expected data type
	Required bool      // Column must exist in the source header
}

// Schema lists every column the dashboard reads, in display order.
var Schema = []FieldSpec{
	{Column: ColSatisfaction, Name: "satisfaction", DBColumn: "satisfaction", Label: "Satisfaction", Type: FieldCategorical, Required: true},
	{Column: ColGender, Name: "Gender", DBColumn: "gender", Label: "Gender", Type: FieldCategorical, Required: true},
	{Column: ColCustomerType, Name: "Customer Type", DBColumn: "customer_type", Label: "Customer Type", Type: FieldCategorical, Required: true},
	{Column: ColClass, Name: "Class", DBColumn: "class", Label: "Travel Class", Type: FieldCategorical, Required: true},
	{Column: ColTypeOfTravel, Name: "Type of Travel", DBColumn: "type_of_travel", Label: "Type of Travel", Type: FieldCategorical, Required: true},
	{Column: ColAge, Name: "Age", DBColumn: "age", Label: "Age", Type: FieldInteger, Required: true},
	{Column: ColFlightDistance, Name: "Flight Distance", DBColumn: "flight_distance", Label: "Flight Distance", Type: FieldInteger, Required: true},
	{Column: ColSeatComfort, Name: "Seat comfort", DBColumn: "seat_comfort", Label: "Seat comfort", Type: FieldInteger, Required: true},
	{Column: ColFoodAndDrink, Name: "Food and drink", DBColumn: "food_and_drink", Label: "Food and drink", Type: FieldInteger, Required: true},
	{Column: ColInflightWifi, Name: "Inflight wifi service", DBColumn: "inflight_wifi_service", Label: "Inflight wifi service", Type: FieldInteger, Required: true},
	{Column: ColInflightEntertainment, Name: "Inflight entertainment", DBColumn: "inflight_entertainment", Label: "Inflight entertainment", Type: FieldInteger, Required: true},
	{Column: ColLegRoom, Name: "Leg room service", DBColumn: "leg_room_service", Label: "Leg room service", Type: FieldInteger, Required: true},
	{Column: ColCleanliness, Name: "Cleanliness", DBColumn: "cleanliness", Label: "Cleanliness", Type: FieldInteger, Required: true},
	{Column: ColOnlineBoarding, Name: "Online boarding", DBColumn: "online_boarding", Label: "Online boarding", Type: FieldInteger, Required: true},
	{Column: ColDepartureDelay, Name: "Departure Delay in Minutes", DBColumn: "departure_delay_in_minutes", Label: "Departure Delay in Minutes", Type: FieldFloat, Required: true},
	{Column: ColArrivalDelay, Name: "Arrival Delay in Minutes", DBColumn: "arrival_delay_in_minutes", Label: "Arrival Delay in Minutes", Type: FieldFloat, Required: true},
}

// CategoricalColumns are the restricted-domain columns, in filter order.
var CategoricalColumns = []Column{
	ColSatisfaction,
	ColGender,
	ColCustomerType,
	ColClass,
	ColTypeOfTravel,
}

// RatingColumns are the service rating columns averaged by Summarize.
var RatingColumns = []Column{
	ColSeatComfort,
	ColFoodAndDrink,
	ColInflightWifi,
	ColInflightEntertainment,
	ColLegRoom,
	ColCleanliness,
	ColOnlineBoarding,
}

// SpecFor returns the FieldSpec for a column.
func SpecFor(col Column) (FieldSpec, bool) {
	for _, spec := range Schema {
		if spec.Column == col {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// LabelFor returns the display label for a column, falling back to its identifier.
func LabelFor(col Column) string {
	if spec, ok := SpecFor(col); ok {
		return spec.Label
	}
	return string(col)
}

// Record is one passenger survey response.
type Record struct {
	Satisfaction string `json:"satisfaction"`
	Gender       string `json:"gender"`
	CustomerType string `json:"customerType"`
	Class        string `json:"class"`
	TypeOfTravel string `json:"typeOfTravel"`

	Age            int `json:"age"`
	FlightDistance int `json:"flightDistance"`

	SeatComfort           int `json:"seatComfort"`
	FoodAndDrink          int `json:"foodAndDrink"`
	InflightWifi          int `json:"inflightWifi"`
	InflightEntertainment int `json:"inflightEntertainment"`
	LegRoom               int `json:"legRoom"`
	Cleanliness           int `json:"cleanliness"`
	OnlineBoarding        int `json:"onlineBoarding"`

	// Delays are nullable until the dataset has been cleaned.
	// After cleaning ArrivalDelay is always valid.
	DepartureDelay pgtype.Float8 `json:"departureDelay"`
	ArrivalDelay   pgtype.Float8 `json:"arrivalDelay"`
}

// Category returns the value of a categorical column.
func (r Record) Category(col Column) string {
	switch col {
	case ColSatisfaction:
		return r.Satisfaction
	case ColGender:
		return r.Gender
	case ColCustomerType:
		return r.CustomerType
	case ColClass:
		return r.Class
	case ColTypeOfTravel:
		return r.TypeOfTravel
	default:
		return ""
	}
}

// Int returns the value of an integer column.
func (r Record) Int(col Column) (int, bool) {
	switch col {
	case ColAge:
		return r.Age, true
	case ColFlightDistance:
		return r.FlightDistance, true
	case ColSeatComfort:
		return r.SeatComfort, true
	case ColFoodAndDrink:
		return r.FoodAndDrink, true
	case ColInflightWifi:
		return r.InflightWifi, true
	case ColInflightEntertainment:
		return r.InflightEntertainment, true
	case ColLegRoom:
		return r.LegRoom, true
	case ColCleanliness:
		return r.Cleanliness, true
	case ColOnlineBoarding:
		return r.OnlineBoarding, true
	default:
		return 0, false
	}
}

// Delay returns the value of a delay column.
func (r Record) Delay(col Column) pgtype.Float8 {
	switch col {
	case ColDepartureDelay:
		return r.DepartureDelay
	case ColArrivalDelay:
		return r.ArrivalDelay
	default:
		return pgtype.Float8{}
	}
}

// FieldPtr returns a pointer to the field holding col: *string for
// categorical columns, *int for integer columns, and *pgtype.Float8 for the
// delays. Loaders use it as a scan target. Returns nil for an unknown column.
func (r *Record) FieldPtr(col Column) any {
	switch col {
	case ColSatisfaction:
		return &r.Satisfaction
	case ColGender:
		return &r.Gender
	case ColCustomerType:
		return &r.CustomerType
	case ColClass:
		return &r.Class
	case ColTypeOfTravel:
		return &r.TypeOfTravel
	case ColAge:
		return &r.Age
	case ColFlightDistance:
		return &r.FlightDistance
	case ColSeatComfort:
		return &r.SeatComfort
	case ColFoodAndDrink:
		return &r.FoodAndDrink
	case ColInflightWifi:
		return &r.InflightWifi
	case ColInflightEntertainment:
		return &r.InflightEntertainment
	case ColLegRoom:
		return &r.LegRoom
	case ColCleanliness:
		return &r.Cleanliness
	case ColOnlineBoarding:
		return &r.OnlineBoarding
	case ColDepartureDelay:
		return &r.DepartureDelay
	case ColArrivalDelay:
		return &r.ArrivalDelay
	default:
		return nil
	}
}

// Float8 builds a valid pgtype.Float8.
func Float8(v float64) pgtype.Float8 {
	return pgtype.Float8{Float64: v, Valid: true}
}

// CleanReport describes what the cleaner did to a raw dataset.
type CleanReport struct {
	RowsIn        int            `json:"rowsIn"`
	RowsDropped   int            `json:"rowsDropped"`
	RowsOut       int            `json:"rowsOut"`
	DepartureCap  float64        `json:"departureCap"`
	ArrivalCap    float64        `json:"arrivalCap"`
	DomainSizes   map[Column]int `json:"domainSizes"`
	DepartureNull int            `json:"departureNull"`
}

// SchemaHeader returns the source header names of every schema column.
func SchemaHeader() []string {
	names := make([]string, len(Schema))
	for i, spec := range Schema {
		names[i] = spec.Name
	}
	return names
}
