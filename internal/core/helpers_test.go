package core

import (
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"
)

// quietCleaner discards progress output.
func quietCleaner() *Cleaner {
	return NewCleaner(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// rec builds a record with the fields most tests care about; the remaining
// categorical fields get fixed values and ratings mirror seat comfort.
func rec(satisfaction string, age, distance, seat int, departure, arrival pgtype.Float8) Record {
	return Record{
		Satisfaction:          satisfaction,
		Gender:                "Female",
		CustomerType:          "Loyal Customer",
		Class:                 "Eco",
		TypeOfTravel:          "Business travel",
		Age:                   age,
		FlightDistance:        distance,
		SeatComfort:           seat,
		FoodAndDrink:          seat,
		InflightWifi:          seat,
		InflightEntertainment: seat,
		LegRoom:               seat,
		Cleanliness:           seat,
		OnlineBoarding:        seat,
		DepartureDelay:        departure,
		ArrivalDelay:          arrival,
	}
}

var null = pgtype.Float8{}

// rawFive is five rows, one with a missing arrival delay.
func rawFive() *Dataset {
	return NewDataset(SchemaHeader(), []Record{
		rec("satisfied", 25, 500, 3, Float8(0), Float8(0)),
		rec("dissatisfied", 40, 1200, 2, Float8(10), Float8(12)),
		rec("satisfied", 33, 800, 4, Float8(5), null),
		rec("satisfied", 58, 3000, 5, Float8(0), Float8(3)),
		rec("dissatisfied", 71, 150, 1, Float8(120), Float8(115)),
	})
}

// allSpec admits every value observed in d over the given ranges.
func allSpec(d *Dataset, age, distance, seat IntRange) FilterSpec {
	spec := FilterSpec{Age: age, Distance: distance, SeatComfort: seat}
	for _, col := range CategoricalColumns {
		spec = spec.WithSet(col, NewValueSet(d.Domain(col)...))
	}
	return spec
}

func mustClean(d *Dataset) *Dataset {
	cleaned, _, err := quietCleaner().Clean(d)
	if err != nil {
		panic(err)
	}
	return cleaned
}
