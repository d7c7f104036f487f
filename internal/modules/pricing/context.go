// README: Flat evaluation context built from a booking for conditional modifiers.
package pricing

import "cabfare/internal/rules"

// Context fields available to conditional modifier conditions.
const (
	FieldHour             rules.Field = "hour"
	FieldMinute           rules.Field = "minute"
	FieldDayOfWeek        rules.Field = "dayOfWeek"
	FieldMonth            rules.Field = "month"
	FieldYear             rules.Field = "year"
	FieldDate             rules.Field = "date"
	FieldTime             rules.Field = "time"
	FieldTripType         rules.Field = "tripType"
	FieldVehicleType      rules.Field = "vehicleType"
	FieldDistance         rules.Field = "distance"
	FieldPassengerCount   rules.Field = "passengerCount"
	FieldLuggageCount     rules.Field = "luggageCount"
	FieldWaitTimeMinutes  rules.Field = "waitTimeMinutes"
	FieldIsAirport        rules.Field = "isAirport"
	FieldPickupIsAirport  rules.Field = "pickupIsAirport"
	FieldDropoffIsAirport rules.Field = "dropoffIsAirport"
	FieldZone             rules.Field = "zone"
	FieldAccountType      rules.Field = "accountType"
	FieldIsRepeatCustomer rules.Field = "isRepeatCustomer"
	FieldWeather          rules.Field = "weather"
	FieldDemandLevel      rules.Field = "demandLevel"
	FieldIsHoliday        rules.Field = "isHoliday"
	FieldNearbyEvent      rules.Field = "nearbyEvent"
)

var contextFields = map[rules.Field]struct{}{
	FieldHour: {}, FieldMinute: {}, FieldDayOfWeek: {}, FieldMonth: {}, FieldYear: {},
	FieldDate: {}, FieldTime: {}, FieldTripType: {}, FieldVehicleType: {}, FieldDistance: {},
	FieldPassengerCount: {}, FieldLuggageCount: {}, FieldWaitTimeMinutes: {},
	FieldIsAirport: {}, FieldPickupIsAirport: {}, FieldDropoffIsAirport: {},
	FieldZone: {}, FieldAccountType: {}, FieldIsRepeatCustomer: {}, FieldWeather: {},
	FieldDemandLevel: {}, FieldIsHoliday: {}, FieldNearbyEvent: {},
}

// KnownField reports whether f is produced by BookingContext.
func KnownField(f rules.Field) bool {
	_, ok := contextFields[f]
	return ok
}

// BookingContext flattens a booking and its pickup time. Time fields use the
// pickup time's own location; dayOfWeek is 0 for Sunday and month is 1-12.
// Optional fields are present only when the booking sets them.
func BookingContext(b BookingDetails) rules.Context {
	t := b.PickupTime
	ctx := rules.Context{
		FieldHour:             rules.Int(t.Hour()),
		FieldMinute:           rules.Int(t.Minute()),
		FieldDayOfWeek:        rules.Int(int(t.Weekday())),
		FieldMonth:            rules.Int(int(t.Month())),
		FieldYear:             rules.Int(t.Year()),
		FieldDate:             rules.String(t.Format("2006-01-02")),
		FieldTime:             rules.String(t.Format("15:04")),
		FieldTripType:         rules.String(b.TripType),
		FieldVehicleType:      rules.String(b.VehicleType),
		FieldDistance:         rules.Number(b.Distance),
		FieldPassengerCount:   rules.Int(b.PassengerCount),
		FieldLuggageCount:     rules.Int(b.LuggageCount),
		FieldIsAirport:        rules.Bool(b.IsAirport),
		FieldPickupIsAirport:  rules.Bool(b.PickupIsAirport),
		FieldDropoffIsAirport: rules.Bool(b.DropoffIsAirport),
	}
	if b.WaitTimeMinutes != nil {
		ctx[FieldWaitTimeMinutes] = rules.Number(*b.WaitTimeMinutes)
	}
	setString(ctx, FieldZone, b.Zone)
	setString(ctx, FieldAccountType, b.AccountType)
	setString(ctx, FieldWeather, b.Weather)
	setString(ctx, FieldDemandLevel, b.DemandLevel)
	setString(ctx, FieldNearbyEvent, b.NearbyEvent)
	if b.IsRepeatCustomer != nil {
		ctx[FieldIsRepeatCustomer] = rules.Bool(*b.IsRepeatCustomer)
	}
	if b.IsHoliday != nil {
		ctx[FieldIsHoliday] = rules.Bool(*b.IsHoliday)
	}
	return ctx
}

func setString(ctx rules.Context, f rules.Field, v string) {
	if v != "" {
		ctx[f] = rules.String(v)
	}
}

// airportFlag resolves a surcharge condition key against the booking.
func (b BookingDetails) airportFlag(key string) (bool, bool) {
	switch rules.Field(key) {
	case FieldIsAirport:
		return b.IsAirport, true
	case FieldPickupIsAirport:
		return b.PickupIsAirport, true
	case FieldDropoffIsAirport:
		return b.DropoffIsAirport, true
	default:
		return false, false
	}
}
