// README: Pricing rules document, booking input and itemized fare output.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"cabfare/internal/rules"
)

type AmountType string

const (
	AmountFixed      AmountType = "fixed"
	AmountPercentage AmountType = "percentage"
)

type ActionType string

const (
	ActionAdd      ActionType = "add"
	ActionMultiply ActionType = "multiply"
	ActionSet      ActionType = "set"
)

type Category string

const (
	CategoryBase      Category = "base"
	CategoryModifier  Category = "modifier"
	CategoryFee       Category = "fee"
	CategorySurcharge Category = "surcharge"
	CategoryDiscount  Category = "discount"
)

// PricingRules is the versioned rules document. It is shared read-only across
// calculations and never mutated by the engine.
type PricingRules struct {
	Version              string                     `json:"version"`
	TripTypes            map[string]TripTypeConfig  `json:"tripTypes"`
	VehicleModifiers     map[string]VehicleModifier `json:"vehicleModifiers"`
	PassengerFees        PassengerFees              `json:"passengerFees"`
	ExtraFees            ExtraFees                  `json:"extraFees"`
	SpecialRequests      map[string]SpecialRequest  `json:"specialRequests"`
	ConditionalModifiers []ConditionalModifier      `json:"conditionalModifiers"`
}

type TripTypeConfig struct {
	Enabled     bool            `json:"enabled"`
	Name        string          `json:"name"`
	BaseFee     decimal.Decimal `json:"baseFee"`
	MinimumFare decimal.Decimal `json:"minimumFare"`
	// DistanceUnit is the display name of one billing unit, e.g. "0.1 mi".
	DistanceUnit string `json:"distanceUnit"`
	// DistancePerUnit is the number of yards in one billing unit.
	DistancePerUnit float64        `json:"distancePerUnit"`
	DistanceTiers   []DistanceTier `json:"distanceTiers"`
	Surcharges      []Surcharge    `json:"surcharges"`
	WaitTimeRate    WaitTimeRate   `json:"waitTimeRate"`
}

// DistanceTier covers yards in [From, To). A nil To is unbounded.
type DistanceTier struct {
	From        float64         `json:"from"`
	To          *float64        `json:"to"`
	RatePerUnit decimal.Decimal `json:"ratePerUnit"`
}

type Surcharge struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Type   AmountType      `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	// Conditions are matched by exact equality against the booking's airport
	// flags of the same name (isAirport, pickupIsAirport, dropoffIsAirport).
	Conditions map[string]bool `json:"conditions,omitempty"`
}

type WaitTimeRate struct {
	Enabled     bool            `json:"enabled"`
	RatePerHour decimal.Decimal `json:"ratePerHour"`
	FreeMinutes float64         `json:"freeMinutes"`
}

type VehicleModifier struct {
	Name          string          `json:"name"`
	Type          AmountType      `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	MaxPassengers int             `json:"maxPassengers"`
}

type PassengerFees struct {
	BasePassengers         int             `json:"basePassengers"`
	AdditionalPassengerFee decimal.Decimal `json:"additionalPassengerFee"`
}

type ExtraFees struct {
	CarSeats map[string]CarSeatFee `json:"carSeats"`
	Luggage  LuggageFee            `json:"luggage"`
}

type CarSeatFee struct {
	Name            string          `json:"name"`
	Enabled         bool            `json:"enabled"`
	Fee             decimal.Decimal `json:"fee"`
	RequiredVehicle string          `json:"requiredVehicle,omitempty"`
}

type LuggageFee struct {
	Enabled              bool            `json:"enabled"`
	BaseLuggage          int             `json:"baseLuggage"`
	AdditionalLuggageFee decimal.Decimal `json:"additionalLuggageFee"`
}

type SpecialRequest struct {
	Name            string          `json:"name"`
	Enabled         bool            `json:"enabled"`
	Fee             decimal.Decimal `json:"fee"`
	RequiredVehicle string          `json:"requiredVehicle,omitempty"`
}

type ConditionalModifier struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Enabled    bool              `json:"enabled"`
	Priority   int               `json:"priority"`
	Logic      rules.Logic       `json:"logic"`
	Conditions []rules.Condition `json:"conditions"`
	Action     ModifierAction    `json:"action"`
}

// ModifierAction is a tagged variant: Amount is read by add, Percentage by
// multiply and FixedAmount by set.
type ModifierAction struct {
	Type        ActionType      `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Percentage  decimal.Decimal `json:"percentage"`
	FixedAmount decimal.Decimal `json:"fixedAmount"`
}

// BookingDetails describes one trip to be priced. Distance is in yards.
type BookingDetails struct {
	TripType         string         `json:"trip_type"`
	Distance         float64        `json:"distance"`
	VehicleType      string         `json:"vehicle_type"`
	PassengerCount   int            `json:"passenger_count"`
	LuggageCount     int            `json:"luggage_count"`
	CarSeats         map[string]int `json:"car_seats,omitempty"`
	SpecialRequests  []string       `json:"special_requests,omitempty"`
	WaitTimeMinutes  *float64       `json:"wait_time_minutes,omitempty"`
	IsAirport        bool           `json:"is_airport"`
	PickupIsAirport  bool           `json:"pickup_is_airport"`
	DropoffIsAirport bool           `json:"dropoff_is_airport"`
	PickupTime       time.Time      `json:"pickup_time"`

	// Read only by conditional modifiers.
	Zone             string `json:"zone,omitempty"`
	AccountType      string `json:"account_type,omitempty"`
	IsRepeatCustomer *bool  `json:"is_repeat_customer,omitempty"`
	Weather          string `json:"weather,omitempty"`
	DemandLevel      string `json:"demand_level,omitempty"`
	IsHoliday        *bool  `json:"is_holiday,omitempty"`
	NearbyEvent      string `json:"nearby_event,omitempty"`
}

type LineItem struct {
	Label    string          `json:"label"`
	Amount   decimal.Decimal `json:"amount"`
	Category Category        `json:"category"`
}

type Subtotals struct {
	BaseFare           decimal.Decimal `json:"base_fare"`
	DistanceFare       decimal.Decimal `json:"distance_fare"`
	VehicleUpgrade     decimal.Decimal `json:"vehicle_upgrade"`
	PassengerFees      decimal.Decimal `json:"passenger_fees"`
	CarSeatFees        decimal.Decimal `json:"car_seat_fees"`
	LuggageFees        decimal.Decimal `json:"luggage_fees"`
	SpecialRequestFees decimal.Decimal `json:"special_request_fees"`
	Surcharges         decimal.Decimal `json:"surcharges"`
	WaitTimeFees       decimal.Decimal `json:"wait_time_fees"`
	Adjustments        decimal.Decimal `json:"adjustments"`
}

// FareBreakdown lists line items in computation order. Subtotal is the sum of
// every line item except the trailing minimum-fare adjustment.
type FareBreakdown struct {
	RulesVersion     string          `json:"rules_version,omitempty"`
	LineItems        []LineItem      `json:"line_items"`
	Subtotals        Subtotals       `json:"subtotals"`
	AppliedModifiers []string        `json:"applied_modifiers,omitempty"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	MinimumApplied   bool            `json:"minimum_applied"`
	Total            int64           `json:"total"`
}
