package domain

// Business is the slice of a tenant profile the scheduling core needs:
// its identity, its configured timezone, and the type-specific details
// that determine daily capacity.
type Business struct {
	ID       string
	Name     string
	Timezone string
	Details  BusinessDetails
}

// BusinessDetails is the tagged variant for type-specific capacity fields.
// One concrete type per business type; unknown types carry NoDetails.
type BusinessDetails interface {
	businessDetails()
}

type RestaurantDetails struct {
	SeatingCapacity *int
}

type RetailDetails struct {
	InventorySize *int
}

type ServiceDetails struct{}

// NoDetails stands in when the detail record is missing or the type is
// unrecognized; capacity falls back to the default.
type NoDetails struct{}

func (RestaurantDetails) businessDetails() {}
func (RetailDetails) businessDetails()     {}
func (ServiceDetails) businessDetails()    {}
func (NoDetails) businessDetails()         {}

// DefaultCapacity is used whenever a business type carries no usable
// capacity scalar. Capacity is advisory, so lookups degrade here rather
// than failing.
const DefaultCapacity = 50

const (
	retailCapacityDivisor = 10
	retailCapacityMin     = 10
	retailCapacityMax     = 200
)

// ResolveTotalCapacity derives the single daily capacity scalar for a
// business from its type details.
func ResolveTotalCapacity(d BusinessDetails) int {
	switch t := d.(type) {
	case RestaurantDetails:
		if t.SeatingCapacity != nil && *t.SeatingCapacity > 0 {
			return *t.SeatingCapacity
		}
		return DefaultCapacity
	case RetailDetails:
		if t.InventorySize != nil && *t.InventorySize > 0 {
			c := *t.InventorySize / retailCapacityDivisor
			if c < retailCapacityMin {
				return retailCapacityMin
			}
			if c > retailCapacityMax {
				return retailCapacityMax
			}
			return c
		}
		return DefaultCapacity
	case ServiceDetails:
		return DefaultCapacity
	default:
		return DefaultCapacity
	}
}
