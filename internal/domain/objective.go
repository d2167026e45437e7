package domain

// Objective is one entry in the primary/tie-breaker/additional-term
// vocabulary of §4.1.
type Objective string

const (
	ObjectiveDistance Objective = "distance"
	ObjectiveTime     Objective = "time"
	ObjectiveVehicles Objective = "vehicles"
	ObjectiveCost     Objective = "cost"
	ObjectiveMakespan Objective = "makespan"
	ObjectiveNone     Objective = "none"
)

// AdditionalTerm is a weighted penalty term added on top of the primary
// objective.
type AdditionalTerm string

const (
	TermTimeWindow      AdditionalTerm = "time_window"
	TermWaitTime        AdditionalTerm = "wait_time"
	TermWorkloadBalance AdditionalTerm = "workload_balance"
	TermOvertime        AdditionalTerm = "overtime"
	TermCO2Proxy        AdditionalTerm = "co2_proxy"
	TermFixedCost       AdditionalTerm = "fixed_cost"
	TermUtilization     AdditionalTerm = "utilization"
)

// ObjectiveSpec is the optimizer's full objective configuration: a primary
// objective, up to two ordered tie-breakers, and zero or more additional
// weighted terms.
type ObjectiveSpec struct {
	Primary         Objective
	TieBreaker1     Objective
	TieBreaker2     Objective
	AdditionalTerms []AdditionalTerm
}

// SearchOption mirrors the directions provider's searchOption vocabulary
// (§6).
type SearchOption string

const (
	SearchRecommended SearchOption = "recommended"
	SearchFreeRoads   SearchOption = "free-roads"
	SearchFastest     SearchOption = "fastest"
	SearchBeginner    SearchOption = "beginner"
	SearchTruck       SearchOption = "truck"
)

// searchOptionCodes is the bit-exact wire mapping required by §6.
var searchOptionCodes = map[SearchOption]int{
	SearchRecommended: 0,
	SearchFreeRoads:   1,
	SearchFastest:     2,
	SearchBeginner:    3,
	SearchTruck:       17,
}

func (s SearchOption) Code() (int, bool) {
	code, ok := searchOptionCodes[s]
	return code, ok
}

// VehicleClass mirrors the directions provider's carType vocabulary (§6).
type VehicleClass string

const (
	ClassPassenger   VehicleClass = "passenger"
	ClassMidVan      VehicleClass = "mid-van"
	ClassLargeVan    VehicleClass = "large-van"
	ClassLargeTruck  VehicleClass = "large-truck"
	ClassSpecialTruck VehicleClass = "special-truck"
)

var vehicleClassCodes = map[VehicleClass]int{
	ClassPassenger:    1,
	ClassMidVan:       2,
	ClassLargeVan:     3,
	ClassLargeTruck:   4,
	ClassSpecialTruck: 5,
}

func (c VehicleClass) Code() (int, bool) {
	code, ok := vehicleClassCodes[c]
	return code, ok
}
