package enums

// ExpectationStatus tracks a manager's time-boxed return obligation.
type ExpectationStatus string

const (
	ExpectationStatusOpen      ExpectationStatus = "open"
	ExpectationStatusFulfilled ExpectationStatus = "fulfilled"
	ExpectationStatusExpired   ExpectationStatus = "expired"
)

// ExpectationKind names what the manager withdrew and therefore what must come back.
type ExpectationKind string

const (
	// ExpectationKindSeeds expects planted returns (seeds × plants-per-seed).
	ExpectationKindSeeds ExpectationKind = "seeds"
	// ExpectationKindAnimals expects a delivery deposit per animals-per-delivery.
	ExpectationKindAnimals ExpectationKind = "animals"
	// ExpectationKindBoxes expects a box delivery deposit per boxes-per-delivery.
	ExpectationKindBoxes ExpectationKind = "boxes"
)

// WorkloadService is one of the manager point buckets.
type WorkloadService string

const (
	WorkloadServicePlantation     WorkloadService = "plantation"
	WorkloadServiceAnimalDelivery WorkloadService = "animal-delivery"
	WorkloadServiceBoxDelivery    WorkloadService = "box-delivery"
	WorkloadServiceRestock        WorkloadService = "restock"
)
