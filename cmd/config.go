package cmd

import "time"

// StorageMode selects the backing record store.
const (
	// StorageInMem runs against the seeded in-memory store; no postgres,
	// NATS or Redis required.
	StorageInMem = "inmem"

	// StoragePostgres runs against postgres with change notifications over
	// NATS and position fixes over Redis.
	StoragePostgres = "postgres"
)

type Config struct {
	HTTPPort string

	Storage string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	NatsURL string

	RedisAddr       string
	RedisPassword   string
	PositionChannel string
	TrackingEnabled bool

	MinWatchInterval     time.Duration
	MinDisplacementMeter float64

	SessionSubject string
	SessionGroups  []string
	StartSignedIn  bool
	RequiredGroup  string

	PartnerName   string
	SeedOrders    int
	BaseLatitude  float64
	BaseLongitude float64

	FeedRefreshSchedule string
}
