// File: utils/constants.go
package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// ProfessionalCachePrefix keys cached public professional profiles.
const ProfessionalCachePrefix = "pro:"

// ProfessionalCacheTTL is how long a cached profile is served before re-reading the store.
const ProfessionalCacheTTL = 10 * time.Minute

// DateLayout and MonthLayout are the calendar formats used in ids and queries.
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// DefaultPhoneRegion is used when PHONE_REGION is not set.
const DefaultPhoneRegion = "CL"
