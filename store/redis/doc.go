// Package redis persists workflow runs in Redis.
//
// Each run is a JSON string under "<prefix>run:<id>". Sorted sets scored by
// creation time index runs per workflow and across all workflows. When a TTL
// is configured it applies to the run and to both indexes.
package redis
