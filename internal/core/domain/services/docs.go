// Package services contains stateless domain services. The only one this
// client needs is the GeoRanker, which turns the live order set and the
// partner's position into the ranked feed.
package services
