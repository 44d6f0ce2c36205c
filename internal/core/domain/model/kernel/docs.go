// Package kernel contains the shared value objects of the domain model:
// geographic points with great-circle distance, position samples from the
// device sensor, and UUID identifiers. All types are immutable and must be
// created through their constructors; zero values fail validation.
package kernel
