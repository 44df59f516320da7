// Package domain contains the core domain entities of the MRZ reader: decoded
// documents, fields, validation outcomes and trust levels. These types
// represent the business concepts and are intentionally free of infrastructure
// concerns so they can be shared across packages and serialized as-is.
package domain
