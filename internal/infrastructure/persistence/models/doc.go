// Package models contains the GORM persistence models of the stock service.
// Domain entities carry no ORM tags; each model converts to and from its entity
// through ToDomain and a ...FromDomain constructor.
package models
