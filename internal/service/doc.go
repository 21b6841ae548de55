// Package service contains the application's business logic, orchestrating
// the domain model, persistence layer, and background task machinery.
//
// Services depend on the store interfaces rather than concrete
// implementations, keeping the business rules independent of the database.
// Handlers in the api package translate HTTP requests into service calls
// and map the sentinel errors defined here onto status codes.
package service
