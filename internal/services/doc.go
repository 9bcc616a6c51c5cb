// Package services implements the HTTP client for the customer-management backend.
//
// # Raw Transport
//
// [APIService] performs the actual requests: it prefixes the configured base URL, sets a JSON content
// type for bodies, stamps every request with an X-Request-ID and, when a token is supplied, routes the
// request through an [oauth2.Transport] over a static token source so the Authorization header reads
// "Bearer <token>". An optional [rate.Limiter] spaces requests out; nothing is ever retried.
//
// # Customer Client
//
// [CustomerService] maps the backend's endpoints onto typed calls:
//
//	POST /signup            Register
//	POST /login             Login              -> token
//	GET  /customer          ListCustomers      -> models.CustomerPage
//	POST /customer          CreateCustomer     -> models.Customer
//	GET  /customer/download DownloadCustomersCSV -> io.ReadCloser (path configurable)
//
// # Error Handling
//
// Failures are returned as [*APIError] wrapping a sentinel from the shared package:
//   - [shared.ErrNotAuthenticated] : no token was supplied; no request was made
//   - [shared.ErrAuthFailed] : 401/403, or a login without a token in the response
//   - [shared.ErrValidation] : 400/422
//   - [shared.ErrConflict] : 409
//   - [shared.ErrNetwork] : the request never produced a response
//   - [shared.ErrAPIRequest] : any other non-2xx status
//   - [shared.ErrDownloadFailed] : wraps any of the above for the CSV download
//
// [APIError.Message] carries the backend's {"message": "..."} text so forms can show it inline.
package services
