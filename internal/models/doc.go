// Package models defines the data transfer objects exchanged with the customer backend.
//
//   - [Customer] : a customer record as returned by the list and create endpoints
//   - [Address] : tagged variant holding either a flat string or a structured street/city/state/postalCode/country record
//   - [NewCustomer] : the create-customer payload
//   - [CustomerPage] : one page of the paginated listing, with a lenient decoder for the customers/totalPages fields
//   - [ListQuery] : page, limit and optional date bounds shared by the list and CSV download endpoints
//   - [Credentials] : register/login request bodies
//
// Addresses are rendered uniformly through [Address.String] regardless of which variant the backend sent.
package models
