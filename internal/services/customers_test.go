package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/custctl/internal/models"
	"github.com/desertthunder/custctl/internal/shared"
	tu "github.com/desertthunder/custctl/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomerService(url string) *CustomerService {
	return NewCustomerService(CustomerServiceOpts{API: NewAPIService(url, nil)})
}

func TestCustomerService(t *testing.T) {
	ctx := context.Background()

	t.Run("New", func(t *testing.T) {
		svc := NewCustomerService(CustomerServiceOpts{DownloadPath: "export.csv"})
		assert.Equal(t, "/export.csv", svc.downloadPath)
		assert.Equal(t, "http://localhost:3001/api", svc.api.BaseURL())

		svc = NewCustomerService(CustomerServiceOpts{})
		assert.Equal(t, DefaultDownloadPath, svc.downloadPath)
	})

	t.Run("Register", func(t *testing.T) {
		t.Run("Posts Credentials", func(t *testing.T) {
			var got models.Credentials
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, SignupPath, r.URL.Path)
				assert.Empty(t, r.Header.Get("Authorization"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(http.StatusCreated)
			}))
			defer server.Close()

			err := newTestCustomerService(server.URL).Register(ctx, models.Credentials{Username: "ada", Email: "ada@example.com", Password: "pw"})
			require.NoError(t, err)
			assert.Equal(t, "ada", got.Username)
			assert.Equal(t, "ada@example.com", got.Email)
		})

		t.Run("Maps Status To Sentinel", func(t *testing.T) {
			tc := []struct {
				name   string
				status int
				want   error
			}{
				{name: "validation", status: http.StatusBadRequest, want: shared.ErrValidation},
				{name: "unprocessable", status: http.StatusUnprocessableEntity, want: shared.ErrValidation},
				{name: "conflict", status: http.StatusConflict, want: shared.ErrConflict},
				{name: "server", status: http.StatusInternalServerError, want: shared.ErrAPIRequest},
			}

			for _, tt := range tc {
				t.Run(tt.name, func(t *testing.T) {
					server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						w.WriteHeader(tt.status)
						w.Write([]byte(`{"message":"nope"}`))
					}))
					defer server.Close()

					err := newTestCustomerService(server.URL).Register(ctx, models.Credentials{Email: "a", Password: "b"})
					require.Error(t, err)
					assert.ErrorIs(t, err, tt.want)

					var apiErr *APIError
					require.ErrorAs(t, err, &apiErr)
					assert.Equal(t, "nope", apiErr.Message)
					assert.Equal(t, tt.status, apiErr.Status)
				})
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("Returns Token", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, LoginPath, r.URL.Path)
				body, _ := io.ReadAll(r.Body)
				assert.NotContains(t, string(body), "username")
				w.Write([]byte(`{"token":"jwt-token"}`))
			}))
			defer server.Close()

			token, err := newTestCustomerService(server.URL).Login(ctx, models.Credentials{Username: "x", Email: "a", Password: "b"})
			require.NoError(t, err)
			assert.Equal(t, "jwt-token", token)
		})

		t.Run("Rejected Credentials", func(t *testing.T) {
			for _, status := range []int{http.StatusUnauthorized, http.StatusBadRequest, http.StatusNotFound} {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(status)
					w.Write([]byte(`{"message":"Invalid credentials"}`))
				}))

				_, err := newTestCustomerService(server.URL).Login(ctx, models.Credentials{Email: "a", Password: "b"})
				assert.ErrorIs(t, err, shared.ErrAuthFailed, "status %d", status)
				server.Close()
			}
		})

		t.Run("Missing Token", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			_, err := newTestCustomerService(server.URL).Login(ctx, models.Credentials{Email: "a", Password: "b"})
			assert.ErrorIs(t, err, shared.ErrAuthFailed)
		})

		t.Run("Network Failure", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
			svc := NewCustomerService(CustomerServiceOpts{API: NewAPIService("http://example.com", client)})

			_, err := svc.Login(ctx, models.Credentials{Email: "a", Password: "b"})
			assert.ErrorIs(t, err, shared.ErrNetwork)
		})
	})

	t.Run("ListCustomers", func(t *testing.T) {
		start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.Local)
		end := time.Date(2024, 1, 10, 0, 0, 0, 0, time.Local)

		t.Run("Sends Ordered Query And Bearer", func(t *testing.T) {
			var rawQuery, auth string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, CustomerPath, r.URL.Path)
				rawQuery = r.URL.RawQuery
				auth = r.Header.Get("Authorization")
				w.Write([]byte(`{"customers":[{"_id":"1","name":"Ada","address":"x"}],"totalPages":3}`))
			}))
			defer server.Close()

			page, err := newTestCustomerService(server.URL).ListCustomers(ctx, "tok", models.ListQuery{Page: 2, Limit: 10, Start: start, End: end})
			require.NoError(t, err)
			assert.Equal(t, "startDate=2024-01-05&endDate=2024-01-10&page=2&limit=10", rawQuery)
			assert.Equal(t, "Bearer tok", auth)
			assert.Equal(t, 3, page.TotalPages)
			require.Len(t, page.Customers, 1)
			assert.Equal(t, "Ada", page.Customers[0].Name)
		})

		t.Run("Omits Cleared Dates", func(t *testing.T) {
			var rawQuery string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				rawQuery = r.URL.RawQuery
				w.Write([]byte(`{"customers":[],"totalPages":1}`))
			}))
			defer server.Close()

			_, err := newTestCustomerService(server.URL).ListCustomers(ctx, "tok", models.ListQuery{Page: 1, Limit: 10})
			require.NoError(t, err)
			assert.Equal(t, "page=1&limit=10", rawQuery)
		})

		t.Run("No Token Makes No Request", func(t *testing.T) {
			rt := tu.NewRecordingRoundTripper(http.StatusOK, `{}`)
			svc := NewCustomerService(CustomerServiceOpts{API: NewAPIService("http://example.com", &http.Client{Transport: rt})})

			_, err := svc.ListCustomers(ctx, "", models.ListQuery{Page: 1, Limit: 10})
			assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
			assert.Zero(t, rt.Calls())
		})

		t.Run("Expired Token", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			_, err := newTestCustomerService(server.URL).ListCustomers(ctx, "stale", models.ListQuery{Page: 1})
			assert.ErrorIs(t, err, shared.ErrAuthFailed)
		})

		t.Run("Malformed Payload Is Tolerated", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"customers":"oops"}`))
			}))
			defer server.Close()

			page, err := newTestCustomerService(server.URL).ListCustomers(ctx, "tok", models.ListQuery{Page: 1})
			require.NoError(t, err)
			assert.Empty(t, page.Customers)
			assert.NotNil(t, page.Customers)
			assert.Equal(t, 1, page.TotalPages)
		})

		t.Run("Non-JSON Payload", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>`))
			}))
			defer server.Close()

			_, err := newTestCustomerService(server.URL).ListCustomers(ctx, "tok", models.ListQuery{Page: 1})
			assert.ErrorIs(t, err, shared.ErrAPIRequest)
		})
	})

	t.Run("CreateCustomer", func(t *testing.T) {
		payload := models.NewCustomer{Name: "Ada", Email: "ada@example.com", Phone: "555", IsActive: true}

		t.Run("Wrapped Response", func(t *testing.T) {
			var got map[string]any
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, CustomerPath, r.URL.Path)
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"message":"ok","customer":{"_id":"c1","name":"Ada","isActive":true}}`))
			}))
			defer server.Close()

			c, err := newTestCustomerService(server.URL).CreateCustomer(ctx, "tok", payload)
			require.NoError(t, err)
			assert.Equal(t, "c1", c.ID)
			assert.Equal(t, true, got["isActive"])
			assert.NotContains(t, got, "notes")
		})

		t.Run("Direct Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"_id":"c2","name":"Ada"}`))
			}))
			defer server.Close()

			c, err := newTestCustomerService(server.URL).CreateCustomer(ctx, "tok", payload)
			require.NoError(t, err)
			assert.Equal(t, "c2", c.ID)
		})

		t.Run("Empty Response Echoes Payload", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			}))
			defer server.Close()

			c, err := newTestCustomerService(server.URL).CreateCustomer(ctx, "tok", payload)
			require.NoError(t, err)
			assert.Equal(t, "Ada", c.Name)
			assert.True(t, c.IsActive)
		})

		t.Run("Backend Rejection Carries Message", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"message":"Email already exists"}`))
			}))
			defer server.Close()

			_, err := newTestCustomerService(server.URL).CreateCustomer(ctx, "tok", payload)
			assert.ErrorIs(t, err, shared.ErrValidation)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "Email already exists", apiErr.Message)
		})
	})

	t.Run("DownloadCustomersCSV", func(t *testing.T) {
		t.Run("Streams Body", func(t *testing.T) {
			var path, rawQuery string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.Path
				rawQuery = r.URL.RawQuery
				w.Header().Set("Content-Type", "text/csv")
				w.Write([]byte("name\nAda\n"))
			}))
			defer server.Close()

			body, err := newTestCustomerService(server.URL).DownloadCustomersCSV(ctx, "tok", models.ListQuery{
				Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local),
			})
			require.NoError(t, err)
			defer body.Close()

			data, _ := io.ReadAll(body)
			assert.Equal(t, "name\nAda\n", string(data))
			assert.Equal(t, DefaultDownloadPath, path)
			assert.Equal(t, "startDate=2024-02-01", rawQuery)
		})

		t.Run("Error Status Closes Body", func(t *testing.T) {
			tracked := tu.NewTrackingCloser(`{"message":"boom"}`)
			resp := &http.Response{StatusCode: http.StatusInternalServerError, Body: tracked, Header: make(http.Header)}
			client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
			svc := NewCustomerService(CustomerServiceOpts{API: NewAPIService("http://example.com", client)})

			body, err := svc.DownloadCustomersCSV(ctx, "tok", models.ListQuery{})
			assert.Nil(t, body)
			assert.ErrorIs(t, err, shared.ErrDownloadFailed)
			assert.ErrorIs(t, err, shared.ErrAPIRequest)
			assert.True(t, tracked.Closed())
		})

		t.Run("Unauthorized", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			_, err := newTestCustomerService(server.URL).DownloadCustomersCSV(ctx, "tok", models.ListQuery{})
			assert.ErrorIs(t, err, shared.ErrDownloadFailed)
			assert.ErrorIs(t, err, shared.ErrAuthFailed)
		})

		t.Run("Network Failure", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("dial tcp: refused"))}
			svc := NewCustomerService(CustomerServiceOpts{API: NewAPIService("http://example.com", client)})

			_, err := svc.DownloadCustomersCSV(ctx, "tok", models.ListQuery{})
			assert.ErrorIs(t, err, shared.ErrDownloadFailed)
			assert.ErrorIs(t, err, shared.ErrNetwork)
		})

		t.Run("No Token", func(t *testing.T) {
			_, err := newTestCustomerService("http://example.com").DownloadCustomersCSV(ctx, "", models.ListQuery{})
			assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
		})
	})
}

func TestAPIError(t *testing.T) {
	err := &APIError{Op: "list customers", Status: 500, Message: "db down", Err: shared.ErrAPIRequest}
	assert.Contains(t, err.Error(), "list customers")
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "db down")
	assert.ErrorIs(t, err, shared.ErrAPIRequest)
}
