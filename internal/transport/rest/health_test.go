package rest_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/designxcel/storefront/internal/transport/rest"
)

var _ = Describe("Health endpoints", func() {
	var (
		mock   sqlmock.Sqlmock
		router *chi.Mux
	)

	BeforeEach(func() {
		db, m, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		Expect(err).NotTo(HaveOccurred())

		mock = m
		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.RouterDeps{
			DB:     db,
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
	})

	It("identifies the service on the liveness endpoint", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("storefront-api"))
	})

	It("reports healthy while postgres answers the ping", func() {
		mock.ExpectPing()

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"status":"healthy"`))
		Expect(rec.Body.String()).To(ContainSubstring("postgres"))
	})

	It("degrades to 503 when postgres is unreachable", func() {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(rec.Body.String()).To(ContainSubstring(`"status":"unhealthy"`))
	})
})
