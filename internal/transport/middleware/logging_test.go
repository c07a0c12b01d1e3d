package middleware_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/designxcel/storefront/internal/transport/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LoggingMiddleware", func() {
	var (
		buf     *bytes.Buffer
		handler http.Handler
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		lg := slog.New(slog.NewTextHandler(buf, nil))

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true}`))
		})
		handler = middleware.LoggingMiddleware(lg)(next)
	})

	It("redacts credentials from headers and request bodies", func() {
		body := strings.NewReader(`{"email":"shopper@example.com","password":"hunter2-secret"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer abc.def.ghi")
		req.Header.Set("Cookie", "dx_session=abc.def.ghi")

		handler.ServeHTTP(httptest.NewRecorder(), req)

		logged := buf.String()
		Expect(logged).NotTo(ContainSubstring("hunter2-secret"))
		Expect(logged).NotTo(ContainSubstring("abc.def.ghi"))
		Expect(logged).To(ContainSubstring("[REDACTED]"))
		Expect(logged).To(ContainSubstring("shopper@example.com"), "non-sensitive fields stay readable")
	})

	It("redacts token fields in response bodies", func() {
		tokenNext := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"accessToken":"abc.def.ghi","tokenType":"Bearer"}`))
		})
		lg := slog.New(slog.NewTextHandler(buf, nil))
		tokenHandler := middleware.LoggingMiddleware(lg)(tokenNext)

		tokenHandler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil))

		Expect(buf.String()).NotTo(ContainSubstring("abc.def.ghi"))
	})

	It("logs method, path and status for ordinary requests", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products?sort=name", nil)

		handler.ServeHTTP(httptest.NewRecorder(), req)

		logged := buf.String()
		Expect(logged).To(ContainSubstring("/api/v1/products"))
		Expect(logged).To(ContainSubstring("status_code=200"))
	})
})
