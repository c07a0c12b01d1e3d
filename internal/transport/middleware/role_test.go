package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/designxcel/storefront/internal/auth"
	"github.com/designxcel/storefront/internal/transport/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RoleGate", func() {
	var (
		gate     *middleware.RoleGate
		next     http.Handler
		nextSeen bool
	)

	BeforeEach(func() {
		gate = middleware.NewRoleGate(nil)
		nextSeen = false
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextSeen = true
			w.WriteHeader(http.StatusOK)
		})
	})

	requestAs := func(identity *auth.Identity) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/users", nil)
		if identity != nil {
			req = req.WithContext(auth.ContextWithIdentity(req.Context(), identity))
		}
		return req
	}

	Describe("RequireRole", func() {
		It("returns 401 when no identity is present", func() {
			rec := httptest.NewRecorder()

			gate.RequireRole(auth.RoleAdmin)(next).ServeHTTP(rec, requestAs(nil))

			Expect(nextSeen).To(BeFalse())
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(decodeFailure(rec)["code"]).To(Equal("AUTH_REQUIRED"))
		})

		It("allows an identity whose role is in the allowed set", func() {
			rec := httptest.NewRecorder()
			identity := &auth.Identity{ID: 3, Role: auth.RoleUserManager, Type: auth.UserTypeEmployee}

			gate.RequireRole(auth.RoleAdmin, auth.RoleUserManager)(next).ServeHTTP(rec, requestAs(identity))

			Expect(nextSeen).To(BeTrue())
		})

		It("denies a role outside the set with required and current roles", func() {
			rec := httptest.NewRecorder()
			identity := &auth.Identity{ID: 5, Role: auth.RoleOrderSupport, Type: auth.UserTypeEmployee}

			gate.RequireRole(auth.RoleAdmin)(next).ServeHTTP(rec, requestAs(identity))

			Expect(nextSeen).To(BeFalse())
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			body := decodeFailure(rec)
			Expect(body["code"]).To(Equal("INSUFFICIENT_PERMISSIONS"))
			Expect(body["current"]).To(Equal("OrderSupport"))
			Expect(body["required"]).To(ContainElement("Admin"))
		})

		It("does not treat Admin as a member of other roles", func() {
			rec := httptest.NewRecorder()
			identity := &auth.Identity{ID: 1, Role: auth.RoleAdmin, Type: auth.UserTypeEmployee}

			gate.RequireRole(auth.RoleInventoryManager)(next).ServeHTTP(rec, requestAs(identity))

			Expect(nextSeen).To(BeFalse())
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("RequireUserType", func() {
		It("returns 401 when no identity is present", func() {
			rec := httptest.NewRecorder()

			gate.RequireUserType(auth.UserTypeEmployee)(next).ServeHTTP(rec, requestAs(nil))

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("allows a matching user type regardless of role", func() {
			rec := httptest.NewRecorder()
			identity := &auth.Identity{ID: 9, Role: auth.RoleEmployee, Type: auth.UserTypeEmployee}

			gate.RequireUserType(auth.UserTypeEmployee)(next).ServeHTTP(rec, requestAs(identity))

			Expect(nextSeen).To(BeTrue())
		})

		It("denies customers on employee-only routes", func() {
			rec := httptest.NewRecorder()
			identity := &auth.Identity{ID: 12, Role: auth.RoleCustomer, Type: auth.UserTypeCustomer}

			gate.RequireUserType(auth.UserTypeEmployee)(next).ServeHTTP(rec, requestAs(identity))

			Expect(nextSeen).To(BeFalse())
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			body := decodeFailure(rec)
			Expect(body["code"]).To(Equal("INVALID_USER_TYPE"))
			Expect(body["current"]).To(Equal("customer"))
		})
	})
})
