package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/designxcel/storefront/internal/auth"
	"github.com/designxcel/storefront/internal/permission"
	"github.com/designxcel/storefront/internal/transport/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Mock matrix store: a set of granted names, with an optional forced error.
type mockMatrixStore struct {
	granted       map[int64]map[string]bool
	queried       int
	returnError   bool
	errorToReturn error
}

func newMockMatrixStore() *mockMatrixStore {
	return &mockMatrixStore{granted: make(map[int64]map[string]bool)}
}

func (m *mockMatrixStore) grant(userID int64, name string) {
	if m.granted[userID] == nil {
		m.granted[userID] = make(map[string]bool)
	}
	m.granted[userID][name] = true
}

func (m *mockMatrixStore) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

func (m *mockMatrixStore) HasPermission(ctx context.Context, userID int64, name string) (bool, error) {
	m.queried++
	if m.returnError {
		return false, m.errorToReturn
	}
	return m.granted[userID][name], nil
}

func (m *mockMatrixStore) CountGranted(ctx context.Context, userID int64, names []string) (int, error) {
	m.queried++
	if m.returnError {
		return 0, m.errorToReturn
	}
	count := 0
	for _, name := range names {
		if m.granted[userID][name] {
			count++
		}
	}
	return count, nil
}

func (m *mockMatrixStore) Grant(ctx context.Context, userID int64, name string, grantedBy int64) error {
	if m.returnError {
		return m.errorToReturn
	}
	m.grant(userID, name)
	return nil
}

func (m *mockMatrixStore) Revoke(ctx context.Context, userID int64, name string) error {
	if m.returnError {
		return m.errorToReturn
	}
	delete(m.granted[userID], name)
	return nil
}

func (m *mockMatrixStore) ListForUser(ctx context.Context, userID int64) ([]permission.Entry, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	entries := make([]permission.Entry, 0, len(permission.AllNames()))
	for _, name := range permission.AllNames() {
		entries = append(entries, permission.Entry{Name: name, CanAccess: m.granted[userID][name]})
	}
	return entries, nil
}

var _ = Describe("PermissionGate", func() {
	var (
		store    *mockMatrixStore
		gate     *middleware.PermissionGate
		next     http.Handler
		nextSeen bool
	)

	usersUpdate := permission.Name(permission.SectionUsers, permission.ActionUpdate)
	productsCreate := permission.Name(permission.SectionProducts, permission.ActionCreate)

	BeforeEach(func() {
		store = newMockMatrixStore()
		gate = middleware.NewPermissionGate(store, nil, "", nil)
		nextSeen = false
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextSeen = true
			w.WriteHeader(http.StatusOK)
		})
	})

	requestAs := func(identity *auth.Identity) *http.Request {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/users/42/role", nil)
		if identity != nil {
			req = req.WithContext(auth.ContextWithIdentity(req.Context(), identity))
		}
		return req
	}

	employee := func(id int64, role auth.Role) *auth.Identity {
		return &auth.Identity{ID: id, Role: role, Type: auth.UserTypeEmployee}
	}

	It("returns 401 when no identity is present", func() {
		rec := httptest.NewRecorder()

		gate.CheckPermission(usersUpdate)(next).ServeHTTP(rec, requestAs(nil))

		Expect(nextSeen).To(BeFalse())
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(decodeFailure(rec)["code"]).To(Equal("AUTH_REQUIRED"))
	})

	It("allows a granted permission", func() {
		store.grant(42, usersUpdate)
		rec := httptest.NewRecorder()

		gate.CheckPermission(usersUpdate)(next).ServeHTTP(rec, requestAs(employee(42, auth.RoleUserManager)))

		Expect(nextSeen).To(BeTrue())
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("denies by default when no row exists", func() {
		rec := httptest.NewRecorder()

		gate.CheckPermission(usersUpdate)(next).ServeHTTP(rec, requestAs(employee(42, auth.RoleUserManager)))

		Expect(nextSeen).To(BeFalse())
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		body := decodeFailure(rec)
		Expect(body["code"]).To(Equal("PERMISSION_DENIED"))
		Expect(body["required"]).To(ContainElement(usersUpdate))
	})

	It("lets Admin through without touching the store", func() {
		store.setError(errors.New("store must not be called"))
		rec := httptest.NewRecorder()

		gate.CheckPermission(usersUpdate)(next).ServeHTTP(rec, requestAs(employee(1, auth.RoleAdmin)))

		Expect(nextSeen).To(BeTrue())
		Expect(store.queried).To(BeZero())
	})

	It("denies customers without touching the store", func() {
		rec := httptest.NewRecorder()
		identity := &auth.Identity{ID: 12, Role: auth.RoleCustomer, Type: auth.UserTypeCustomer}

		gate.CheckPermission(usersUpdate)(next).ServeHTTP(rec, requestAs(identity))

		Expect(nextSeen).To(BeFalse())
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(store.queried).To(BeZero())
	})

	It("fails closed when the store errors", func() {
		store.setError(errors.New("connection refused"))
		rec := httptest.NewRecorder()

		gate.CheckPermission(usersUpdate)(next).ServeHTTP(rec, requestAs(employee(42, auth.RoleUserManager)))

		Expect(nextSeen).To(BeFalse())
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(decodeFailure(rec)["code"]).To(Equal("INTERNAL_ERROR"))
	})

	It("redirects browser clients to the forbidden page on denial", func() {
		rec := httptest.NewRecorder()
		req := requestAs(employee(42, auth.RoleUserManager))
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		gate.CheckPermission(usersUpdate)(next).ServeHTTP(rec, req)

		Expect(nextSeen).To(BeFalse())
		Expect(rec.Code).To(Equal(http.StatusFound))
		Expect(rec.Header().Get("Location")).To(Equal("/employee/forbidden"))
	})

	It("redirects browser clients to the forbidden page on store failure", func() {
		store.setError(errors.New("connection refused"))
		rec := httptest.NewRecorder()
		req := requestAs(employee(42, auth.RoleUserManager))
		req.Header.Set("Accept", "text/html")

		gate.CheckPermission(usersUpdate)(next).ServeHTTP(rec, req)

		Expect(nextSeen).To(BeFalse())
		Expect(rec.Code).To(Equal(http.StatusFound))
	})

	It("honors a configured forbidden path", func() {
		custom := middleware.NewPermissionGate(store, nil, "/staff/denied", nil)
		rec := httptest.NewRecorder()
		req := requestAs(employee(42, auth.RoleUserManager))
		req.Header.Set("Accept", "text/html")

		custom.CheckPermission(usersUpdate)(next).ServeHTTP(rec, req)

		Expect(rec.Header().Get("Location")).To(Equal("/staff/denied"))
	})

	Describe("CheckAnyPermission", func() {
		It("allows when any of the listed permissions is granted", func() {
			store.grant(42, productsCreate)
			rec := httptest.NewRecorder()

			gate.CheckAnyPermission(usersUpdate, productsCreate)(next).ServeHTTP(rec, requestAs(employee(42, auth.RoleInventoryManager)))

			Expect(nextSeen).To(BeTrue())
		})

		It("denies when none of the listed permissions is granted", func() {
			rec := httptest.NewRecorder()

			gate.CheckAnyPermission(usersUpdate, productsCreate)(next).ServeHTTP(rec, requestAs(employee(42, auth.RoleInventoryManager)))

			Expect(nextSeen).To(BeFalse())
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})
	})
})
